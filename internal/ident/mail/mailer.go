// Package mail defines the outbound email collaborator. Delivery is external
// to the core: a failed send must never fail the authentication flow that
// triggered it.
package mail

import (
	"context"
	"fmt"
	"log/slog"
)

// Mailer dispatches a verification link for the given address. The token is
// the opaque verification token; implementations build the link around it.
type Mailer interface {
	SendVerification(ctx context.Context, email, token string) error
}

// LogMailer writes the verification link to the log instead of sending it.
// Stands in for a real delivery backend in development deployments.
type LogMailer struct {
	Logger  *slog.Logger
	BaseURL string
}

func NewLogMailer(logger *slog.Logger, baseURL string) *LogMailer {
	return &LogMailer{Logger: logger, BaseURL: baseURL}
}

func (m *LogMailer) SendVerification(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s/api/verify-email/%s", m.BaseURL, token)
	m.Logger.Info("verification email dispatched",
		"email", email,
		"link", link,
	)
	return nil
}
