// Package extauth defines the external identity-provider collaborator. The
// OAuth handshake itself happens outside this core; all the core needs is
// the code-for-identity exchange.
package extauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/quokkaworks/ident/internal/ident/domain"
	"github.com/quokkaworks/ident/pkg/cryptox"
)

// ErrUnknownProvider reports a provider this deployment is not configured for.
var ErrUnknownProvider = errors.New("extauth: unknown provider")

// ErrExchangeFailed reports a code the provider would not exchange.
var ErrExchangeFailed = errors.New("extauth: code exchange failed")

// Exchanger swaps a provider authorization code for the external identity it
// represents.
type Exchanger interface {
	ExchangeCode(ctx context.Context, provider, code string) (domain.ExternalIdentity, error)
}

// Stub synthesizes identities for the configured providers without talking
// to anyone. It stands in until a real provider integration is wired; the
// identities it mints are stable per code so repeat callbacks log in the
// same account.
type Stub struct {
	providers map[string]struct{}
}

func NewStub(providers ...string) *Stub {
	set := make(map[string]struct{}, len(providers))
	for _, p := range providers {
		set[strings.ToLower(p)] = struct{}{}
	}
	return &Stub{providers: set}
}

func (s *Stub) ExchangeCode(
	ctx context.Context,
	provider, code string,
) (domain.ExternalIdentity, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if _, ok := s.providers[provider]; !ok {
		return domain.ExternalIdentity{}, ErrUnknownProvider
	}
	if strings.TrimSpace(code) == "" {
		return domain.ExternalIdentity{}, ErrExchangeFailed
	}

	// Deterministic subject so the same code maps to the same identity.
	subject := cryptox.FingerprintToken(provider + ":" + code)[:16]

	return domain.ExternalIdentity{
		Provider: provider,
		Subject:  subject,
		Username: fmt.Sprintf("%s-%s", provider, subject[:8]),
		Email:    fmt.Sprintf("%s-%s@%s.example", provider, subject[:8], provider),
	}, nil
}
