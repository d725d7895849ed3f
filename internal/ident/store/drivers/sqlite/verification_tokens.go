package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/quokkaworks/ident/internal/ident/domain"
)

type verificationTokensRepo struct {
	q querier
}

func (r *verificationTokensRepo) CreateVerificationToken(
	ctx context.Context,
	t domain.VerificationToken,
) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	_, err := r.q.ExecContext(ctx,
		`INSERT INTO verification_tokens (id, user_id, token_hash, expires_at, used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.Used, t.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *verificationTokensRepo) GetActiveVerificationTokenByHash(
	ctx context.Context,
	hash string,
) (domain.VerificationToken, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, expires_at, used, used_at, created_at
		 FROM verification_tokens
		 WHERE token_hash = ? AND used = 0 AND expires_at > ?`,
		hash, time.Now().UTC(),
	)

	var (
		t      domain.VerificationToken
		usedAt sql.NullTime
	)
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Used, &usedAt, &t.CreatedAt)
	if err != nil {
		return domain.VerificationToken{}, mapNotFound(err)
	}
	if usedAt.Valid {
		t.UsedAt = &usedAt.Time
	}
	return t, nil
}

func (r *verificationTokensRepo) MarkVerificationTokenUsed(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE verification_tokens SET used = 1, used_at = ? WHERE id = ? AND used = 0`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *verificationTokensRepo) DeleteExpiredVerificationTokens(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM verification_tokens WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
