package store

import (
	"context"
	"errors"

	"github.com/quokkaworks/ident/internal/ident/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it.
// Sub-repositories keep concerns tidy; the one process-wide instance is
// constructed at startup and shared by all requests.
type Store interface {
	Users() Users
	VerificationTokens() VerificationTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing on nil and
	// rolling back on error. Multi-step operations that must be atomic
	// (the registration uniqueness check plus insert) go through here.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Same repositories plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByUsername returns a user by exact username.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id provided by the app via ULID).
	// Returns ErrAlreadyExists if the email or username is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// MarkUserVerified sets verified=1 and bumps updated_at. Idempotent.
	MarkUserVerified(ctx context.Context, userID string) error

	// ListUsers returns all users ordered by creation (newest first).
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CountUsers returns the number of registered users.
	CountUsers(ctx context.Context) (int64, error)
}

type VerificationTokens interface {
	// CreateVerificationToken stores a new token record (fingerprint only).
	CreateVerificationToken(ctx context.Context, t domain.VerificationToken) error

	// GetActiveVerificationTokenByHash returns a not-used, not-expired
	// token by its fingerprint.
	GetActiveVerificationTokenByHash(ctx context.Context, hash string) (domain.VerificationToken, error)

	// MarkVerificationTokenUsed sets used=1 and used_at=now.
	MarkVerificationTokenUsed(ctx context.Context, id string) error

	// DeleteExpiredVerificationTokens is housekeeping; the table must not
	// grow without bound.
	DeleteExpiredVerificationTokens(ctx context.Context) error
}
