package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/quokkaworks/ident/internal/ident/domain"
	"github.com/quokkaworks/ident/internal/ident/extauth"
	"github.com/quokkaworks/ident/internal/ident/mail"
	"github.com/quokkaworks/ident/internal/ident/store"
	"github.com/quokkaworks/ident/pkg/cryptox"
	"github.com/quokkaworks/ident/pkg/idx"
	"github.com/quokkaworks/ident/pkg/slogx"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong secret.
	// Callers must not tell the two apart.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrInvalidInput reports missing or malformed registration input.
	ErrInvalidInput = errors.New("invalid_input")

	// ErrVerificationNotFound reports an unknown, used, or expired
	// verification token.
	ErrVerificationNotFound = errors.New("verification token not found or expired")
)

// DuplicateError reports a registration conflict on a unique field.
type DuplicateError struct {
	Field string // "email" or "username"
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

// AccountService orchestrates the register, login, and verify flows over the
// credential store, the password hasher, the token issuer, and the external
// mail and identity-provider collaborators.
type AccountService struct {
	Store  store.Store
	Tokens *TokenService
	Mailer mail.Mailer

	// Exchange resolves external-provider authorization codes. Nil
	// disables external login.
	Exchange extauth.Exchanger

	// BootstrapAdminEmail, when set, grants the admin role to a matching
	// registration (case-insensitive). Everyone else registers as user.
	BootstrapAdminEmail string

	VerificationTTL time.Duration

	// MailTimeout bounds the fire-and-forget verification dispatch.
	MailTimeout time.Duration

	// ExchangeTimeout bounds the external provider code exchange.
	ExchangeTimeout time.Duration
}

// Register creates a new identity and issues its first credential.
//
// The uniqueness check and insert run inside one transaction: of two
// concurrent registrations for the same email, exactly one observes a
// DuplicateError. Password hashing happens before the transaction so the
// slow part never holds the store's write lock, and the verification email
// is dispatched after commit so its failure cannot fail the registration.
func (s *AccountService) Register(
	ctx context.Context,
	username, email, secret string,
) (domain.User, domain.Credential, error) {
	log := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	if username == "" || email == "" || secret == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.Credential{}, ErrInvalidInput
	}

	hash, err := cryptox.HashPassword(secret)
	if err != nil {
		return domain.User{}, domain.Credential{}, fmt.Errorf("hash secret: %w", err)
	}

	role := domain.RoleUser
	if s.BootstrapAdminEmail != "" && strings.EqualFold(email, s.BootstrapAdminEmail) {
		role = domain.RoleAdmin
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Verified:     true, // confirmed again via the emailed link
	}

	verifyToken, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.User{}, domain.Credential{}, fmt.Errorf("generate verification token: %w", err)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByEmail(ctx, email); err == nil {
			return &DuplicateError{Field: "email"}
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if _, err := tx.Users().GetUserByUsername(ctx, username); err == nil {
			return &DuplicateError{Field: "username"}
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}

		return tx.VerificationTokens().CreateVerificationToken(ctx, domain.VerificationToken{
			ID:        idx.New().String(),
			UserID:    user.ID,
			TokenHash: cryptox.FingerprintToken(verifyToken),
			ExpiresAt: time.Now().UTC().Add(s.VerificationTTL),
		})
	})
	if err != nil {
		// A constraint violation that slipped past the in-tx checks
		// still means a duplicate; pin the field down by re-reading.
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, domain.Credential{}, s.duplicateField(ctx, email)
		}
		return domain.User{}, domain.Credential{}, err
	}

	s.dispatchVerification(ctx, user.Email, verifyToken)

	cred, err := s.Tokens.Issue(user)
	if err != nil {
		log.Error("failed to issue credential after registration", "user_id", user.ID, "err", err)
		return domain.User{}, domain.Credential{}, err
	}

	log.Info("identity registered", "user_id", user.ID, "role", user.Role.String())
	return user, cred, nil
}

// Login verifies the presented secret against the stored hash and issues a
// fresh credential.
func (s *AccountService) Login(
	ctx context.Context,
	email, secret string,
) (domain.User, domain.Credential, error) {
	log := slogx.FromContext(ctx)

	email = normalizeEmail(email)
	if email == "" || secret == "" {
		return domain.User{}, domain.Credential{}, ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("login for unknown email")
			return domain.User{}, domain.Credential{}, ErrInvalidCredentials
		}
		return domain.User{}, domain.Credential{}, err
	}

	if err := cryptox.VerifyPassword(secret, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrMismatch) {
			log.Info("login with wrong secret", "user_id", user.ID)
			return domain.User{}, domain.Credential{}, ErrInvalidCredentials
		}
		return domain.User{}, domain.Credential{}, err
	}

	cred, err := s.Tokens.Issue(user)
	if err != nil {
		return domain.User{}, domain.Credential{}, err
	}

	log.Info("login succeeded", "user_id", user.ID)
	return user, cred, nil
}

// VerifyEmail redeems an emailed verification token. Redeeming is atomic:
// the token flips to used and the user's verified flag is set in one
// transaction. Already-used and expired tokens both surface as
// ErrVerificationNotFound.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) (domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.User{}, ErrVerificationNotFound
	}

	hash := cryptox.FingerprintToken(token)

	var user domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		vt, err := tx.VerificationTokens().GetActiveVerificationTokenByHash(ctx, hash)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrVerificationNotFound
			}
			return err
		}

		if err := tx.VerificationTokens().MarkVerificationTokenUsed(ctx, vt.ID); err != nil {
			return err
		}
		if err := tx.Users().MarkUserVerified(ctx, vt.UserID); err != nil {
			return err
		}

		user, err = tx.Users().GetUserByID(ctx, vt.UserID)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// ExternalLogin exchanges a provider authorization code and logs the
// external identity in, creating it on first contact. The exchange is
// awaited with a bounded timeout; external-identity accounts get a random
// throwaway password hash and never authenticate by secret.
func (s *AccountService) ExternalLogin(
	ctx context.Context,
	provider, code string,
) (domain.User, domain.Credential, error) {
	log := slogx.FromContext(ctx)

	if s.Exchange == nil {
		return domain.User{}, domain.Credential{}, extauth.ErrUnknownProvider
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, s.exchangeTimeout())
	defer cancel()

	ext, err := s.Exchange.ExchangeCode(exchangeCtx, provider, code)
	if err != nil {
		return domain.User{}, domain.Credential{}, err
	}

	email := normalizeEmail(ext.Email)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		// Repeat contact: existing identity logs in.
	case errors.Is(err, store.ErrNotFound):
		user, err = s.createExternalUser(ctx, ext, email)
		if err != nil {
			return domain.User{}, domain.Credential{}, err
		}
		log.Info("external identity created", "user_id", user.ID, "provider", ext.Provider)
	default:
		return domain.User{}, domain.Credential{}, err
	}

	cred, err := s.Tokens.Issue(user)
	if err != nil {
		return domain.User{}, domain.Credential{}, err
	}

	return user, cred, nil
}

func (s *AccountService) createExternalUser(
	ctx context.Context,
	ext domain.ExternalIdentity,
	email string,
) (domain.User, error) {
	// External accounts never log in by password, but the hash column is
	// NOT NULL; give them an unguessable throwaway.
	throwaway, err := cryptox.RandomPassword()
	if err != nil {
		return domain.User{}, err
	}
	hash, err := cryptox.HashPassword(throwaway)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Verified:     true, // the provider already verified the address
		Provider:     ext.Provider,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByEmail(ctx, email); err == nil {
			return store.ErrAlreadyExists
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		user.Username = ext.Username
		if _, err := tx.Users().GetUserByUsername(ctx, user.Username); err == nil {
			// Provider usernames are not unique across providers;
			// disambiguate with the identity's own id.
			user.Username = ext.Username + "-" + strings.ToLower(user.ID[len(user.ID)-6:])
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		return tx.Users().CreateUser(ctx, user)
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		// Lost a first-contact race; the winner's row is our account.
		return s.Store.Users().GetUserByEmail(ctx, email)
	}
	if err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// dispatchVerification sends the verification email without blocking the
// registration response and without failing it. The store lock is already
// released by the time this runs.
func (s *AccountService) dispatchVerification(ctx context.Context, email, token string) {
	if s.Mailer == nil {
		return
	}

	log := slogx.FromContext(ctx)
	timeout := s.MailTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		if err := s.Mailer.SendVerification(sendCtx, email, token); err != nil {
			log.Warn("verification email failed", slog.Any("err", err))
		}
	}()
}

func (s *AccountService) duplicateField(ctx context.Context, email string) error {
	if _, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
		return &DuplicateError{Field: "email"}
	}
	return &DuplicateError{Field: "username"}
}

func (s *AccountService) exchangeTimeout() time.Duration {
	if s.ExchangeTimeout > 0 {
		return s.ExchangeTimeout
	}
	return 10 * time.Second
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
