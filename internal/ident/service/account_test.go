package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quokkaworks/ident/internal/ident/domain"
	"github.com/quokkaworks/ident/internal/ident/extauth"
	"github.com/quokkaworks/ident/internal/ident/store"
	"github.com/quokkaworks/ident/internal/ident/store/drivers/sqlite"
	"github.com/quokkaworks/ident/pkg/cryptox"
	"github.com/quokkaworks/ident/pkg/jwtx"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "ident-service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper.key"))

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { st.Close() })

	return st
}

func newTestTokens(t *testing.T) *TokenService {
	t.Helper()

	secret := []byte("0123456789abcdef0123456789abcdef")
	signer, err := jwtx.NewSignerHS256(secret)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHS256(secret, "ident-test")
	require.NoError(t, err)

	return &TokenService{
		Signer:    signer,
		Verifier:  verifier,
		Issuer:    "ident-test",
		AccessTTL: time.Hour,
	}
}

// recordingMailer captures sent verification tokens for assertions.
type recordingMailer struct {
	mu     sync.Mutex
	tokens []string
	err    error
}

func (m *recordingMailer) SendVerification(_ context.Context, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.tokens = append(m.tokens, token)
	return nil
}

func (m *recordingMailer) lastToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tokens) == 0 {
		return ""
	}
	return m.tokens[len(m.tokens)-1]
}

func newTestAccounts(t *testing.T, st store.Store, mailer *recordingMailer) *AccountService {
	t.Helper()

	svc := &AccountService{
		Store:           st,
		Tokens:          newTestTokens(t),
		VerificationTTL: 24 * time.Hour,
		MailTimeout:     time.Second,
	}
	if mailer != nil {
		svc.Mailer = mailer
	}
	return svc
}

func waitForToken(t *testing.T, mailer *recordingMailer) string {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if tok := mailer.lastToken(); tok != "" {
			return tok
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("verification email was never dispatched")
	return ""
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates identity and issues credential", func(t *testing.T) {
		st := newTestStore(t)
		svc := newTestAccounts(t, st, nil)

		user, cred, err := svc.Register(ctx, "demo", "demo@example.com", "demo123")
		require.NoError(t, err)
		require.NotEmpty(t, user.ID)
		require.Equal(t, "demo", user.Username)
		require.Equal(t, "demo@example.com", user.Email)
		require.Equal(t, domain.RoleUser, user.Role)
		require.NotEmpty(t, cred.Token)
		require.Equal(t, "Bearer", cred.TokenType)

		claims, err := svc.Tokens.Validate(cred.Token)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.Subject)
		require.Equal(t, "user", claims.Role)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		st := newTestStore(t)
		svc := newTestAccounts(t, st, nil)

		_, _, err := svc.Register(ctx, "first", "dup@example.com", "secret1")
		require.NoError(t, err)

		_, _, err = svc.Register(ctx, "second", "dup@example.com", "secret2")
		var dup *DuplicateError
		require.ErrorAs(t, err, &dup)
		require.Equal(t, "email", dup.Field)
	})

	t.Run("duplicate email check is case-insensitive", func(t *testing.T) {
		st := newTestStore(t)
		svc := newTestAccounts(t, st, nil)

		_, _, err := svc.Register(ctx, "first", "case@example.com", "secret1")
		require.NoError(t, err)

		_, _, err = svc.Register(ctx, "second", "Case@Example.COM", "secret2")
		var dup *DuplicateError
		require.ErrorAs(t, err, &dup)
		require.Equal(t, "email", dup.Field)
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		st := newTestStore(t)
		svc := newTestAccounts(t, st, nil)

		_, _, err := svc.Register(ctx, "taken", "one@example.com", "secret1")
		require.NoError(t, err)

		_, _, err = svc.Register(ctx, "taken", "two@example.com", "secret2")
		var dup *DuplicateError
		require.ErrorAs(t, err, &dup)
		require.Equal(t, "username", dup.Field)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		st := newTestStore(t)
		svc := newTestAccounts(t, st, nil)

		_, _, err := svc.Register(ctx, "", "a@example.com", "secret")
		require.ErrorIs(t, err, ErrInvalidInput)

		_, _, err = svc.Register(ctx, "name", "not-an-email", "secret")
		require.ErrorIs(t, err, ErrInvalidInput)

		_, _, err = svc.Register(ctx, "name", "a@example.com", "")
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("bootstrap admin email gets admin role", func(t *testing.T) {
		st := newTestStore(t)
		svc := newTestAccounts(t, st, nil)
		svc.BootstrapAdminEmail = "root@example.com"

		admin, _, err := svc.Register(ctx, "root", "Root@Example.com", "secret1")
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, admin.Role)

		user, _, err := svc.Register(ctx, "pleb", "pleb@example.com", "secret2")
		require.NoError(t, err)
		require.Equal(t, domain.RoleUser, user.Role)
	})

	t.Run("mailer failure does not fail registration", func(t *testing.T) {
		st := newTestStore(t)
		mailer := &recordingMailer{err: errors.New("smtp down")}
		svc := newTestAccounts(t, st, mailer)

		_, cred, err := svc.Register(ctx, "mailless", "mailless@example.com", "secret1")
		require.NoError(t, err)
		require.NotEmpty(t, cred.Token)
	})

	t.Run("concurrent registrations conflict exactly once", func(t *testing.T) {
		st := newTestStore(t)
		svc := newTestAccounts(t, st, nil)

		const attempts = 8
		errs := make([]error, attempts)

		var wg sync.WaitGroup
		for i := range attempts {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, _, errs[i] = svc.Register(ctx, "racer", "race@example.com", "secret1")
			}(i)
		}
		wg.Wait()

		var ok, dups int
		for _, err := range errs {
			var dup *DuplicateError
			switch {
			case err == nil:
				ok++
			case errors.As(err, &dup):
				dups++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		require.Equal(t, 1, ok)
		require.Equal(t, attempts-1, dups)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*AccountService, domain.User) {
		st := newTestStore(t)
		svc := newTestAccounts(t, st, nil)
		user, _, err := svc.Register(ctx, "demo", "demo@example.com", "demo123")
		require.NoError(t, err)
		return svc, user
	}

	t.Run("issues credential for correct secret", func(t *testing.T) {
		svc, user := setup(t)

		got, cred, err := svc.Login(ctx, "demo@example.com", "demo123")
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
		require.NotEmpty(t, cred.Token)
	})

	t.Run("email lookup is case-insensitive", func(t *testing.T) {
		svc, user := setup(t)

		got, _, err := svc.Login(ctx, "DEMO@example.COM", "demo123")
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
	})

	t.Run("wrong secret and unknown email are indistinguishable", func(t *testing.T) {
		svc, _ := setup(t)

		_, _, errWrong := svc.Login(ctx, "demo@example.com", "not-it")
		require.ErrorIs(t, errWrong, ErrInvalidCredentials)

		_, _, errUnknown := svc.Login(ctx, "ghost@example.com", "demo123")
		require.ErrorIs(t, errUnknown, ErrInvalidCredentials)

		require.Equal(t, errWrong.Error(), errUnknown.Error())
	})
}

func TestVerifyEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("redeems emailed token once", func(t *testing.T) {
		st := newTestStore(t)
		mailer := &recordingMailer{}
		svc := newTestAccounts(t, st, mailer)

		user, _, err := svc.Register(ctx, "demo", "demo@example.com", "demo123")
		require.NoError(t, err)

		token := waitForToken(t, mailer)

		verified, err := svc.VerifyEmail(ctx, token)
		require.NoError(t, err)
		require.Equal(t, user.ID, verified.ID)
		require.True(t, verified.Verified)

		_, err = svc.VerifyEmail(ctx, token)
		require.ErrorIs(t, err, ErrVerificationNotFound)
	})

	t.Run("rejects unknown token", func(t *testing.T) {
		st := newTestStore(t)
		svc := newTestAccounts(t, st, nil)

		_, err := svc.VerifyEmail(ctx, "nope")
		require.ErrorIs(t, err, ErrVerificationNotFound)
	})
}

func TestExternalLogin(t *testing.T) {
	ctx := context.Background()

	newSvc := func(t *testing.T) *AccountService {
		st := newTestStore(t)
		svc := newTestAccounts(t, st, nil)
		svc.Exchange = extauth.NewStub("github", "google")
		return svc
	}

	t.Run("creates identity on first contact", func(t *testing.T) {
		svc := newSvc(t)

		user, cred, err := svc.ExternalLogin(ctx, "github", "code-123")
		require.NoError(t, err)
		require.Equal(t, "github", user.Provider)
		require.Equal(t, domain.RoleUser, user.Role)
		require.True(t, user.Verified)
		require.NotEmpty(t, cred.Token)
	})

	t.Run("repeat contact reuses the identity", func(t *testing.T) {
		svc := newSvc(t)

		first, _, err := svc.ExternalLogin(ctx, "github", "code-123")
		require.NoError(t, err)

		again, _, err := svc.ExternalLogin(ctx, "github", "code-123")
		require.NoError(t, err)
		require.Equal(t, first.ID, again.ID)
	})

	t.Run("unknown provider is rejected", func(t *testing.T) {
		svc := newSvc(t)

		_, _, err := svc.ExternalLogin(ctx, "myspace", "code-123")
		require.ErrorIs(t, err, extauth.ErrUnknownProvider)
	})
}
