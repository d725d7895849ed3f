package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quokkaworks/ident/pkg/jwtx"
)

func testVerifierAndToken(t *testing.T, ttl time.Duration) (jwtx.Verifier, string) {
	t.Helper()

	secret := []byte("0123456789abcdef0123456789abcdef")
	signer, err := jwtx.NewSignerHS256(secret)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHS256(secret, "ident-test")
	require.NoError(t, err)

	issued := time.Now().UTC()
	if ttl < 0 {
		issued = issued.Add(2 * ttl)
		ttl = -ttl
	}
	token, err := signer.Sign(
		jwtx.NewAccessClaims("01sub", "demo", "demo@example.com", "user", ttl, "ident-test", issued),
	)
	require.NoError(t, err)

	return verifier, token
}

func echoHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, "01sub", userID)

		role, ok := RoleFromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, "user", role)

		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthnMiddlewareAcceptsValidToken(t *testing.T) {
	t.Parallel()

	verifier, token := testVerifierAndToken(t, time.Hour)
	h := Chain(echoHandler(t), AuthnMiddleware(verifier))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthnMiddlewareMissingHeader(t *testing.T) {
	t.Parallel()

	verifier, _ := testVerifierAndToken(t, time.Hour)
	h := Chain(echoHandler(t), AuthnMiddleware(verifier))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Authorization")
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
}

func TestAuthnMiddlewareBadPrefix(t *testing.T) {
	t.Parallel()

	verifier, token := testVerifierAndToken(t, time.Hour)
	h := Chain(echoHandler(t), AuthnMiddleware(verifier))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthnMiddlewareExpiredToken(t *testing.T) {
	t.Parallel()

	verifier, token := testVerifierAndToken(t, -time.Hour)
	h := Chain(echoHandler(t), AuthnMiddleware(verifier))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "token_expired")
}

func TestAuthnMiddlewareTamperedToken(t *testing.T) {
	t.Parallel()

	verifier, token := testVerifierAndToken(t, time.Hour)
	h := Chain(echoHandler(t), AuthnMiddleware(verifier))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token+"x")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid_token")
	require.NotContains(t, rec.Body.String(), "token_expired")
}
