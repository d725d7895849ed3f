package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testIssuer = "ident-test"

func testSecret() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func newPair(t *testing.T) (*HS256Signer, *HS256Verifier) {
	t.Helper()

	signer, err := NewSignerHS256(testSecret())
	require.NoError(t, err)
	verifier, err := NewVerifierHS256(testSecret(), testIssuer)
	require.NoError(t, err)

	return signer, verifier
}

func TestRejectsWeakSecret(t *testing.T) {
	t.Parallel()

	_, err := NewSignerHS256([]byte("short"))
	require.ErrorIs(t, err, ErrWeakSecret)

	_, err = NewVerifierHS256([]byte("short"), testIssuer)
	require.ErrorIs(t, err, ErrWeakSecret)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	signer, verifier := newPair(t)

	now := time.Now().UTC()
	claims := NewAccessClaims("01j", "demo", "demo@example.com", "user", time.Hour, testIssuer, now)

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	got, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "01j", got.Subject)
	require.Equal(t, "demo", got.Username)
	require.Equal(t, "demo@example.com", got.Email)
	require.Equal(t, "user", got.Role)
	require.Equal(t, testIssuer, got.Issuer)
	require.NotEmpty(t, got.ID)
	require.WithinDuration(t, now.Add(time.Hour), got.ExpiresAt.Time, time.Second)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	signer, verifier := newPair(t)

	issued := time.Now().UTC().Add(-2 * time.Hour)
	claims := NewAccessClaims("01j", "demo", "demo@example.com", "user", time.Hour, testIssuer, issued)

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerifyTamperedPayload(t *testing.T) {
	t.Parallel()

	signer, verifier := newPair(t)

	claims := NewAccessClaims("01j", "demo", "demo@example.com", "user", time.Hour, testIssuer, time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	// Flip a character in the payload segment. The signature check must fail
	// even though the token is also well within its validity window.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = verifier.Verify(tampered)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	signer, _ := newPair(t)
	other, err := NewVerifierHS256([]byte("ffffffffffffffffffffffffffffffff"), testIssuer)
	require.NoError(t, err)

	token, err := signer.Sign(
		NewAccessClaims("01j", "demo", "demo@example.com", "user", time.Hour, testIssuer, time.Now().UTC()),
	)
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()

	_, verifier := newPair(t)

	for _, tok := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := verifier.Verify(tok)
		require.ErrorIs(t, err, ErrMalformed, "token %q", tok)
	}
}

func TestVerifyIssuerMismatch(t *testing.T) {
	t.Parallel()

	signer, verifier := newPair(t)

	token, err := signer.Sign(
		NewAccessClaims("01j", "demo", "demo@example.com", "user", time.Hour, "someone-else", time.Now().UTC()),
	)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestValidateExpiry(t *testing.T) {
	t.Parallel()

	live := NewAccessClaims("s", "u", "e", "user", time.Hour, testIssuer, time.Now().UTC())
	require.NoError(t, live.ValidateExpiry())

	dead := NewAccessClaims("s", "u", "e", "user", time.Hour, testIssuer, time.Now().UTC().Add(-2*time.Hour))
	require.ErrorIs(t, dead.ValidateExpiry(), ErrExpired)

	future := NewAccessClaims("s", "u", "e", "user", time.Hour, testIssuer, time.Now().UTC().Add(time.Hour))
	require.ErrorIs(t, future.ValidateExpiry(), ErrNotYetValid)
}
