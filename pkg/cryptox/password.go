package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrMismatch is returned when a presented secret does not match the stored
// hash. Callers must not distinguish this from an unknown identity in
// responses to avoid account enumeration.
var ErrMismatch = errors.New("cryptox: secret does not match")

// HashPassword derives an Argon2id hash of the secret and returns it as a
// PHC-format string carrying the salt and parameters. The plaintext is never
// stored or logged.
func HashPassword(secret string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey(
		[]byte(secret+GetPepper()),
		salt,
		iterations,
		memory,
		parallelism,
		keyLength,
	)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyPassword recomputes the Argon2id hash of the presented secret using
// the parameters and salt embedded in encodedHash and compares in constant
// time. Returns nil on match, ErrMismatch on mismatch, and a descriptive
// error for malformed hashes.
func VerifyPassword(secret, encodedHash string) error {
	// PHC layout: $argon2id$v=19$m=X,t=Y,p=Z$salt$hash
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return errors.New("cryptox: invalid hash: expected 6 segments")
	}
	if parts[1] != "argon2id" {
		return errors.New("cryptox: invalid hash: not argon2id")
	}
	if parts[2] != "v=19" {
		return errors.New("cryptox: invalid hash: unsupported version")
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("cryptox: invalid hash: bad parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("cryptox: invalid hash: bad salt: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("cryptox: invalid hash: bad digest: %w", err)
	}

	got := argon2.IDKey(
		[]byte(secret+GetPepper()),
		salt,
		iters,
		mem,
		par,
		uint32(len(want)), // #nosec G115 - digest lengths are small
	)

	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrMismatch
	}
	return nil
}

// RandomPassword returns a random throwaway secret. Used when creating
// identities that authenticate externally and never present a password.
func RandomPassword() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 24

	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("generate random password: %w", err)
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}
