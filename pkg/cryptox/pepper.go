package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
)

// Argon2id parameters, following the OWASP minimum recommendation.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

var (
	// pepper is appended to every secret before hashing. Loaded from a file
	// so that a database dump alone is not enough to attack the hashes.
	pepper     string
	pepperFile string
)

// SetPepperPath configures where the pepper file lives. Must be called
// before the first hash or verify.
func SetPepperPath(file string) {
	pepperFile = file
}

// GetPepper returns the process pepper, loading or generating it on first use.
func GetPepper() string {
	if pepper != "" {
		return pepper
	}

	var err error
	pepper, err = loadOrGeneratePepper()
	if err != nil {
		slog.Error("failed to load or generate pepper", slog.Any("err", err))
		os.Exit(1)
	}

	return pepper
}

func loadOrGeneratePepper() (string, error) {
	pepperFile = filepath.Clean(pepperFile)
	if err := os.MkdirAll(filepath.Dir(pepperFile), 0750); err != nil {
		return "", err
	}

	if _, err := os.Stat(pepperFile); os.IsNotExist(err) {
		raw := make([]byte, keyLength)
		if _, err := rand.Read(raw); err != nil {
			return "", err
		}
		p := base64.RawURLEncoding.EncodeToString(raw)

		if err := os.WriteFile(pepperFile, []byte(p), 0600); err != nil {
			return "", err
		}
		return p, nil
	}

	raw, err := os.ReadFile(pepperFile)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
