// Package auth issues and verifies bearer tokens and hashes passwords.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// KeyFile is the name of the token key file inside the data directory.
const KeyFile = "auth.key"

// keySize is the PASETO v4 symmetric key size in bytes.
const keySize = 32

// LoadOrGenerateKey returns the token signing key stored hex-encoded in
// <dataPath>/auth.key, creating the file with a fresh random key on first run.
func LoadOrGenerateKey(dataPath string) ([]byte, error) {
	keyPath := filepath.Join(dataPath, KeyFile)

	//#nosec G304 -- path is built from the configured data directory
	if raw, err := os.ReadFile(keyPath); err == nil {
		key, err := hex.DecodeString(strings.TrimSpace(string(raw)))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", KeyFile, err)
		}
		if len(key) != keySize {
			return nil, fmt.Errorf("%s holds %d bytes, want %d", KeyFile, len(key), keySize)
		}
		return key, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", KeyFile, err)
	}

	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("write %s: %w", KeyFile, err)
	}
	return key, nil
}
