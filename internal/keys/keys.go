// Package keys stores the LLM API key encrypted on disk. A random
// secretbox key is generated on first use and kept next to the sealed
// API key, so the key at rest is unreadable without both files.
package keys

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keyFileName        = "api_key.bin"
	encryptionFileName = "encryption.key"

	// EnvAPIKey overrides the stored key when set.
	EnvAPIKey = "OPENAI_API_KEY"
)

// ErrNoKey is returned when no API key has been stored yet.
var ErrNoKey = errors.New("no API key stored")

// Store reads and writes the encrypted API key under a directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir. The directory is created on
// first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save encrypts the API key and writes it to disk, replacing any
// previously stored key.
func (s *Store) Save(apiKey string) error {
	if apiKey == "" {
		return errors.New("api key is empty")
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}

	secret, err := s.loadOrCreateSecret()
	if err != nil {
		return err
	}

	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(apiKey), &nonce, secret)

	path := filepath.Join(s.dir, keyFileName)
	if err := os.WriteFile(path, sealed, 0600); err != nil {
		return fmt.Errorf("failed to write api key file: %w", err)
	}
	return nil
}

// Load returns the stored API key. The environment variable takes
// precedence over the file so deployments can inject the key directly.
func (s *Store) Load() (string, error) {
	if key := os.Getenv(EnvAPIKey); key != "" {
		return key, nil
	}

	sealed, err := os.ReadFile(filepath.Join(s.dir, keyFileName))
	if os.IsNotExist(err) {
		return "", ErrNoKey
	}
	if err != nil {
		return "", fmt.Errorf("failed to read api key file: %w", err)
	}
	if len(sealed) < 24 {
		return "", errors.New("api key file is corrupt")
	}

	secret, err := s.loadSecret()
	if err != nil {
		return "", err
	}

	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	plain, ok := secretbox.Open(nil, sealed[24:], &nonce, secret)
	if !ok {
		return "", errors.New("failed to decrypt api key")
	}
	return string(plain), nil
}

// Refresh implements the credential refresher used after an
// authentication failure: it rereads the key from its sources.
func (s *Store) Refresh() (string, error) {
	return s.Load()
}

// Delete removes the stored API key. The encryption key is kept so a
// later Save reuses it.
func (s *Store) Delete() error {
	err := os.Remove(filepath.Join(s.dir, keyFileName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete api key file: %w", err)
	}
	return nil
}

func (s *Store) loadSecret() (*[32]byte, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, encryptionFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read encryption key: %w", err)
	}
	if len(raw) != 32 {
		return nil, errors.New("encryption key file is corrupt")
	}
	var secret [32]byte
	copy(secret[:], raw)
	return &secret, nil
}

func (s *Store) loadOrCreateSecret() (*[32]byte, error) {
	secret, err := s.loadSecret()
	if err == nil {
		return secret, nil
	}

	var fresh [32]byte
	if _, err := rand.Read(fresh[:]); err != nil {
		return nil, fmt.Errorf("failed to generate encryption key: %w", err)
	}
	path := filepath.Join(s.dir, encryptionFileName)
	if err := os.WriteFile(path, fresh[:], 0600); err != nil {
		return nil, fmt.Errorf("failed to write encryption key: %w", err)
	}
	return &fresh, nil
}
