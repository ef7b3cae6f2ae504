package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	perrors "github.com/jrsteele09/admissions-portal/internal/errors"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	credentialsDir  = ".admissions"
	credentialsFile = "credentials.json"
	nonceSize       = 24
)

// FileStore persists credentials as a 0600 JSON file. When a key is set the
// file content is sealed with secretbox.
type FileStore struct {
	path string
	key  *[32]byte
}

var _ TokenStore = (*FileStore)(nil)

// KeyFromPassphrase derives the sealing key of a FileStore. An empty
// passphrase yields nil, which stores the file unsealed.
func KeyFromPassphrase(passphrase string) (*[32]byte, error) {
	if passphrase == "" {
		return nil, nil
	}
	var key [32]byte
	r := hkdf.New(sha256.New, []byte(passphrase), nil, []byte("admissions credentials"))
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return nil, fmt.Errorf("failed to derive credentials key: %w", err)
	}
	return &key, nil
}

// NewFileStore returns a store at ~/.admissions/credentials.json.
func NewFileStore(key *[32]byte) (*FileStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	dir := filepath.Join(home, credentialsDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", credentialsDir, err)
	}
	return NewFileStoreAt(filepath.Join(dir, credentialsFile), key), nil
}

// NewFileStoreAt returns a store backed by path.
func NewFileStoreAt(path string, key *[32]byte) *FileStore {
	return &FileStore{path: path, key: key}
}

// Path is the location of the credentials file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Save(creds *Credentials) error {
	if creds == nil || creds.AccessToken == "" {
		return perrors.Wrapf(perrors.ErrInvalidRequest, "[FileStore Save] empty access token")
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	if s.key != nil {
		if data, err = s.seal(data); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, data, 0600)
}

func (s *FileStore) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, perrors.Wrapf(perrors.ErrNoToken, "not logged in")
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	if s.key != nil {
		if data, err = s.open(data); err != nil {
			return nil, err
		}
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}
	if creds.AccessToken == "" {
		return nil, perrors.ErrNoToken
	}
	return &creds, nil
}

func (s *FileStore) Clear() error {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(s.path)
}

func (s *FileStore) seal(plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plain, &nonce, s.key), nil
}

func (s *FileStore) open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("credentials file is truncated")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, s.key)
	if !ok {
		return nil, fmt.Errorf("credentials file cannot be decrypted with the configured key")
	}
	return plain, nil
}
