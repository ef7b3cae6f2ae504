package session

import (
	"sync"
	"time"

	perrors "github.com/jrsteele09/admissions-portal/internal/errors"
	"github.com/jrsteele09/admissions-portal/roles"
)

// Credentials is what survives between visits: the bearer token plus the
// role and email denormalized from the login response.
type Credentials struct {
	AccessToken string     `json:"access_token"`
	Role        roles.Role `json:"role"`
	Email       string     `json:"email"`
	ExpiresAt   time.Time  `json:"expires_at,omitempty"`
}

// IsExpired reports whether the token is known to be expired at now. A
// token without an expiry never expires locally.
func (c *Credentials) IsExpired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// TokenStore persists credentials for one browser context. Load returns
// errors.ErrNoToken when nothing is stored.
type TokenStore interface {
	Load() (*Credentials, error)
	Save(creds *Credentials) error
	Clear() error
}

// MemoryStore keeps credentials in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	creds *Credentials
}

var _ TokenStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (*Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.creds == nil || s.creds.AccessToken == "" {
		return nil, perrors.ErrNoToken
	}
	c := *s.creds
	return &c, nil
}

func (s *MemoryStore) Save(creds *Credentials) error {
	if creds == nil || creds.AccessToken == "" {
		return perrors.Wrapf(perrors.ErrInvalidRequest, "[MemoryStore Save] empty access token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := *creds
	s.creds = &c
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = nil
	return nil
}
