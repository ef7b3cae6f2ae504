package browsersession

import (
	"fmt"
	"sync"
	"time"

	perrors "github.com/jrsteele09/admissions-portal/internal/errors"
)

// InMemoryRepo is an in-memory implementation of Repo
type InMemoryRepo struct {
	mu       sync.RWMutex
	browsers map[string]*Browser // browserID -> Browser
}

var _ Repo = (*InMemoryRepo)(nil)

// NewInMemoryRepo creates a new in-memory browser repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		browsers: make(map[string]*Browser),
	}
}

// Upsert stores a browser record, replacing any record with the same ID
func (r *InMemoryRepo) Upsert(browser *Browser) error {
	if browser == nil || browser.ID == "" {
		return fmt.Errorf("browserID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.browsers[browser.ID]; ok && old != browser {
		old.Close()
	}
	r.browsers[browser.ID] = browser
	return nil
}

// Get retrieves a browser record by ID
func (r *InMemoryRepo) Get(browserID string) (*Browser, error) {
	if browserID == "" {
		return nil, fmt.Errorf("browserID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	browser, ok := r.browsers[browserID]
	if !ok {
		return nil, perrors.ErrSessionNotFound
	}
	return browser, nil
}

// Touch records activity on a browser
func (r *InMemoryRepo) Touch(browserID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	browser, ok := r.browsers[browserID]
	if !ok {
		return perrors.ErrSessionNotFound
	}
	browser.LastSeen = at
	return nil
}

// Delete removes a browser record and stops its poller
func (r *InMemoryRepo) Delete(browserID string) error {
	if browserID == "" {
		return fmt.Errorf("browserID is required")
	}

	r.mu.Lock()
	browser, ok := r.browsers[browserID]
	delete(r.browsers, browserID)
	r.mu.Unlock()

	if ok {
		browser.Close()
	}
	return nil
}

// DeleteIdleSince removes every browser not seen since cutoff and returns how many were removed
func (r *InMemoryRepo) DeleteIdleSince(cutoff time.Time) int {
	r.mu.Lock()
	var idle []*Browser
	for id, b := range r.browsers {
		if b.LastSeen.Before(cutoff) {
			idle = append(idle, b)
			delete(r.browsers, id)
		}
	}
	r.mu.Unlock()

	for _, b := range idle {
		b.Close()
	}
	return len(idle)
}
