package browsersession

import (
	"time"

	"github.com/jrsteele09/admissions-portal/portalapi"
	"github.com/jrsteele09/admissions-portal/querycache"
	"github.com/jrsteele09/admissions-portal/session"
	"github.com/jrsteele09/admissions-portal/tasks"
)

// Browser is everything the portal keeps for one browser context.
type Browser struct {
	ID string

	// Credentials persisted for this browser
	Store session.TokenStore

	// Backend access with this browser's token
	API     *portalapi.Client
	Session *session.Provider
	Poller  *tasks.Poller
	Queries *querycache.Cache

	CreatedAt time.Time
	LastSeen  time.Time
}

// Close releases the background work owned by the browser.
func (b *Browser) Close() {
	if b.Poller != nil {
		b.Poller.Stop()
	}
}

type Repo interface {
	Upsert(browser *Browser) error
	Get(browserID string) (*Browser, error)
	Touch(browserID string, at time.Time) error
	Delete(browserID string) error
	DeleteIdleSince(cutoff time.Time) int
}
