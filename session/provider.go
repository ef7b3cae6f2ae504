// Package session holds the authentication state of one browser context.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	perrors "github.com/jrsteele09/admissions-portal/internal/errors"
	"github.com/jrsteele09/admissions-portal/portalapi"
	"github.com/jrsteele09/admissions-portal/roles"
	"github.com/rs/zerolog/log"
)

type State uint8

const (
	StateLoading State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is the authenticated user as confirmed by the backend.
type Session struct {
	ID    int64
	Email string
	Role  roles.Role
}

// Snapshot is a consistent view of the provider. Session is set only in
// StateAuthenticated.
type Snapshot struct {
	State   State
	Session *Session
}

// Authenticator is the slice of the API client the provider needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*portalapi.LoginResponse, error)
	CurrentUser(ctx context.Context) (*portalapi.User, error)
}

// Provider is the session state machine. It starts in StateLoading and moves
// to StateAnonymous or StateAuthenticated on Hydrate.
type Provider struct {
	store TokenStore
	api   Authenticator
	now   func() time.Time

	mu        sync.RWMutex
	state     State
	session   *Session
	hydrating bool
	gen       uint64 // bumped by SignIn and SignOut so a late hydration does not overwrite them
}

type ProviderOption func(*Provider)

// WithClock replaces time.Now for credential expiry checks.
func WithClock(now func() time.Time) ProviderOption {
	return func(p *Provider) {
		p.now = now
	}
}

func NewProvider(store TokenStore, api Authenticator, opts ...ProviderOption) *Provider {
	p := &Provider{
		store: store,
		api:   api,
		now:   time.Now,
		state: StateLoading,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshotLocked()
}

func (p *Provider) snapshotLocked() Snapshot {
	snap := Snapshot{State: p.state}
	if p.session != nil {
		s := *p.session
		snap.Session = &s
	}
	return snap
}

// HasToken reports whether the store currently holds a token.
func (p *Provider) HasToken() bool {
	_, err := p.store.Load()
	return err == nil
}

// Hydrate resolves StateLoading from the stored token. Callers arriving while
// another hydration is in flight get the StateLoading snapshot back at once.
// Outside StateLoading it is a no-op.
func (p *Provider) Hydrate(ctx context.Context) (Snapshot, error) {
	p.mu.Lock()
	if p.state != StateLoading || p.hydrating {
		snap := p.snapshotLocked()
		p.mu.Unlock()
		return snap, nil
	}
	p.hydrating = true
	gen := p.gen
	p.mu.Unlock()

	sess, err := p.validate(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.hydrating = false

	if p.gen != gen {
		return p.snapshotLocked(), nil
	}
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return p.snapshotLocked(), err
	}
	if sess == nil {
		p.state, p.session = StateAnonymous, nil
	} else {
		p.state, p.session = StateAuthenticated, sess
	}
	return p.snapshotLocked(), nil
}

// validate confirms the stored token with the backend. A nil session means
// anonymous; the store has been cleared if it held a bad token.
func (p *Provider) validate(ctx context.Context) (*Session, error) {
	creds, err := p.store.Load()
	if err != nil {
		if !perrors.Is(err, perrors.ErrNoToken) {
			log.Warn().Err(err).Msg("Stored credentials unreadable, clearing")
			p.clearStore()
		}
		return nil, nil
	}

	if creds.IsExpired(p.now()) {
		log.Debug().Str("email", creds.Email).Time("expiresAt", creds.ExpiresAt).Msg("Stored token expired")
		p.clearStore()
		return nil, nil
	}

	user, err := p.api.CurrentUser(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Info().Err(err).Str("email", creds.Email).Msg("Stored token rejected, clearing")
		p.clearStore()
		return nil, nil
	}
	if !user.Role.Valid() {
		log.Warn().Int64("userID", user.ID).Msg("User has no recognised role, clearing")
		p.clearStore()
		return nil, nil
	}
	return sessionOf(user), nil
}

// SignIn exchanges credentials for a token, persists it and loads the user.
// On failure the state is StateAnonymous and the returned error carries the
// message to show.
func (p *Provider) SignIn(ctx context.Context, email, password string) (Snapshot, error) {
	p.mu.Lock()
	p.gen++
	p.mu.Unlock()

	sess, err := p.signIn(ctx, email, password)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	if err != nil {
		p.state, p.session = StateAnonymous, nil
		return p.snapshotLocked(), err
	}
	p.state, p.session = StateAuthenticated, sess
	return p.snapshotLocked(), nil
}

func (p *Provider) signIn(ctx context.Context, email, password string) (*Session, error) {
	resp, err := p.api.Login(ctx, email, password)
	if err != nil {
		p.clearStore()
		return nil, err
	}

	creds := &Credentials{
		AccessToken: resp.Access,
		Role:        resp.Role,
		Email:       email,
		ExpiresAt:   ExpiryOf(resp.Access),
	}
	if err := p.store.Save(creds); err != nil {
		p.clearStore()
		return nil, perrors.Wrapf(err, "[Provider SignIn] persist token")
	}

	user, err := p.api.CurrentUser(ctx)
	if err != nil {
		p.clearStore()
		return nil, err
	}
	if !user.Role.Valid() {
		p.clearStore()
		return nil, perrors.Wrapf(perrors.ErrInvalidRole, "[Provider SignIn] user %d", user.ID)
	}

	log.Info().Str("email", user.Email).Str("role", user.Role.String()).Msg("Signed in")
	return sessionOf(user), nil
}

// Refresh replaces the session with a fresh copy of the same user, e.g. after
// the user changed their email. Other users and other states are ignored.
func (p *Provider) Refresh(u *portalapi.User) {
	if u == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateAuthenticated || p.session.ID != u.ID || !u.Role.Valid() {
		return
	}
	p.session = sessionOf(u)
}

// SignOut forgets the token and the session. It makes no network call.
func (p *Provider) SignOut() {
	p.clearStore()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.state, p.session = StateAnonymous, nil
}

func (p *Provider) clearStore() {
	if err := p.store.Clear(); err != nil {
		log.Err(err).Msg("Failed to clear stored credentials")
	}
}

func sessionOf(u *portalapi.User) *Session {
	return &Session{ID: u.ID, Email: u.Email, Role: u.Role}
}
