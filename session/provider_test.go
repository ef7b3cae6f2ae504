package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	perrors "github.com/jrsteele09/admissions-portal/internal/errors"
	"github.com/jrsteele09/admissions-portal/portalapi"
	"github.com/jrsteele09/admissions-portal/roles"
	"github.com/jrsteele09/admissions-portal/session"
	"github.com/stretchr/testify/require"
)

// fakeAPI records calls and answers from canned values.
type fakeAPI struct {
	mu         sync.Mutex
	loginCalls int
	meCalls    int

	loginResp *portalapi.LoginResponse
	loginErr  error
	user      *portalapi.User
	meErr     error
	meBlock   chan struct{}
}

func (f *fakeAPI) Login(_ context.Context, _, _ string) (*portalapi.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	return f.loginResp, f.loginErr
}

func (f *fakeAPI) CurrentUser(ctx context.Context) (*portalapi.User, error) {
	f.mu.Lock()
	f.meCalls++
	block := f.meBlock
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.user, f.meErr
}

func (f *fakeAPI) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls, f.meCalls
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return tok
}

func TestProvider_StartsLoading(t *testing.T) {
	p := session.NewProvider(session.NewMemoryStore(), &fakeAPI{})
	require.Equal(t, session.StateLoading, p.Snapshot().State)
	require.Nil(t, p.Snapshot().Session)
}

func TestProvider_HydrateWithoutToken(t *testing.T) {
	api := &fakeAPI{}
	p := session.NewProvider(session.NewMemoryStore(), api)

	snap, err := p.Hydrate(context.Background())
	require.NoError(t, err)
	require.Equal(t, session.StateAnonymous, snap.State)

	_, me := api.calls()
	require.Zero(t, me)
}

func TestProvider_HydrateWithValidToken(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(&session.Credentials{AccessToken: "tok", Role: roles.Moderator, Email: "m@example.org"}))

	api := &fakeAPI{user: &portalapi.User{ID: 3, Email: "m@example.org", Role: roles.Moderator}}
	p := session.NewProvider(store, api)

	snap, err := p.Hydrate(context.Background())
	require.NoError(t, err)
	require.Equal(t, session.StateAuthenticated, snap.State)
	require.Equal(t, &session.Session{ID: 3, Email: "m@example.org", Role: roles.Moderator}, snap.Session)

	// A second hydrate is a no-op.
	_, err = p.Hydrate(context.Background())
	require.NoError(t, err)
	_, me := api.calls()
	require.Equal(t, 1, me)
}

func TestProvider_RefreshUpdatesSameUser(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(&session.Credentials{AccessToken: "tok", Role: roles.Applicant, Email: "old@example.org"}))

	p := session.NewProvider(store, &fakeAPI{user: &portalapi.User{ID: 7, Email: "old@example.org", Role: roles.Applicant}})
	_, err := p.Hydrate(context.Background())
	require.NoError(t, err)

	p.Refresh(&portalapi.User{ID: 8, Email: "other@example.org", Role: roles.Applicant})
	require.Equal(t, "old@example.org", p.Snapshot().Session.Email)

	p.Refresh(&portalapi.User{ID: 7, Email: "new@example.org", Role: roles.Applicant})
	require.Equal(t, "new@example.org", p.Snapshot().Session.Email)

	p.SignOut()
	p.Refresh(&portalapi.User{ID: 7, Email: "new@example.org", Role: roles.Applicant})
	require.Nil(t, p.Snapshot().Session)
}

func TestProvider_HydrateFetchFailureClearsStore(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(&session.Credentials{AccessToken: "stale", Role: roles.Applicant, Email: "a@example.org"}))

	api := &fakeAPI{meErr: &portalapi.Error{Status: http.StatusUnauthorized, Message: "Given token not valid"}}
	p := session.NewProvider(store, api)

	snap, err := p.Hydrate(context.Background())
	require.NoError(t, err)
	require.Equal(t, session.StateAnonymous, snap.State)

	_, err = store.Load()
	require.ErrorIs(t, err, perrors.ErrNoToken)
}

func TestProvider_HydrateExpiredTokenSkipsFetch(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(&session.Credentials{
		AccessToken: "old",
		ExpiresAt:   now.Add(-time.Minute),
	}))

	api := &fakeAPI{user: &portalapi.User{ID: 1, Role: roles.Applicant}}
	p := session.NewProvider(store, api, session.WithClock(func() time.Time { return now }))

	snap, err := p.Hydrate(context.Background())
	require.NoError(t, err)
	require.Equal(t, session.StateAnonymous, snap.State)

	_, me := api.calls()
	require.Zero(t, me)
	require.False(t, p.HasToken())
}

func TestProvider_ConcurrentHydrateSeesLoading(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(&session.Credentials{AccessToken: "tok"}))

	block := make(chan struct{})
	api := &fakeAPI{user: &portalapi.User{ID: 1, Role: roles.Applicant}, meBlock: block}
	p := session.NewProvider(store, api)

	done := make(chan session.Snapshot)
	go func() {
		snap, _ := p.Hydrate(context.Background())
		done <- snap
	}()

	require.Eventually(t, func() bool {
		_, me := api.calls()
		return me == 1
	}, time.Second, 5*time.Millisecond)

	snap, err := p.Hydrate(context.Background())
	require.NoError(t, err)
	require.Equal(t, session.StateLoading, snap.State)

	close(block)
	require.Equal(t, session.StateAuthenticated, (<-done).State)
}

func TestProvider_HydrateCancelledStaysLoading(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(&session.Credentials{AccessToken: "tok"}))

	api := &fakeAPI{meBlock: make(chan struct{})}
	p := session.NewProvider(store, api)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap, err := p.Hydrate(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, session.StateLoading, snap.State)
	require.True(t, p.HasToken())
}

func TestProvider_SignInFailure(t *testing.T) {
	loginErr := portalapi.NewMessages().Normalize(http.StatusUnauthorized, []byte(`{"message":"Invalid credentials"}`))
	store := session.NewMemoryStore()
	p := session.NewProvider(store, &fakeAPI{loginErr: loginErr})

	snap, err := p.SignIn(context.Background(), "a@example.org", "wrong")
	require.EqualError(t, err, "Неверный email или пароль.")
	require.True(t, perrors.Is(err, perrors.ErrInvalidCredentials))
	require.Equal(t, session.StateAnonymous, snap.State)
	require.False(t, p.HasToken())
}

func TestProvider_SignInUserFetchFailureClearsToken(t *testing.T) {
	api := &fakeAPI{
		loginResp: &portalapi.LoginResponse{Access: "tok", Role: roles.Applicant},
		meErr:     errors.New("boom"),
	}
	p := session.NewProvider(session.NewMemoryStore(), api)

	snap, err := p.SignIn(context.Background(), "a@example.org", "secret")
	require.Error(t, err)
	require.Equal(t, session.StateAnonymous, snap.State)
	require.False(t, p.HasToken())
}

func TestProvider_SignOutIsLocal(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(&session.Credentials{AccessToken: "tok"}))
	api := &fakeAPI{user: &portalapi.User{ID: 1, Email: "a@example.org", Role: roles.Applicant}}
	p := session.NewProvider(store, api)

	_, err := p.Hydrate(context.Background())
	require.NoError(t, err)
	login, me := api.calls()

	p.SignOut()

	require.Equal(t, session.StateAnonymous, p.Snapshot().State)
	require.Nil(t, p.Snapshot().Session)
	require.False(t, p.HasToken())

	login2, me2 := api.calls()
	require.Equal(t, login, login2)
	require.Equal(t, me, me2)
}

// TestProvider_SignInAgainstBackend wires the provider to a real client whose
// bearer header comes from the same store.
func TestProvider_SignInAgainstBackend(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	var meAuth atomic.Value

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login/":
			var req portalapi.LoginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.Password != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"message":"Invalid credentials"}`)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"access": token, "role": "applicant"})
		case "/api/users/me/":
			meAuth.Store(r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, `{"id":9,"email":"a@example.org","role":"applicant"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	store := session.NewMemoryStore()
	client, err := portalapi.NewClient(srv.URL+"/api/", session.TokenSource(store))
	require.NoError(t, err)
	p := session.NewProvider(store, client)

	_, err = p.SignIn(context.Background(), "a@example.org", "wrong")
	require.EqualError(t, err, "Неверный email или пароль.")

	snap, err := p.SignIn(context.Background(), "a@example.org", "secret")
	require.NoError(t, err)
	require.Equal(t, session.StateAuthenticated, snap.State)
	require.Equal(t, roles.Applicant, snap.Session.Role)
	require.Equal(t, "Bearer "+token, meAuth.Load())

	creds, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "a@example.org", creds.Email)
	require.WithinDuration(t, time.Now().Add(time.Hour), creds.ExpiresAt, 2*time.Second)
}
