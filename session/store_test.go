package session_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	perrors "github.com/jrsteele09/admissions-portal/internal/errors"
	"github.com/jrsteele09/admissions-portal/roles"
	"github.com/jrsteele09/admissions-portal/session"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) *[32]byte {
	var k [32]byte
	for i := range k {
		k[i] = b
	}
	return &k
}

func TestStores(t *testing.T) {
	dir := t.TempDir()
	stores := map[string]session.TokenStore{
		"memory": session.NewMemoryStore(),
		"file":   session.NewFileStoreAt(filepath.Join(dir, "plain.json"), nil),
		"sealed": session.NewFileStoreAt(filepath.Join(dir, "sealed.json"), testKey(7)),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			_, err := store.Load()
			require.ErrorIs(t, err, perrors.ErrNoToken)

			in := &session.Credentials{
				AccessToken: "tok",
				Role:        roles.AdminOrg,
				Email:       "o@example.org",
				ExpiresAt:   time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
			}
			require.NoError(t, store.Save(in))

			out, err := store.Load()
			require.NoError(t, err)
			require.Equal(t, in.AccessToken, out.AccessToken)
			require.Equal(t, in.Role, out.Role)
			require.Equal(t, in.Email, out.Email)
			require.True(t, in.ExpiresAt.Equal(out.ExpiresAt))

			require.NoError(t, store.Clear())
			require.NoError(t, store.Clear())
			_, err = store.Load()
			require.ErrorIs(t, err, perrors.ErrNoToken)
		})
	}
}

func TestFileStore_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store := session.NewFileStoreAt(path, nil)
	require.NoError(t, store.Save(&session.Credentials{AccessToken: "tok"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStore_SealedNeedsKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, session.NewFileStoreAt(path, testKey(1)).Save(&session.Credentials{AccessToken: "secret-token"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "secret-token")

	_, err = session.NewFileStoreAt(path, testKey(2)).Load()
	require.Error(t, err)
	require.NotErrorIs(t, err, perrors.ErrNoToken)
}

func TestExpiryOf(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	require.True(t, exp.Equal(session.ExpiryOf(signedToken(t, exp))))
	require.True(t, session.ExpiryOf("not-a-jwt").IsZero())
}

func TestTokenSource(t *testing.T) {
	store := session.NewMemoryStore()
	src := session.TokenSource(store)

	_, err := src.Token()
	require.ErrorIs(t, err, perrors.ErrNoToken)

	require.NoError(t, store.Save(&session.Credentials{AccessToken: "abc"}))
	tok, err := src.Token()
	require.NoError(t, err)
	require.Equal(t, "abc", tok.AccessToken)
	require.Equal(t, "Bearer", tok.Type())
}

func TestKeyFromPassphrase(t *testing.T) {
	key, err := session.KeyFromPassphrase("")
	require.NoError(t, err)
	require.Nil(t, key)

	a, err := session.KeyFromPassphrase("correct horse")
	require.NoError(t, err)
	b, err := session.KeyFromPassphrase("correct horse")
	require.NoError(t, err)
	c, err := session.KeyFromPassphrase("battery staple")
	require.NoError(t, err)

	require.Equal(t, *a, *b)
	require.NotEqual(t, *a, *c)
}
