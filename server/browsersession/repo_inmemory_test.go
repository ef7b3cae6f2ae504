package browsersession_test

import (
	"testing"
	"time"

	perrors "github.com/jrsteele09/admissions-portal/internal/errors"
	"github.com/jrsteele09/admissions-portal/server/browsersession"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepo(t *testing.T) {
	repo := browsersession.NewInMemoryRepo()
	now := time.Now()

	require.Error(t, repo.Upsert(&browsersession.Browser{}))
	require.NoError(t, repo.Upsert(&browsersession.Browser{ID: "a", LastSeen: now.Add(-2 * time.Hour)}))
	require.NoError(t, repo.Upsert(&browsersession.Browser{ID: "b", LastSeen: now}))

	b, err := repo.Get("a")
	require.NoError(t, err)
	require.Equal(t, "a", b.ID)

	_, err = repo.Get("missing")
	require.ErrorIs(t, err, perrors.ErrSessionNotFound)

	require.Equal(t, 1, repo.DeleteIdleSince(now.Add(-time.Hour)))
	_, err = repo.Get("a")
	require.ErrorIs(t, err, perrors.ErrSessionNotFound)

	require.NoError(t, repo.Touch("b", now.Add(time.Minute)))
	b, err = repo.Get("b")
	require.NoError(t, err)
	require.Equal(t, now.Add(time.Minute), b.LastSeen)

	require.NoError(t, repo.Delete("b"))
	require.NoError(t, repo.Delete("b"))
	require.ErrorIs(t, repo.Touch("b", now), perrors.ErrSessionNotFound)
}
