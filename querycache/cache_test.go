package querycache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jrsteele09/admissions-portal/querycache"
	"github.com/stretchr/testify/require"
)

func TestFetch_LoadsOnce(t *testing.T) {
	c := querycache.New(8, time.Minute)
	loads := 0
	load := func(context.Context) ([]string, error) {
		loads++
		return []string{"Москва", "Казань"}, nil
	}

	for i := 0; i < 3; i++ {
		cities, err := querycache.Fetch(context.Background(), c, querycache.KeyCities, load)
		require.NoError(t, err)
		require.Equal(t, []string{"Москва", "Казань"}, cities)
	}
	require.Equal(t, 1, loads)
}

func TestFetch_ErrorsAreNotCached(t *testing.T) {
	c := querycache.New(8, time.Minute)
	boom := errors.New("boom")

	_, err := querycache.Fetch(context.Background(), c, "k", func(context.Context) (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)

	v, err := querycache.Fetch(context.Background(), c, "k", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	require.Equal(t, 7, v)
}

func TestInvalidate_DropsParameterizedKeys(t *testing.T) {
	c := querycache.New(8, time.Minute)
	c.Set(querycache.Key("leaderboard", 1), 1)
	c.Set(querycache.Key("leaderboard", 2), 2)
	c.Set("leaderboards", 3)
	c.Set(querycache.KeyProfile, 4)

	c.Invalidate("leaderboard", querycache.KeyProfile)

	_, ok := querycache.Get[int](c, "leaderboard:1")
	require.False(t, ok)
	_, ok = querycache.Get[int](c, "leaderboard:2")
	require.False(t, ok)
	_, ok = querycache.Get[int](c, querycache.KeyProfile)
	require.False(t, ok)

	v, ok := querycache.Get[int](c, "leaderboards")
	require.True(t, ok)
	require.Equal(t, 3, v)
}

func TestGet_WrongTypeMisses(t *testing.T) {
	c := querycache.New(8, time.Minute)
	c.Set("k", "text")
	_, ok := querycache.Get[int](c, "k")
	require.False(t, ok)
}

func TestExpiry(t *testing.T) {
	c := querycache.New(8, 20*time.Millisecond)
	c.Set("k", 1)
	require.Eventually(t, func() bool {
		_, ok := querycache.Get[int](c, "k")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestPurge(t *testing.T) {
	c := querycache.New(8, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Purge()
	require.Zero(t, c.Len())
}
