// Package querycache memoizes backend reads for one browser context until a
// mutation invalidates them or their TTL passes.
package querycache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"
)

// Keys of the queries shared between pages.
const (
	KeyCurrentUser        = "users/me"
	KeyProfile            = "users/profile"
	KeyApplications       = "applications"
	KeyModeratorApps      = "moderator/applications"
	KeyModerators         = "users/moderators"
	KeyOrganizationAdmins = "users/admin-org"
	KeyOrganizations      = "org/organizations"
	KeySpecialties        = "org/specialties"
	KeyBuildings          = "org/buildings"
	KeyChats              = "message/chats"
	KeyCities             = "applications/available-cities"
)

// Key joins a query name with its parameters, e.g. Key("leaderboard", 4).
func Key(name string, params ...any) string {
	if len(params) == 0 {
		return name
	}
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, name)
	for _, p := range params {
		parts = append(parts, fmt.Sprint(p))
	}
	return strings.Join(parts, ":")
}

type Cache struct {
	lru *expirable.LRU[string, any]
}

// New creates a cache of at most size entries, each kept for ttl.
func New(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = 128
	}
	return &Cache{lru: expirable.NewLRU[string, any](size, nil, ttl)}
}

// Get returns the cached value for key when it holds a T.
func Get[T any](c *Cache, key string) (T, bool) {
	var zero T
	v, ok := c.lru.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Set stores v under key.
func (c *Cache) Set(key string, v any) {
	c.lru.Add(key, v)
}

// Fetch returns the cached value for key or loads, caches and returns it.
// Errors are not cached.
func Fetch[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := Get[T](c, key); ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.lru.Add(key, v)
	return v, nil
}

// Invalidate drops the given keys and every key parameterized from them.
func (c *Cache) Invalidate(keys ...string) {
	for _, k := range keys {
		c.lru.Remove(k)
		c.InvalidatePrefix(k + ":")
	}
}

// InvalidatePrefix drops every key starting with prefix.
func (c *Cache) InvalidatePrefix(prefix string) {
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.lru.Remove(k)
		}
	}
}

// Purge drops everything, as on sign-out.
func (c *Cache) Purge() {
	log.Debug().Int("entries", c.lru.Len()).Msg("Purging query cache")
	c.lru.Purge()
}

func (c *Cache) Len() int {
	return c.lru.Len()
}
