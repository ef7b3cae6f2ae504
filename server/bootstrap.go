package server

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/admissions-portal/portalapi"
	"github.com/jrsteele09/admissions-portal/querycache"
	"github.com/jrsteele09/admissions-portal/server/browsersession"
	"github.com/jrsteele09/admissions-portal/session"
	"github.com/jrsteele09/admissions-portal/tasks"
	"github.com/rs/zerolog/log"
)

// bootstrapBrowser creates the state of a new browser context: an empty
// credential store, an API client reading from it, the session provider in
// its loading state, the grade poller and the query cache. All browsers share
// one outbound connection pool.
func (s *Server) bootstrapBrowser(now time.Time) (*browsersession.Browser, error) {
	browserID := uuid.NewString()
	store := session.NewMemoryStore()

	api, err := portalapi.NewClient(s.config.GetAPIBaseURL(), session.TokenSource(store),
		portalapi.WithHTTPClient(s.outbound),
		portalapi.WithTimeout(s.config.GetAPITimeout()),
		portalapi.WithMessages(s.messages),
	)
	if err != nil {
		return nil, fmt.Errorf("[Server bootstrapBrowser] failed to create API client: %w", err)
	}

	queries := querycache.New(s.config.GetQueryCacheSize(), s.config.GetQueryCacheTTL())
	poller := tasks.NewPoller(api,
		tasks.WithInterval(s.config.GetTaskPollInterval()),
		tasks.WithOnComplete(func(o tasks.Outcome) {
			log.Info().Str("browserID", browserID).Str("taskID", o.TaskID).Str("state", string(o.State)).Msg("Grade extraction finished")
			queries.Invalidate(querycache.KeyProfile)
		}),
	)

	browser := &browsersession.Browser{
		ID:        browserID,
		Store:     store,
		API:       api,
		Session:   session.NewProvider(store, api),
		Poller:    poller,
		Queries:   queries,
		CreatedAt: now,
		LastSeen:  now,
	}
	if err := s.browsers.Upsert(browser); err != nil {
		return nil, fmt.Errorf("[Server bootstrapBrowser] failed to store browser: %w", err)
	}
	return browser, nil
}
