package server

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/admissions-portal/guard"
	"github.com/jrsteele09/admissions-portal/roles"
	"github.com/jrsteele09/admissions-portal/server/browsersession"
	"github.com/jrsteele09/admissions-portal/session"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyBrowser stores the *browsersession.Browser of the request
	ContextKeyBrowser ContextKey = "browser"
	// ContextKeySession stores the authenticated session.Session
	ContextKeySession ContextKey = "session"
)

// BrowserMiddleware resolves the browser context from its cookie, creating a
// fresh one for unknown or missing cookies.
func (s *Server) BrowserMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()

		var browser *browsersession.Browser
		if cookie, err := r.Cookie(browserCookieName); err == nil && cookie.Value != "" {
			if b, err := s.browsers.Get(cookie.Value); err == nil {
				browser = b
				_ = s.browsers.Touch(b.ID, now)
			}
		}

		if browser == nil {
			b, err := s.bootstrapBrowser(now)
			if err != nil {
				log.Err(err).Msg("Failed to create browser context")
				s.renderErrorPage(w, r, http.StatusInternalServerError)
				return
			}
			browser = b
			s.setBrowserCookie(w, r, browser.ID, int(s.config.GetSessionMaxAge().Seconds()))
		}

		ctx := context.WithValue(r.Context(), ContextKeyBrowser, browser)
		next(w, r.WithContext(ctx))
	}
}

// RequireRoles guards a page: a session still loading gets the loading
// placeholder, no session goes to login and a role outside allowed goes to
// the not-found page.
func (s *Server) RequireRoles(allowed roles.Set) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			browser := browserFrom(r)
			if browser == nil {
				s.renderErrorPage(w, r, http.StatusInternalServerError)
				return
			}

			snap := s.currentSession(r, browser)
			outcome := guard.Decide(snap, browser.Session.HasToken(), allowed)
			logOutcome(r.URL.Path, outcome)

			switch outcome {
			case guard.Allow:
				ctx := context.WithValue(r.Context(), ContextKeySession, *snap.Session)
				next(w, r.WithContext(ctx))
			case guard.Loading:
				s.renderLoading(w, r)
			case guard.RedirectLogin:
				redirectSuccess(w, r, guard.PathLogin)
			default:
				redirectSuccess(w, r, guard.PathNotFound)
			}
		}
	}
}

// currentSession validates a persisted token on the first request of a
// browser context. Requests arriving while validation runs see the loading
// state.
func (s *Server) currentSession(r *http.Request, browser *browsersession.Browser) session.Snapshot {
	snap := browser.Session.Snapshot()
	if snap.State != session.StateLoading {
		return snap
	}
	snap, err := browser.Session.Hydrate(r.Context())
	if err != nil {
		log.Debug().Err(err).Str("browserID", browser.ID).Msg("Session validation interrupted")
	}
	return snap
}

func browserFrom(r *http.Request) *browsersession.Browser {
	b, _ := r.Context().Value(ContextKeyBrowser).(*browsersession.Browser)
	return b
}

func sessionFrom(r *http.Request) session.Session {
	sess, _ := r.Context().Value(ContextKeySession).(session.Session)
	return sess
}

func logOutcome(path string, outcome guard.Outcome) {
	color, ok := outcomeColors[outcome.String()]
	if !ok {
		color = Gray
	}
	log.Debug().Msgf("[guard] %s %s%s%s", path, color, outcome, ResetColor)
}
