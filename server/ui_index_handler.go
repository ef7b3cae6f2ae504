package server

import (
	"net/http"

	"github.com/jrsteele09/admissions-portal/session"
)

// IndexHandler renders the landing page, or sends a signed-in user on to
// the dashboard.
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl := MustParseTemplate("index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if snap := s.currentSession(r, browserFrom(r)); snap.State == session.StateAuthenticated {
			redirectSuccess(w, r, RouteDashboard)
			return
		}
		s.renderPublicPage(w, r, s.config.GetAppName(), tmpl, nil)
	}
}

// NotFoundHandler renders the not-found page. It is also where the guard
// sends users whose role may not open a page.
func (s *Server) NotFoundHandler() http.HandlerFunc {
	tmpl := MustParseTemplate("not_found.html")

	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPublicStatus(w, r, http.StatusNotFound, "Страница не найдена", tmpl, nil, false)
	}
}

// UnknownRouteHandler answers paths no route matches.
func (s *Server) UnknownRouteHandler() http.HandlerFunc {
	notFound := s.NotFoundHandler()

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		notFound(w, r)
	}
}
