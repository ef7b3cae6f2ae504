package server

import (
	"net/http"

	"github.com/jrsteele09/admissions-portal/forms"
	"github.com/jrsteele09/admissions-portal/session"
	"github.com/rs/zerolog/log"
)

// LoginPageUIHandler displays the login page (GET /login)
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	loginTmpl := MustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if snap := s.currentSession(r, browserFrom(r)); snap.State == session.StateAuthenticated {
			redirectSuccess(w, r, RouteDashboard)
			return
		}
		s.renderPublicPage(w, r, "Вход", loginTmpl, pageData{
			"Email": r.URL.Query().Get("email"),
		})
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	loginTmpl := MustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := forms.LoginFrom(r.PostForm)

		render := func(data pageData) {
			data["Email"] = form.Email
			s.renderPublicPage(w, r, "Вход", loginTmpl, data)
		}

		if err := s.validator.Check(form); err != nil {
			render(formErrorData(err))
			return
		}

		browser := browserFrom(r)
		if _, err := browser.Session.SignIn(r.Context(), form.Email, form.Password); err != nil {
			log.Info().Err(err).Str("email", form.Email).Msg("Sign in failed")
			render(pageData{"Error": s.userMessage(err)})
			return
		}

		browser.Queries.Purge()
		redirectSuccess(w, r, RouteDashboard)
	}
}

// LogoutHandler forgets the session of this browser. Nothing is sent to the
// backend.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		browser := browserFrom(r)
		browser.Poller.Stop()
		browser.Session.SignOut()
		browser.Queries.Purge()
		redirectSuccess(w, r, RouteLogin)
	}
}

// formErrorData turns a validation failure into template data: per-field
// messages under Fields, anything else as the page error.
func formErrorData(err error) pageData {
	if fields, ok := err.(forms.FieldErrors); ok {
		return pageData{"Fields": fields}
	}
	return pageData{"Error": err.Error()}
}
