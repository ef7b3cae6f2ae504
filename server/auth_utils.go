package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/admissions-portal/portalapi"
	"github.com/rs/zerolog/log"
)

const (
	// browserCookieName identifies the browser context holding the session
	browserCookieName = "portal_browser_id"
	// csrfFieldName is the hidden form field carrying the CSRF token
	csrfFieldName = "csrf_token"
)

func (s *Server) setBrowserCookie(w http.ResponseWriter, r *http.Request, browserID string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     browserCookieName,
		Value:    browserID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.GetSecureCookies() || getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// userMessage is the text shown to the user for a failed backend call.
// Anything other than a normalized API error gets the generic message.
func (s *Server) userMessage(err error) string {
	if apiErr, ok := portalapi.AsError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return s.messages.Default()
}

func (s *Server) csrfFailureHandler(w http.ResponseWriter, r *http.Request) {
	log.Warn().Str("path", r.URL.Path).Str("method", r.Method).Msg("CSRF validation failed")
	if isHTMXRequest(r) {
		http.Error(w, "Форма устарела, обновите страницу", http.StatusForbidden)
		return
	}
	s.renderErrorPage(w, r, http.StatusForbidden)
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	redirectSuccess(w, r, withQuery(path, "error", errorMsg))
}

// redirectWithNotice carries a confirmation message to the next page
func redirectWithNotice(w http.ResponseWriter, r *http.Request, path, notice string) {
	redirectSuccess(w, r, withQuery(path, "notice", notice))
}

func withQuery(path, key, value string) string {
	u, err := url.Parse(path)
	if err != nil {
		return path + "?" + key + "=" + url.QueryEscape(value)
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
