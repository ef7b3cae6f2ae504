package server

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/jrsteele09/admissions-portal/navigation"
	"github.com/rs/zerolog/log"
)

const contentTypeHTML = "text/html; charset=utf-8"

// pageData is the model of every content template. Handlers add their own
// keys; the common ones are filled in by the render helpers.
type pageData map[string]any

func (s *Server) commonData(r *http.Request, data pageData) pageData {
	if data == nil {
		data = pageData{}
	}
	data["CSRFField"] = csrf.TemplateField(r)
	data["CSRFToken"] = csrf.Token(r)
	data["MediaBase"] = s.config.GetMediaBaseURL()
	if _, ok := data["Error"]; !ok {
		data["Error"] = r.URL.Query().Get("error")
	}
	if _, ok := data["Notice"]; !ok {
		data["Notice"] = r.URL.Query().Get("notice")
	}
	return data
}

// renderPage renders a page of the signed-in portal: the sidebar projected
// from the session role around the content template.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, activePath, pageTitle string, content *template.Template, data pageData) {
	sess := sessionFrom(r)
	data = s.commonData(r, data)
	data["Session"] = sess

	// Render content to string
	var contentBuf strings.Builder
	if err := content.Execute(&contentBuf, data); err != nil {
		log.Err(err).Str("template", content.Name()).Msg("Failed to render content")
		s.renderErrorPage(w, r, http.StatusInternalServerError)
		return
	}

	layoutData := map[string]interface{}{
		"AppName":    s.config.GetAppName(),
		"PageTitle":  pageTitle,
		"ActivePath": activePath,
		"Nav":        navigation.Unique(navigation.ForRole(sess.Role)),
		"Email":      sess.Email,
		"Role":       sess.Role,
		"CSRFField":  data["CSRFField"],
		"CSRFToken":  data["CSRFToken"],
		"Content":    template.HTML(contentBuf.String()),
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	if err := s.layout.Execute(w, layoutData); err != nil {
		log.Err(err).Msg("Failed to render layout")
	}
}

// renderPublicPage renders a page reachable without a session.
func (s *Server) renderPublicPage(w http.ResponseWriter, r *http.Request, pageTitle string, content *template.Template, data pageData) {
	s.renderPublicStatus(w, r, http.StatusOK, pageTitle, content, data, false)
}

func (s *Server) renderPublicStatus(w http.ResponseWriter, r *http.Request, status int, pageTitle string, content *template.Template, data pageData, refresh bool) {
	data = s.commonData(r, data)

	var contentBuf strings.Builder
	if err := content.Execute(&contentBuf, data); err != nil {
		log.Err(err).Str("template", content.Name()).Msg("Failed to render content")
		http.Error(w, "Произошла ошибка на сервере", http.StatusInternalServerError)
		return
	}

	layoutData := map[string]interface{}{
		"AppName":   s.config.GetAppName(),
		"PageTitle": pageTitle,
		"Refresh":   refresh,
		"CSRFToken": data["CSRFToken"],
		"Content":   template.HTML(contentBuf.String()),
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	if err := s.publicLayout.Execute(w, layoutData); err != nil {
		log.Err(err).Msg("Failed to render public layout")
	}
}

// renderFragment renders an htmx partial without a layout.
func (s *Server) renderFragment(w http.ResponseWriter, r *http.Request, tmpl *template.Template, data pageData) {
	data = s.commonData(r, data)
	w.Header().Set("Content-Type", contentTypeHTML)
	if err := tmpl.Execute(w, data); err != nil {
		log.Err(err).Str("template", tmpl.Name()).Msg("Failed to render fragment")
	}
}

// renderErrorPage is the error boundary: a generic message and a reload link.
func (s *Server) renderErrorPage(w http.ResponseWriter, r *http.Request, status int) {
	data := pageData{"Status": status}
	if status == http.StatusForbidden {
		data["Message"] = "Сессия формы истекла. Обновите страницу и повторите попытку."
	} else {
		data["Message"] = "Что-то пошло не так. Попробуйте перезагрузить страницу."
	}
	s.renderPublicStatus(w, r, status, "Ошибка", s.errorPage, data, false)
}

// renderLoading is shown while the session of the browser is still being
// validated. The page reloads itself until a decision can be made.
func (s *Server) renderLoading(w http.ResponseWriter, r *http.Request) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.renderPublicStatus(w, r, http.StatusOK, "Загрузка...", s.loadingPage, nil, true)
}
