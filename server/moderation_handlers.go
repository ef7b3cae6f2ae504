package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/admissions-portal/forms"
	"github.com/jrsteele09/admissions-portal/portalapi"
	"github.com/jrsteele09/admissions-portal/querycache"
	"github.com/rs/zerolog/log"
)

// ManageApplicationsHandler lists the applications to the organization,
// optionally narrowed to one status.
func (s *Server) ManageApplicationsHandler() http.HandlerFunc {
	tmpl := MustParseTemplate("applications_manage.html")

	return func(w http.ResponseWriter, r *http.Request) {
		data := pageData{}
		apps, err := cached(r, querycache.KeyModeratorApps, browserFrom(r).API.ModeratorApplications)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load applications")
			data["Error"] = s.userMessage(err)
		}

		status := portalapi.ApplicationStatus(r.URL.Query().Get("status"))
		if status != "" {
			filtered := make([]portalapi.Application, 0, len(apps))
			for _, app := range apps {
				if app.Status == status {
					filtered = append(filtered, app)
				}
			}
			apps = filtered
		}

		data["Applications"] = apps
		data["Status"] = string(status)
		s.renderPage(w, r, RouteApplicationsManage, "Заявки", tmpl, data)
	}
}

// AcceptApplicationHandler accepts an application
func (s *Server) AcceptApplicationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			redirectSuccess(w, r, RouteNotFound)
			return
		}
		s.decide(w, r, portalapi.ModeratorDecision{ID: id, Action: portalapi.DecisionAccept}, "Заявка принята")
	}
}

// RejectApplicationHandler rejects an application with a reason
func (s *Server) RejectApplicationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			redirectSuccess(w, r, RouteNotFound)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := forms.Rejection{Reason: strings.TrimSpace(r.PostForm.Get("reason"))}
		if err := s.validator.Check(form); err != nil {
			redirectWithError(w, r, RouteApplicationsManage, err.Error())
			return
		}
		s.decide(w, r, portalapi.ModeratorDecision{ID: id, Action: portalapi.DecisionReject, RejectReason: form.Reason}, "Заявка отклонена")
	}
}

func (s *Server) decide(w http.ResponseWriter, r *http.Request, d portalapi.ModeratorDecision, notice string) {
	browser := browserFrom(r)
	if err := browser.API.DecideApplication(r.Context(), d); err != nil {
		log.Info().Err(err).Int64("applicationID", d.ID).Str("action", string(d.Action)).Msg("Decision failed")
		redirectWithError(w, r, RouteApplicationsManage, s.userMessage(err))
		return
	}
	browser.Queries.Invalidate(querycache.KeyModeratorApps)
	redirectWithNotice(w, r, RouteApplicationsManage, notice)
}
