package server

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/admissions-portal/forms"
	"github.com/jrsteele09/admissions-portal/internal/utils"
	"github.com/jrsteele09/admissions-portal/querycache"
	"github.com/rs/zerolog/log"
)

// ModeratorsHandler lists the moderators of the organization
func (s *Server) ModeratorsHandler() http.HandlerFunc {
	tmpl := MustParseTemplate("moderators.html")

	return func(w http.ResponseWriter, r *http.Request) {
		data := pageData{}
		mods, err := cached(r, querycache.KeyModerators, browserFrom(r).API.Moderators)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load moderators")
			data["Error"] = s.userMessage(err)
		}
		data["Moderators"] = mods
		s.renderPage(w, r, RouteModerators, "Модераторы", tmpl, data)
	}
}

// ModeratorSaveHandler creates a moderator, or updates one when id is set
func (s *Server) ModeratorSaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := s.staffForm(w, r, RouteModerators)
		if !ok {
			return
		}

		browser := browserFrom(r)
		var err error
		if form.ID == 0 {
			_, err = browser.API.CreateModerator(r.Context(), form.Request())
		} else {
			_, err = browser.API.UpdateModerator(r.Context(), form.ID, form.Request())
		}
		if err != nil {
			log.Info().Err(err).Str("email", form.Email).Msg("Failed to save moderator")
			redirectWithError(w, r, RouteModerators, s.userMessage(err))
			return
		}
		browser.Queries.Invalidate(querycache.KeyModerators)
		redirectWithNotice(w, r, RouteModerators, "Модератор сохранён")
	}
}

// ModeratorDeleteHandler removes a moderator
func (s *Server) ModeratorDeleteHandler() http.HandlerFunc {
	return s.deleteHandler(RouteModerators, "Модератор удалён", func(r *http.Request, id int64) error {
		return browserFrom(r).API.DeleteModerator(r.Context(), id)
	}, querycache.KeyModerators)
}

// InstitutionsHandler lists the organizations of the platform and their
// administrators
func (s *Server) InstitutionsHandler() http.HandlerFunc {
	tmpl := MustParseTemplate("institutions.html")

	return func(w http.ResponseWriter, r *http.Request) {
		api := browserFrom(r).API
		data := pageData{}

		orgs, err := cached(r, querycache.KeyOrganizations, api.Organizations)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load organizations")
			data["Error"] = s.userMessage(err)
		}
		admins, err := cached(r, querycache.KeyOrganizationAdmins, api.OrganizationAdmins)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load organization admins")
			data["Error"] = s.userMessage(err)
		}

		names := make(map[int64]string, len(orgs))
		for _, org := range orgs {
			names[org.ID] = org.Name
		}
		// admin id to the name of the organization it manages
		adminOrgs := make(map[int64]string, len(admins))
		for _, admin := range admins {
			if admin.OrganizationID != nil {
				adminOrgs[admin.ID] = names[*admin.OrganizationID]
			}
		}
		data["Organizations"] = orgs
		data["Admins"] = admins
		data["AdminOrganizations"] = adminOrgs
		s.renderPage(w, r, RouteInstitutions, "Учебные заведения", tmpl, data)
	}
}

// InstitutionSaveHandler creates or updates an organization
func (s *Server) InstitutionSaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := forms.OrganizationFrom(r.PostForm)
		if err := s.validator.Check(form); err != nil {
			redirectWithError(w, r, RouteInstitutions, err.Error())
			return
		}

		browser := browserFrom(r)
		var err error
		if form.ID == 0 {
			_, err = browser.API.CreateOrganization(r.Context(), form.Request())
		} else {
			_, err = browser.API.UpdateOrganization(r.Context(), form.Request())
		}
		if err != nil {
			log.Info().Err(err).Str("name", form.Name).Msg("Failed to save organization")
			redirectWithError(w, r, RouteInstitutions, s.userMessage(err))
			return
		}
		browser.Queries.Invalidate(querycache.KeyOrganizations)
		redirectWithNotice(w, r, RouteInstitutions, "Учебное заведение сохранено")
	}
}

// InstitutionDeleteHandler removes an organization
func (s *Server) InstitutionDeleteHandler() http.HandlerFunc {
	return s.deleteHandler(RouteInstitutions, "Учебное заведение удалено", func(r *http.Request, id int64) error {
		return browserFrom(r).API.DeleteOrganization(r.Context(), id)
	}, querycache.KeyOrganizations, querycache.KeyOrganizationAdmins)
}

// OrganizationAdminSaveHandler creates or updates an organization admin
func (s *Server) OrganizationAdminSaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := s.staffForm(w, r, RouteInstitutions)
		if !ok {
			return
		}

		in := form.Request()
		if orgID, err := strconv.ParseInt(r.PostForm.Get("organization_id"), 10, 64); err == nil && orgID > 0 {
			in.OrganizationID = utils.Ptr(orgID)
		}
		if form.ID == 0 {
			in.ConsentToDataProcessing = utils.Ptr(true)
		}

		browser := browserFrom(r)
		var err error
		if form.ID == 0 {
			_, err = browser.API.CreateOrganizationAdmin(r.Context(), in)
		} else {
			_, err = browser.API.UpdateOrganizationAdmin(r.Context(), form.ID, in)
		}
		if err != nil {
			log.Info().Err(err).Str("email", form.Email).Msg("Failed to save organization admin")
			redirectWithError(w, r, RouteInstitutions, s.userMessage(err))
			return
		}
		browser.Queries.Invalidate(querycache.KeyOrganizationAdmins)
		redirectWithNotice(w, r, RouteInstitutions, "Администратор сохранён")
	}
}

// OrganizationAdminDeleteHandler removes an organization admin
func (s *Server) OrganizationAdminDeleteHandler() http.HandlerFunc {
	return s.deleteHandler(RouteInstitutions, "Администратор удалён", func(r *http.Request, id int64) error {
		return browserFrom(r).API.DeleteOrganizationAdmin(r.Context(), id)
	}, querycache.KeyOrganizationAdmins)
}

// SpecialtySaveHandler creates or updates a specialty of the organization
func (s *Server) SpecialtySaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := forms.SpecialtyFrom(r.PostForm)
		if err := s.validator.Check(form); err != nil {
			redirectWithError(w, r, RouteSpecialties, err.Error())
			return
		}

		browser := browserFrom(r)
		var err error
		if form.ID == 0 {
			_, err = browser.API.CreateSpecialty(r.Context(), form.Request())
		} else {
			_, err = browser.API.UpdateSpecialty(r.Context(), form.Request())
		}
		if err != nil {
			log.Info().Err(err).Str("name", form.Name).Msg("Failed to save specialty")
			redirectWithError(w, r, RouteSpecialties, s.userMessage(err))
			return
		}
		browser.Queries.Invalidate(querycache.KeySpecialties)
		redirectWithNotice(w, r, RouteSpecialties, "Специальность сохранена")
	}
}

// SpecialtyDeleteHandler removes a specialty
func (s *Server) SpecialtyDeleteHandler() http.HandlerFunc {
	return s.deleteHandler(RouteSpecialties, "Специальность удалена", func(r *http.Request, id int64) error {
		return browserFrom(r).API.DeleteSpecialty(r.Context(), id)
	}, querycache.KeySpecialties)
}

// BuildingSaveHandler creates or updates a building of the organization
func (s *Server) BuildingSaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := forms.BuildingFrom(r.PostForm)
		if err := s.validator.Check(form); err != nil {
			redirectWithError(w, r, RouteSpecialties, err.Error())
			return
		}

		browser := browserFrom(r)
		var err error
		if form.ID == 0 {
			_, err = browser.API.CreateBuilding(r.Context(), form.Request())
		} else {
			_, err = browser.API.UpdateBuilding(r.Context(), form.Request())
		}
		if err != nil {
			log.Info().Err(err).Str("name", form.Name).Msg("Failed to save building")
			redirectWithError(w, r, RouteSpecialties, s.userMessage(err))
			return
		}
		browser.Queries.Invalidate(querycache.KeyBuildings)
		redirectWithNotice(w, r, RouteSpecialties, "Корпус сохранён")
	}
}

// BuildingDeleteHandler removes a building with its offerings
func (s *Server) BuildingDeleteHandler() http.HandlerFunc {
	return s.deleteHandler(RouteSpecialties, "Корпус удалён", func(r *http.Request, id int64) error {
		return browserFrom(r).API.DeleteBuilding(r.Context(), id)
	}, querycache.KeyBuildings, querycache.KeySpecialties)
}

// BuildingSpecialtySaveHandler offers a specialty in a building
func (s *Server) BuildingSpecialtySaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := forms.OfferingFrom(r.PostForm)
		if err := s.validator.Check(form); err != nil {
			redirectWithError(w, r, RouteSpecialties, err.Error())
			return
		}

		browser := browserFrom(r)
		if _, err := browser.API.CreateBuildingSpecialty(r.Context(), form.Request()); err != nil {
			log.Info().Err(err).Int64("specialtyID", form.SpecialtyID).Msg("Failed to offer specialty")
			redirectWithError(w, r, RouteSpecialties, s.userMessage(err))
			return
		}
		browser.Queries.Invalidate(querycache.KeySpecialties, querycache.KeyBuildings)
		redirectWithNotice(w, r, RouteSpecialties, "Специальность добавлена в корпус")
	}
}

func (s *Server) staffForm(w http.ResponseWriter, r *http.Request, page string) (forms.Staff, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return forms.Staff{}, false
	}
	form := forms.StaffFrom(r.PostForm)
	if err := s.validator.Check(form); err != nil {
		redirectWithError(w, r, page, err.Error())
		return forms.Staff{}, false
	}
	return form, true
}

// deleteHandler removes the record named by the id path value and drops the
// queries listing it.
func (s *Server) deleteHandler(page, notice string, remove func(*http.Request, int64) error, keys ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			redirectSuccess(w, r, RouteNotFound)
			return
		}
		if err := remove(r, id); err != nil {
			log.Info().Err(err).Int64("id", id).Str("page", page).Msg("Delete failed")
			redirectWithError(w, r, page, s.userMessage(err))
			return
		}
		browserFrom(r).Queries.Invalidate(keys...)
		redirectWithNotice(w, r, page, notice)
	}
}
