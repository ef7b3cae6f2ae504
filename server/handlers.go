package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/admissions-portal/forms"
	"github.com/jrsteele09/admissions-portal/portalapi"
	"github.com/jrsteele09/admissions-portal/querycache"
	"github.com/jrsteele09/admissions-portal/roles"
	"github.com/rs/zerolog/log"
)

// maxAttempts is what the backend allows per building specialty; it is shown
// until the attempts query answers.
const maxAttempts = 3

// SpecialtiesHandler lets applicants browse open specialties by city and
// institution. Organization admins manage their specialties and buildings.
func (s *Server) SpecialtiesHandler() http.HandlerFunc {
	browseTmpl := MustParseTemplate("specialties.html")
	manageTmpl := MustParseTemplate("specialties_manage.html")

	return func(w http.ResponseWriter, r *http.Request) {
		api := browserFrom(r).API
		data := pageData{}

		if sessionFrom(r).Role == roles.AdminOrg {
			specs, err := cached(r, querycache.KeySpecialties, api.Specialties)
			if err != nil {
				log.Warn().Err(err).Msg("Failed to load specialties")
				data["Error"] = s.userMessage(err)
			}
			buildings, err := cached(r, querycache.KeyBuildings, api.Buildings)
			if err != nil {
				log.Warn().Err(err).Msg("Failed to load buildings")
				data["Error"] = s.userMessage(err)
			}
			data["Specialties"] = specs
			data["Buildings"] = buildings
			s.renderPage(w, r, RouteSpecialties, "Специальности", manageTmpl, data)
			return
		}

		city := strings.TrimSpace(r.URL.Query().Get("city"))
		orgID, _ := strconv.ParseInt(r.URL.Query().Get("organization"), 10, 64)

		cities, err := cached(r, querycache.KeyCities, api.AvailableCities)
		if err != nil {
			log.Debug().Err(err).Msg("Failed to load cities")
		}
		orgs, err := cached(r, querycache.Key("applications/available-organizations", city), func(ctx context.Context) ([]portalapi.Organization, error) {
			return api.AvailableOrganizations(ctx, city)
		})
		if err != nil {
			log.Debug().Err(err).Msg("Failed to load organizations")
		}
		specs, err := cached(r, querycache.Key("applications/available-specialties", orgID, city), func(ctx context.Context) ([]portalapi.Specialty, error) {
			return api.AvailableSpecialties(ctx, orgID, city)
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load available specialties")
			data["Error"] = s.userMessage(err)
		}

		data["Cities"] = cities
		data["City"] = city
		data["Organizations"] = orgs
		data["OrganizationID"] = orgID
		data["Specialties"] = specs
		s.renderPage(w, r, RouteSpecialties, "Специальности", browseTmpl, data)
	}
}

// LeaderboardHandler ranks the applicants of one building specialty, chosen
// with the bs query value.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	tmpl := MustParseTemplate("leaderboard.html")

	return func(w http.ResponseWriter, r *http.Request) {
		api := browserFrom(r).API
		data := pageData{}

		var specs []portalapi.Specialty
		var err error
		if sessionFrom(r).Role == roles.Applicant {
			specs, err = cached(r, querycache.Key("applications/available-specialties", 0, ""), func(ctx context.Context) ([]portalapi.Specialty, error) {
				return api.AvailableSpecialties(ctx, 0, "")
			})
		} else {
			specs, err = cached(r, querycache.KeySpecialties, api.Specialties)
		}
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load specialties")
			data["Error"] = s.userMessage(err)
		}
		data["Specialties"] = specs

		if bsID, err := strconv.ParseInt(r.URL.Query().Get("bs"), 10, 64); err == nil && bsID > 0 {
			entries, err := api.Leaderboard(r.Context(), bsID)
			if err != nil {
				log.Info().Err(err).Int64("buildingSpecialtyID", bsID).Msg("Failed to load leaderboard")
				data["Error"] = s.userMessage(err)
			}
			data["Selected"] = bsID
			data["Entries"] = entries
		}

		s.renderPage(w, r, RouteLeaderboard, "Лидерборд", tmpl, data)
	}
}

// ApplicationsHandler lists the applicant's own applications
func (s *Server) ApplicationsHandler() http.HandlerFunc {
	tmpl := MustParseTemplate("applications.html")

	return func(w http.ResponseWriter, r *http.Request) {
		data := pageData{}
		apps, err := cached(r, querycache.KeyApplications, browserFrom(r).API.Applications)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load applications")
			data["Error"] = s.userMessage(err)
		}
		data["Applications"] = apps
		s.renderPage(w, r, RouteApplications, "Мои заявки", tmpl, data)
	}
}

// applicationTarget is the specialty an application form is for
type applicationTarget struct {
	Specialty *portalapi.Specialty
	Offering  *portalapi.BuildingSpecialty
	Remaining int
	Profile   bool
}

func (s *Server) loadApplicationTarget(r *http.Request) (*applicationTarget, error) {
	specialtyID, ok := pathID(r, "specialtyId")
	if !ok {
		return nil, nil
	}
	orgID, ok := pathID(r, "organizationId")
	if !ok {
		return nil, nil
	}

	browser := browserFrom(r)
	api := browser.API
	specs, err := api.AvailableSpecialties(r.Context(), orgID, "")
	if err != nil {
		return nil, err
	}

	target := &applicationTarget{Remaining: maxAttempts}
	for i := range specs {
		if specs[i].ID == specialtyID {
			target.Specialty = &specs[i]
			break
		}
	}
	if target.Specialty == nil {
		return nil, nil
	}
	if len(target.Specialty.BuildingSpecialties) > 0 {
		target.Offering = &target.Specialty.BuildingSpecialties[0]
		attempts, err := api.ApplicationAttempts(r.Context(), target.Offering.ID)
		if err != nil {
			log.Debug().Err(err).Int64("buildingSpecialtyID", target.Offering.ID).Msg("Attempts unavailable")
		} else {
			target.Remaining = attempts.Remaining
		}
	}

	if profile, err := cached(r, querycache.KeyProfile, api.ApplicantProfile); err == nil {
		target.Profile = true
		browser.Poller.Resume(s.ctx, profile.TaskID)
	} else if !portalapi.IsNotFound(err) {
		return nil, err
	}
	return target, nil
}

// ApplicationFormHandler renders the application form for a specialty
func (s *Server) ApplicationFormHandler() http.HandlerFunc {
	tmpl := MustParseTemplate("application_form.html")

	return func(w http.ResponseWriter, r *http.Request) {
		target, err := s.loadApplicationTarget(r)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load application form")
			redirectWithError(w, r, RouteSpecialties, s.userMessage(err))
			return
		}
		if target == nil {
			redirectWithError(w, r, RouteSpecialties, "Специальность не найдена")
			return
		}

		s.renderPage(w, r, RouteSpecialties, "Подача заявления", tmpl, pageData{
			"Target": target,
			"Form": forms.Application{
				Priority:           1,
				Course:             1,
				StudyForm:          string(portalapi.StudyFullTime),
				FundingBasis:       string(portalapi.FundingBudget),
				FirstTimeEducation: true,
				InfoSource:         "Сайт организации",
			},
		})
	}
}

// ApplicationSubmitHandler submits the application for the first building
// offering the specialty
func (s *Server) ApplicationSubmitHandler() http.HandlerFunc {
	tmpl := MustParseTemplate("application_form.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		target, err := s.loadApplicationTarget(r)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load application form")
			redirectWithError(w, r, RouteSpecialties, s.userMessage(err))
			return
		}
		if target == nil || target.Offering == nil {
			redirectWithError(w, r, RouteSpecialties, "Данные о специальности недоступны.")
			return
		}

		form := forms.ApplicationFrom(r.PostForm)
		form.BuildingSpecialtyID = target.Offering.ID

		render := func(data pageData) {
			data["Target"] = target
			data["Form"] = form
			s.renderPage(w, r, RouteSpecialties, "Подача заявления", tmpl, data)
		}

		if err := s.validator.Check(form); err != nil {
			render(formErrorData(err))
			return
		}
		if msg := placesProblem(form, target.Offering); msg != "" {
			render(pageData{"Error": msg})
			return
		}
		if target.Remaining <= 0 {
			render(pageData{"Error": "Вы исчерпали все попытки подачи заявления на эту специальность."})
			return
		}

		browser := browserFrom(r)
		if _, err := browser.API.CreateApplication(r.Context(), form.Request()); err != nil {
			log.Info().Err(err).Int64("buildingSpecialtyID", form.BuildingSpecialtyID).Msg("Application failed")
			render(pageData{"Error": s.userMessage(err)})
			return
		}
		browser.Queries.Invalidate(querycache.KeyApplications)
		redirectWithNotice(w, r, RouteApplications, "Заявление успешно отправлено!")
	}
}

func placesProblem(form forms.Application, offering *portalapi.BuildingSpecialty) string {
	switch portalapi.FundingBasis(form.FundingBasis) {
	case portalapi.FundingBudget:
		if offering.BudgetPlaces <= 0 {
			return "Нет доступных бюджетных мест для этой специальности."
		}
	case portalapi.FundingCommercial:
		if offering.CommercialPlaces <= 0 {
			return "Нет доступных коммерческих мест для этой специальности."
		}
	}
	return ""
}
