package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/admissions-portal/forms"
	"github.com/jrsteele09/admissions-portal/portalapi"
	"github.com/jrsteele09/admissions-portal/querycache"
	"github.com/jrsteele09/admissions-portal/roles"
	"github.com/jrsteele09/admissions-portal/server/browsersession"
	"github.com/jrsteele09/admissions-portal/tasks"
	"github.com/rs/zerolog/log"
)

const maxUploadSize = 32 << 20

// statKinds are the dashboard charts of each role
var statKinds = map[roles.Role][]portalapi.StatKind{
	roles.Applicant: {portalapi.StatApplications, portalapi.StatSpecialties, portalapi.StatActivity},
	roles.Moderator: {portalapi.StatApplications, portalapi.StatSpecialties, portalapi.StatActivity},
	roles.AdminOrg:  {portalapi.StatApplications, portalapi.StatSpecialties, portalapi.StatModeratorActivity},
	roles.AdminApp:  {portalapi.StatSystem, portalapi.StatInstitutions, portalapi.StatAdminActivity},
}

// dashboardStat is one chart of the dashboard
type dashboardStat struct {
	Kind    portalapi.StatKind
	Entries []portalapi.StatEntry
}

// cached reads a query through the browser's query cache.
func cached[T any](r *http.Request, key string, load func(context.Context) (T, error)) (T, error) {
	return querycache.Fetch(r.Context(), browserFrom(r).Queries, key, load)
}

// DashboardHandler renders the role specific overview
func (s *Server) DashboardHandler() http.HandlerFunc {
	tmpl := MustParseTemplate("dashboard.html")

	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		api := browserFrom(r).API
		data := pageData{}

		var errs []error
		note := func(err error) {
			if err != nil {
				errs = append(errs, err)
			}
		}

		switch sess.Role {
		case roles.Applicant:
			apps, err := cached(r, querycache.KeyApplications, api.Applications)
			note(err)
			chats, err := cached(r, querycache.KeyChats, api.Chats)
			note(err)
			data["Applications"] = apps
			data["Institutions"] = countOrganizations(apps)
			data["Chats"] = len(chats)
		case roles.Moderator, roles.AdminOrg:
			apps, err := cached(r, querycache.KeyModeratorApps, api.ModeratorApplications)
			note(err)
			specs, err := cached(r, querycache.KeySpecialties, api.Specialties)
			note(err)
			data["Applications"] = apps
			data["Pending"] = countPending(apps)
			data["Specialties"] = len(specs)
			if sess.Role == roles.AdminOrg {
				mods, err := cached(r, querycache.KeyModerators, api.Moderators)
				note(err)
				data["Moderators"] = len(mods)
			} else {
				chats, err := cached(r, querycache.KeyChats, api.Chats)
				note(err)
				data["Chats"] = len(chats)
			}
		case roles.AdminApp:
			orgs, err := cached(r, querycache.KeyOrganizations, api.Organizations)
			note(err)
			admins, err := cached(r, querycache.KeyOrganizationAdmins, api.OrganizationAdmins)
			note(err)
			data["Organizations"] = len(orgs)
			data["Admins"] = len(admins)
		}

		var stats []dashboardStat
		for _, kind := range statKinds[sess.Role] {
			st, err := api.Statistics(r.Context(), kind)
			if err != nil {
				log.Debug().Err(err).Str("kind", string(kind)).Msg("Statistics unavailable")
				continue
			}
			stats = append(stats, dashboardStat{Kind: kind, Entries: st.Entries()})
		}
		data["Stats"] = stats

		if len(errs) > 0 {
			log.Warn().Err(errors.Join(errs...)).Str("email", sess.Email).Msg("Failed to load dashboard data")
			data["Error"] = s.userMessage(errs[0])
		}

		s.renderPage(w, r, RouteDashboard, "Дашборд", tmpl, data)
	}
}

// SettingsHandler renders the password form and, for applicants, the profile
// form with the state of the grade extraction.
func (s *Server) SettingsHandler() http.HandlerFunc {
	tmpl := MustParseTemplate("settings.html")

	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		data := pageData{"IsApplicant": sess.Role == roles.Applicant}

		if sess.Role == roles.Applicant {
			browser := browserFrom(r)
			profile, err := cached(r, querycache.KeyProfile, browser.API.ApplicantProfile)
			switch {
			case err == nil:
				if browser.Poller.Resume(s.ctx, profile.TaskID) {
					log.Info().Str("taskID", profile.TaskID).Msg("Resumed grade extraction poll")
				}
				data["HasProfile"] = true
				data["Profile"] = forms.FromProfile(profile)
				data["Photo"] = profile.Photo
				data["AttestationPhoto"] = profile.AttestationPhoto
				data["CalculatedGrade"] = profile.CalculatedAverageGrade
			case portalapi.IsNotFound(err):
				data["Profile"] = forms.Profile{}
			default:
				log.Warn().Err(err).Str("email", sess.Email).Msg("Failed to load profile")
				data["Error"] = s.userMessage(err)
				data["Profile"] = forms.Profile{}
			}
			s.addTaskData(data, browser)
			if outcome, ok := data["TaskOutcome"].(tasks.Outcome); ok && outcome.State == portalapi.TaskCompleted {
				data["CalculatedGrade"] = &outcome.Grade
			}
		}

		s.renderPage(w, r, RouteSettings, "Настройки", tmpl, data)
	}
}

// EmailChangeHandler changes the email of the signed-in user
func (s *Server) EmailChangeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := forms.EmailChangeFrom(r.PostForm)
		if err := s.validator.Check(form); err != nil {
			redirectWithError(w, r, RouteSettings, err.Error())
			return
		}
		browser := browserFrom(r)
		user, err := browser.API.UpdateCurrentUser(r.Context(), form.Request())
		if err != nil {
			log.Info().Err(err).Msg("Email change failed")
			redirectWithError(w, r, RouteSettings, s.userMessage(err))
			return
		}
		browser.Session.Refresh(user)
		redirectWithNotice(w, r, RouteSettings, "Email успешно изменён")
	}
}

// PasswordChangeHandler changes the password of the signed-in user
func (s *Server) PasswordChangeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := forms.PasswordChangeFrom(r.PostForm)
		if err := s.validator.Check(form); err != nil {
			redirectWithError(w, r, RouteSettings, err.Error())
			return
		}
		if err := browserFrom(r).API.ChangePassword(r.Context(), form.Request()); err != nil {
			log.Info().Err(err).Msg("Password change failed")
			redirectWithError(w, r, RouteSettings, s.userMessage(err))
			return
		}
		redirectWithNotice(w, r, RouteSettings, "Пароль успешно изменён")
	}
}

// ProfileSaveHandler stores the applicant profile. When the backend starts a
// grade extraction for the uploaded attestation, its task is polled in the
// background.
func (s *Server) ProfileSaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessionFrom(r).Role != roles.Applicant {
			redirectSuccess(w, r, RouteNotFound)
			return
		}
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		form := forms.ProfileFrom(r.PostForm)
		if err := s.validator.Check(form); err != nil {
			redirectWithError(w, r, RouteSettings, err.Error())
			return
		}

		in := portalapi.ProfileInput{Profile: form.APIProfile()}
		for field, dst := range map[string]**portalapi.Upload{"photo": &in.Photo, "attestation_photo": &in.AttestationPhoto} {
			file, header, err := r.FormFile(field)
			if errors.Is(err, http.ErrMissingFile) {
				continue
			}
			if err != nil {
				http.Error(w, "Invalid upload", http.StatusBadRequest)
				return
			}
			defer file.Close()
			*dst = &portalapi.Upload{Filename: header.Filename, Content: file}
		}

		browser := browserFrom(r)
		save := browser.API.UpdateApplicantProfile
		if r.PostForm.Get("has_profile") != "1" {
			save = browser.API.CreateApplicantProfile
		}

		profile, err := save(r.Context(), in)
		if err != nil {
			log.Info().Err(err).Msg("Profile save failed")
			redirectWithError(w, r, RouteSettings, s.userMessage(err))
			return
		}
		browser.Queries.Invalidate(querycache.KeyProfile)

		if profile.TaskID != "" {
			// the poll outlives this request
			browser.Poller.Start(s.ctx, profile.TaskID)
			redirectWithNotice(w, r, RouteSettings, "Профиль сохранён. Средний балл извлекается из аттестата.")
			return
		}
		redirectWithNotice(w, r, RouteSettings, "Профиль сохранён")
	}
}

// ProfileTaskHandler is the htmx fragment reporting the grade extraction
func (s *Server) ProfileTaskHandler() http.HandlerFunc {
	tmpl := MustParseTemplate("task_status.html")

	return func(w http.ResponseWriter, r *http.Request) {
		data := pageData{}
		s.addTaskData(data, browserFrom(r))
		s.renderFragment(w, r, tmpl, data)
	}
}

// addTaskData reports a running poll, or the outcome of the last one. An
// outcome is shown once. A completed extraction drops the cached profile
// again, since a load racing the poll may have stored the old grade.
func (s *Server) addTaskData(data pageData, browser *browsersession.Browser) {
	data["TaskPollEvery"] = htmxInterval(s.config.GetTaskPollInterval())
	if taskID, ok := browser.Poller.Active(); ok {
		data["TaskActive"] = true
		data["TaskID"] = taskID
		return
	}
	if outcome, ok := browser.Poller.TakeLast(); ok {
		data["TaskOutcome"] = outcome
		data["TaskCompleted"] = outcome.State == portalapi.TaskCompleted
		if outcome.State == portalapi.TaskCompleted {
			browser.Queries.Invalidate(querycache.KeyProfile)
		}
	}
}

// htmxInterval formats d for an hx-trigger "every" clause.
func htmxInterval(d time.Duration) string {
	if d <= 0 {
		d = tasks.DefaultInterval
	}
	if d%time.Second == 0 {
		return fmt.Sprintf("%ds", d/time.Second)
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}

func countOrganizations(apps []portalapi.Application) int {
	seen := map[int64]struct{}{}
	for _, app := range apps {
		if app.BuildingSpecialty == nil || app.BuildingSpecialty.Building == nil {
			continue
		}
		if id := app.BuildingSpecialty.Building.OrganizationID; id != 0 {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

func countPending(apps []portalapi.Application) int {
	n := 0
	for _, app := range apps {
		if app.Status == portalapi.ApplicationPending {
			n++
		}
	}
	return n
}
