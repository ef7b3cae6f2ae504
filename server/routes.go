package server

import (
	"fmt"
	"net/http"

	"github.com/jrsteele09/admissions-portal/guard"
	"github.com/jrsteele09/admissions-portal/roles"
	"github.com/rs/zerolog/log"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteNotFound, ChainMiddleware(s.NotFoundHandler(), s.HTMLMiddleWare()...))

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageUIHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Registration and onboarding
	s.RegisterRouteHandler("GET "+RouteRegister, ChainMiddleware(s.RegisterGetHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.RegisterPostHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteVerifyEmail, ChainMiddleware(s.VerifyEmailHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteInstitutionsApply, ChainMiddleware(s.InstitutionApplyGetHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteInstitutionsApply, ChainMiddleware(s.InstitutionApplyPostHandler(), s.HTMLMiddleWare()...))

	// Every role
	s.page("GET "+RouteDashboard, RouteDashboard, s.DashboardHandler())
	s.page("GET "+RouteSettings, RouteSettings, s.SettingsHandler())
	s.page("POST "+RouteSettingsEmail, RouteSettings, s.EmailChangeHandler())
	s.page("POST "+RouteSettingsPassword, RouteSettings, s.PasswordChangeHandler())
	s.page("POST "+RouteSettingsProfile, RouteSettings, s.ProfileSaveHandler())
	s.page("GET "+RouteSettingsTask, RouteSettings, s.ProfileTaskHandler())

	// Chats
	s.page("GET "+RouteMessages, RouteMessages, s.ChatsHandler())
	s.page("POST "+RouteMessageNew, RouteMessages, s.ChatCreateHandler())
	s.page("GET "+RouteMessageChat, RouteMessages, s.ChatDetailHandler())
	s.page("POST "+RouteMessageSend, RouteMessages, s.ChatSendHandler())

	// Moderation
	s.page("GET "+RouteApplicationsManage, RouteApplicationsManage, s.ManageApplicationsHandler())
	s.page("POST "+RouteApplicationAccept, RouteApplicationsManage, s.AcceptApplicationHandler())
	s.page("POST "+RouteApplicationReject, RouteApplicationsManage, s.RejectApplicationHandler())

	// Organization admin
	s.page("GET "+RouteModerators, RouteModerators, s.ModeratorsHandler())
	s.page("POST "+RouteModeratorSave, RouteModerators, s.ModeratorSaveHandler())
	s.page("POST "+RouteModeratorDelete, RouteModerators, s.ModeratorDeleteHandler())

	// Application admin
	s.page("GET "+RouteInstitutions, RouteInstitutions, s.InstitutionsHandler())
	s.page("POST "+RouteInstitutionSave, RouteInstitutions, s.InstitutionSaveHandler())
	s.page("POST "+RouteInstitutionDelete, RouteInstitutions, s.InstitutionDeleteHandler())
	s.page("POST "+RouteOrganizationAdminSave, RouteInstitutions, s.OrganizationAdminSaveHandler())
	s.page("POST "+RouteOrganizationAdminDelete, RouteInstitutions, s.OrganizationAdminDeleteHandler())

	// Specialties
	s.page("GET "+RouteSpecialties, RouteSpecialties, s.SpecialtiesHandler())
	s.pageFor("POST "+RouteSpecialtySave, roles.NewSet(roles.AdminOrg), s.SpecialtySaveHandler())
	s.pageFor("POST "+RouteSpecialtyDelete, roles.NewSet(roles.AdminOrg), s.SpecialtyDeleteHandler())
	s.pageFor("POST "+RouteBuildingSave, roles.NewSet(roles.AdminOrg), s.BuildingSaveHandler())
	s.pageFor("POST "+RouteBuildingDelete, roles.NewSet(roles.AdminOrg), s.BuildingDeleteHandler())
	s.pageFor("POST "+RouteBuildingOffering, roles.NewSet(roles.AdminOrg), s.BuildingSpecialtySaveHandler())

	// Applicant
	s.page("GET "+RouteLeaderboard, RouteLeaderboard, s.LeaderboardHandler())
	s.page("GET "+RouteApplications, RouteApplications, s.ApplicationsHandler())
	s.page("GET "+RouteApplicationForm, RouteApplicationForm, s.ApplicationFormHandler())
	s.page("POST "+RouteApplicationForm, RouteApplicationForm, s.ApplicationSubmitHandler())

	s.RegisterRouteHandler("GET "+RouteStatic, ChainMiddleware(s.serveFileHandler(), s.AssetMiddleware()...))

	// Anything else is answered by the not-found page
	s.RegisterRouteHandler("/", ChainMiddleware(s.UnknownRouteHandler(), s.HTMLMiddleWare()...))
}

// page registers a handler guarded by the roles of a protected page.
func (s *Server) page(pattern, pagePath string, handler http.HandlerFunc) {
	route, ok := guard.Lookup(pagePath)
	if !ok {
		panic(fmt.Sprintf("no guard route for %s", pagePath))
	}
	s.pageFor(pattern, route.Allowed, handler)
}

func (s *Server) pageFor(pattern string, allowed roles.Set, handler http.HandlerFunc) {
	s.RegisterRouteHandler(pattern, ChainMiddleware(handler, s.HTMLMiddleWare(s.RequireRoles(allowed))...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := r.PathValue("file")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		err := StreamFile(w, r, filePath)
		if err != nil {
			logError(r.Method, filePath, err.Error())
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}

func logError(method, path, error string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	errorString := Red + error + ResetColor
	log.Warn().Msgf("[%-19s] %s %s", displayMethod, path, errorString)
}
