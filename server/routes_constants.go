package server

import "github.com/jrsteele09/admissions-portal/guard"

// Route path constants
// Page paths come from the guard route table; the rest are form actions and
// htmx fragments served under those pages.
const (
	// Public pages
	RouteHome              = guard.PathHome
	RouteLogin             = guard.PathLogin
	RouteLogout            = "/logout"
	RouteRegister          = guard.PathRegister
	RouteVerifyEmail       = guard.PathVerifyEmail
	RouteInstitutionsApply = guard.PathInstitutionsApply
	RouteNotFound          = guard.PathNotFound

	// Every role
	RouteDashboard        = guard.PathDashboard
	RouteSettings         = guard.PathSettings
	RouteSettingsEmail    = "/settings/email"
	RouteSettingsPassword = "/settings/password"
	RouteSettingsProfile  = "/settings/profile"
	RouteSettingsTask     = "/settings/task"

	// Chats
	RouteMessages    = guard.PathMessages
	RouteMessageChat = "/messages/{chatId}"
	RouteMessageNew  = "/messages/new"
	RouteMessageSend = "/messages/{chatId}/send"

	// Moderation
	RouteApplicationsManage = guard.PathApplicationsManage
	RouteApplicationAccept  = "/applications-manage/{id}/accept"
	RouteApplicationReject  = "/applications-manage/{id}/reject"

	// Organization admin
	RouteModerators      = guard.PathModerators
	RouteModeratorSave   = "/moderators/save"
	RouteModeratorDelete = "/moderators/{id}/delete"

	// Application admin
	RouteInstitutions            = guard.PathInstitutions
	RouteInstitutionSave         = "/institutions/save"
	RouteInstitutionDelete       = "/institutions/{id}/delete"
	RouteOrganizationAdminSave   = "/institutions/admins/save"
	RouteOrganizationAdminDelete = "/institutions/admins/{id}/delete"

	// Specialties, shared by applicants and organization admins
	RouteSpecialties      = guard.PathSpecialties
	RouteSpecialtySave    = "/specialties/save"
	RouteSpecialtyDelete  = "/specialties/{id}/delete"
	RouteBuildingSave     = "/specialties/buildings/save"
	RouteBuildingDelete   = "/specialties/buildings/{id}/delete"
	RouteBuildingOffering = "/specialties/offerings/save"

	// Applicant
	RouteLeaderboard     = guard.PathLeaderboard
	RouteApplications    = guard.PathApplications
	RouteApplicationForm = guard.PathApplicationForm

	// Static Asset Routes (patterns)
	RouteStatic = "/static/{file...}"
)
