package guard

import (
	"strings"

	"github.com/jrsteele09/admissions-portal/roles"
)

const (
	PathHome               = "/"
	PathLogin              = "/login"
	PathRegister           = "/register"
	PathVerifyEmail        = "/verify-email"
	PathInstitutionsApply  = "/institutions-apply"
	PathNotFound           = "/404"
	PathDashboard          = "/dashboard"
	PathSettings           = "/settings"
	PathMessages           = "/messages"
	PathApplicationsManage = "/applications-manage"
	PathModerators         = "/moderators"
	PathInstitutions       = "/institutions"
	PathSpecialties        = "/specialties"
	PathLeaderboard        = "/leaderboard"
	PathApplications       = "/applications"
	PathApplicationForm    = "/application/{specialtyId}/{organizationId}"
)

// Route is a protected page and the roles that may open it.
type Route struct {
	Pattern string
	Allowed roles.Set
}

// Routes lists every protected page.
var Routes = []Route{
	{PathDashboard, roles.Any},
	{PathSettings, roles.Any},
	{PathMessages, roles.NewSet(roles.Applicant, roles.Moderator, roles.AdminOrg)},
	{PathApplicationsManage, roles.NewSet(roles.Moderator, roles.AdminOrg)},
	{PathModerators, roles.NewSet(roles.AdminOrg)},
	{PathInstitutions, roles.NewSet(roles.AdminApp)},
	{PathSpecialties, roles.NewSet(roles.Applicant, roles.AdminOrg)},
	{PathLeaderboard, roles.NewSet(roles.Applicant, roles.AdminOrg, roles.Moderator)},
	{PathApplications, roles.NewSet(roles.Applicant)},
	{PathApplicationForm, roles.NewSet(roles.Applicant)},
}

// PublicPaths are reachable without a session.
var PublicPaths = []string{
	PathHome,
	PathLogin,
	PathRegister,
	PathVerifyEmail,
	PathInstitutionsApply,
	PathNotFound,
}

// IsPublic reports whether path needs no session.
func IsPublic(path string) bool {
	for _, p := range PublicPaths {
		if p == path {
			return true
		}
	}
	return false
}

// Lookup finds the protected route matching path. Pattern segments in braces
// match any single non-empty segment.
func Lookup(path string) (Route, bool) {
	for _, r := range Routes {
		if match(r.Pattern, path) {
			return r, true
		}
	}
	return Route{}, false
}

func match(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return false
	}
	for i, seg := range ps {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if seg != xs[i] {
			return false
		}
	}
	return true
}
