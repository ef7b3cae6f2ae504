// Package navigation projects a role onto the sidebar menu.
package navigation

import (
	"github.com/jrsteele09/admissions-portal/guard"
	"github.com/jrsteele09/admissions-portal/roles"
)

// Item is one sidebar entry.
type Item struct {
	Label   string
	Path    string
	Allowed roles.Set
}

var (
	allRoles = roles.Any

	common = []Item{
		{"Дашборд", guard.PathDashboard, allRoles},
		{"Сообщения", guard.PathMessages, roles.NewSet(roles.Applicant, roles.Moderator, roles.AdminApp)},
		{"Настройки", guard.PathSettings, allRoles},
	}

	applicantGroup = []Item{
		{"Мои заявки", guard.PathApplications, roles.NewSet(roles.Applicant)},
		{"Специальности", guard.PathSpecialties, roles.NewSet(roles.Applicant)},
		{"Лидерборд", guard.PathLeaderboard, roles.NewSet(roles.Applicant)},
	}

	moderatorGroup = []Item{
		{"Заявки", guard.PathApplicationsManage, roles.NewSet(roles.Moderator, roles.AdminOrg)},
		{"Лидерборд", guard.PathLeaderboard, roles.NewSet(roles.Applicant)},
	}

	adminOrgGroup = []Item{
		{"Модераторы", guard.PathModerators, roles.NewSet(roles.AdminOrg)},
		{"Специальности", guard.PathSpecialties, roles.NewSet(roles.AdminOrg)},
		{"Лидерборд", guard.PathLeaderboard, roles.NewSet(roles.AdminOrg)},
	}

	adminAppGroup = []Item{
		{"Дашборд", guard.PathDashboard, allRoles},
		{"Учебные заведения", guard.PathInstitutions, roles.NewSet(roles.AdminApp)},
		{"Настройки", guard.PathSettings, allRoles},
	}
)

// groupsFor returns the role-specific groups appended after the common entries.
func groupsFor(r roles.Role) [][]Item {
	switch r {
	case roles.Applicant:
		return [][]Item{applicantGroup}
	case roles.Moderator:
		return [][]Item{moderatorGroup}
	case roles.AdminOrg:
		return [][]Item{moderatorGroup, adminOrgGroup}
	case roles.AdminApp:
		return [][]Item{adminAppGroup}
	default:
		return nil
	}
}

// ForRole returns the menu for r: common entries first, then the role's
// groups in order, keeping only the entries the role may open. A path can
// appear more than once when groups overlap. None yields an empty menu.
func ForRole(r roles.Role) []Item {
	out := []Item{}
	if !r.Valid() {
		return out
	}

	add := func(items []Item) {
		for _, it := range items {
			if it.Allowed.Contains(r) {
				out = append(out, it)
			}
		}
	}

	add(common)
	for _, g := range groupsFor(r) {
		add(g)
	}
	return out
}

// Unique drops repeated paths, keeping the first entry of each. The sidebar
// renders this so a page is linked once.
func Unique(items []Item) []Item {
	out := make([]Item, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if seen[it.Path] {
			continue
		}
		seen[it.Path] = true
		out = append(out, it)
	}
	return out
}
