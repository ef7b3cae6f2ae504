package navigation

import "github.com/jrsteele09/admissions-portal/roles"

// Label is the Russian display name of a role.
func Label(r roles.Role) string {
	switch r {
	case roles.Applicant:
		return "Абитуриент"
	case roles.Moderator:
		return "Модератор"
	case roles.AdminOrg:
		return "Администратор организации"
	case roles.AdminApp:
		return "Администратор приложения"
	default:
		return "Пользователь"
	}
}

// Initial is the avatar letter shown next to the role label.
func Initial(r roles.Role) string {
	switch r {
	case roles.Applicant, roles.AdminOrg:
		return "A"
	case roles.Moderator:
		return "M"
	case roles.AdminApp:
		return "S"
	default:
		return "П"
	}
}
