package application

import "github.com/kaamsetu/kaamsetu-api/internal/domain/entity"

// Client routing hints. Pure UX guidance, never an authorization
// decision.
const (
	RedirectCandidateSetup     = "/candidate/profile-setup"
	RedirectCandidateDashboard = "/candidate/dashboard"
	RedirectEmployerSetup      = "/employer/profile-setup"
	RedirectEmployerDashboard  = "/employer/dashboard"
	RedirectAdminDashboard     = "/admin/dashboard"
)

// RedirectHint derives the post-login destination from role and
// profile completion. Admins are always treated as profile-complete.
func RedirectHint(role entity.Role, profileCompleted bool) string {
	switch role {
	case entity.RoleAdmin:
		return RedirectAdminDashboard
	case entity.RoleEmployer:
		if profileCompleted {
			return RedirectEmployerDashboard
		}
		return RedirectEmployerSetup
	default:
		if profileCompleted {
			return RedirectCandidateDashboard
		}
		return RedirectCandidateSetup
	}
}
