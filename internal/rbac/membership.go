package rbac

import "buildsite/internal/models"

// IsMembershipRole reports whether role can be held on a ProjectMember row.
func IsMembershipRole(role models.Role) bool {
	switch role {
	case models.RoleSiteEngineer, models.RoleProjectManager:
		return true
	case models.RoleSuperAdmin, models.RoleAdmin, models.RoleClient:
		return false
	}
	return false
}

// ValidateMembershipGrant checks that target may join project as role. The
// membership role must equal the user's global role; nothing is coerced.
func ValidateMembershipGrant(project *models.Project, target *models.User, role models.Role) error {
	if !IsMembershipRole(role) {
		return Invalid("membership role must be %s or %s, got %q",
			models.RoleSiteEngineer, models.RoleProjectManager, role)
	}
	if target.Role != role {
		return Invalid("user %d has global role %s and cannot be added as %s",
			target.ID, target.Role, role)
	}
	if !target.IsActive() {
		return Invalid("user %d is suspended", target.ID)
	}
	if project.ManagerID == target.ID {
		return Conflict("user %d already manages project %d", target.ID, project.ID)
	}
	return nil
}
