package rbac

import "buildsite/internal/models"

// Principal is the authenticated caller of a single request. Its role comes
// from the session token and does not change for the life of the request.
type Principal struct {
	ID   uint64      `json:"id"`
	Role models.Role `json:"role"`
}

// Every predicate below switches over the declared roles and falls through
// to false, so an unknown or empty role never gains a privilege.

func IsAdmin(role models.Role) bool {
	switch role {
	case models.RoleSuperAdmin, models.RoleAdmin:
		return true
	case models.RoleProjectManager, models.RoleSiteEngineer, models.RoleClient:
		return false
	}
	return false
}

func CanManageUsers(role models.Role) bool    { return IsAdmin(role) }
func CanManageProjects(role models.Role) bool { return IsAdmin(role) }

// CanEditPayments covers financial mutation; engineers and clients are excluded.
func CanEditPayments(role models.Role) bool {
	switch role {
	case models.RoleSuperAdmin, models.RoleAdmin, models.RoleProjectManager:
		return true
	case models.RoleSiteEngineer, models.RoleClient:
		return false
	}
	return false
}

func CanManageMaterials(role models.Role) bool { return CanEditPayments(role) }

// CanCreateProjectUpdate is field-level authorship: everyone but the client.
func CanCreateProjectUpdate(role models.Role) bool {
	switch role {
	case models.RoleSuperAdmin, models.RoleAdmin, models.RoleProjectManager, models.RoleSiteEngineer:
		return true
	case models.RoleClient:
		return false
	}
	return false
}

func CanReviewInspections(role models.Role) bool {
	switch role {
	case models.RoleSuperAdmin, models.RoleAdmin, models.RoleProjectManager:
		return true
	case models.RoleSiteEngineer, models.RoleClient:
		return false
	}
	return false
}

// Capability is a "resource:action" key naming a role-level permission.
type Capability string

const (
	CapManageUsers         Capability = "users:manage"
	CapManageProjects      Capability = "projects:manage"
	CapEditPayments        Capability = "payments:edit"
	CapManageMaterials     Capability = "materials:manage"
	CapCreateProjectUpdate Capability = "updates:create"
	CapReviewInspections   Capability = "inspections:review"
	CapApproveDrawings     Capability = "drawings:approve"
	CapReadAudit           Capability = "audit:read"
)

var capabilities = []Capability{
	CapManageUsers,
	CapManageProjects,
	CapEditPayments,
	CapManageMaterials,
	CapCreateProjectUpdate,
	CapReviewInspections,
	CapApproveDrawings,
	CapReadAudit,
}

// Allows reports whether role holds capability. Unknown capabilities are denied.
func Allows(role models.Role, capability Capability) bool {
	switch capability {
	case CapManageUsers:
		return CanManageUsers(role)
	case CapManageProjects:
		return CanManageProjects(role)
	case CapEditPayments:
		return CanEditPayments(role)
	case CapManageMaterials:
		return CanManageMaterials(role)
	case CapCreateProjectUpdate:
		return CanCreateProjectUpdate(role)
	case CapReviewInspections:
		return CanReviewInspections(role)
	case CapApproveDrawings, CapReadAudit:
		return IsAdmin(role)
	}
	return false
}

// Capabilities lists what role may do, in a stable order.
func Capabilities(role models.Role) []Capability {
	out := []Capability{}
	for _, c := range capabilities {
		if Allows(role, c) {
			out = append(out, c)
		}
	}
	return out
}

// CanViewUserProfile gives oversight roles broad visibility; everyone else
// may only see themselves.
func CanViewUserProfile(current Principal, targetUserID uint64) bool {
	switch current.Role {
	case models.RoleSuperAdmin, models.RoleAdmin, models.RoleProjectManager:
		return true
	case models.RoleSiteEngineer, models.RoleClient:
		return current.ID != 0 && current.ID == targetUserID
	}
	return false
}
