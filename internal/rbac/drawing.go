package rbac

import "buildsite/internal/models"

// CanDeleteDrawing: approval raises the bar from any admin to SUPER_ADMIN.
func CanDeleteDrawing(role models.Role, state models.DrawingState) bool {
	switch state {
	case models.DrawingDraft:
		return IsAdmin(role)
	case models.DrawingApproved:
		return role == models.RoleSuperAdmin
	}
	return false
}

// CanViewDrawing limits clients to approved drawings. Project visibility is
// checked separately.
func CanViewDrawing(role models.Role, state models.DrawingState) bool {
	switch role {
	case models.RoleSuperAdmin, models.RoleAdmin, models.RoleProjectManager, models.RoleSiteEngineer:
		return true
	case models.RoleClient:
		return state == models.DrawingApproved
	}
	return false
}

func AuthorizeDrawingDelete(role models.Role, state models.DrawingState) error {
	if CanDeleteDrawing(role, state) {
		return nil
	}
	if state == models.DrawingApproved {
		return denied("only SUPER_ADMIN may delete an approved drawing")
	}
	return denied("only admins may delete drawings")
}

func AuthorizeDrawingApproval(role models.Role, state models.DrawingState) error {
	if !IsAdmin(role) {
		return denied("only admins may approve drawings")
	}
	if state == models.DrawingApproved {
		return Invalid("drawing is already approved")
	}
	return nil
}

// AuthorizeDrawingRevocation fails on a draft: there is no approval to revoke.
func AuthorizeDrawingRevocation(role models.Role, state models.DrawingState) error {
	if !IsAdmin(role) {
		return denied("only admins may revoke drawing approval")
	}
	if state != models.DrawingApproved {
		return Invalid("drawing is not approved")
	}
	return nil
}
