package rbac

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buildsite/internal/models"
)

func TestDrawingDelete(t *testing.T) {
	cases := []struct {
		role         models.Role
		draft, apprv bool
	}{
		{models.RoleSuperAdmin, true, true},
		{models.RoleAdmin, true, false},
		{models.RoleProjectManager, false, false},
		{models.RoleSiteEngineer, false, false},
		{models.RoleClient, false, false},
		{"", false, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.draft, CanDeleteDrawing(tc.role, models.DrawingDraft), "%s draft", tc.role)
		assert.Equal(t, tc.apprv, CanDeleteDrawing(tc.role, models.DrawingApproved), "%s approved", tc.role)
	}

	err := AuthorizeDrawingDelete(models.RoleAdmin, models.DrawingApproved)
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.NoError(t, AuthorizeDrawingDelete(models.RoleSuperAdmin, models.DrawingApproved))
}

func TestDrawingStateDerivation(t *testing.T) {
	var m models.Media
	assert.Equal(t, models.DrawingDraft, m.State())
	now := m.CreatedAt
	m.ApprovedAt = &now
	assert.Equal(t, models.DrawingApproved, m.State())
}

func TestDrawingApproval(t *testing.T) {
	assert.NoError(t, AuthorizeDrawingApproval(models.RoleAdmin, models.DrawingDraft))
	assert.True(t, errors.Is(AuthorizeDrawingApproval(models.RoleProjectManager, models.DrawingDraft), ErrForbidden))

	var v *ValidationError
	require.ErrorAs(t, AuthorizeDrawingApproval(models.RoleAdmin, models.DrawingApproved), &v)
}

func TestDrawingRevocation(t *testing.T) {
	assert.NoError(t, AuthorizeDrawingRevocation(models.RoleAdmin, models.DrawingApproved))

	err := AuthorizeDrawingRevocation(models.RoleSuperAdmin, models.DrawingDraft)
	var v *ValidationError
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.Error(), "not approved")

	// Role is checked before state so non-admins learn nothing about approval.
	assert.True(t, errors.Is(AuthorizeDrawingRevocation(models.RoleSiteEngineer, models.DrawingDraft), ErrForbidden))
}

func TestCanViewDrawing(t *testing.T) {
	assert.False(t, CanViewDrawing(models.RoleClient, models.DrawingDraft))
	assert.True(t, CanViewDrawing(models.RoleClient, models.DrawingApproved))
	assert.True(t, CanViewDrawing(models.RoleSiteEngineer, models.DrawingDraft))
	assert.False(t, CanViewDrawing("", models.DrawingApproved))
}

func TestInspectionTransitions(t *testing.T) {
	d, s, r := models.InspectionDraft, models.InspectionSubmitted, models.InspectionReviewed
	assert.True(t, CanTransition(d, s))
	assert.True(t, CanTransition(s, r))
	for _, bad := range [][2]models.InspectionStatus{{s, d}, {r, s}, {r, d}, {d, r}, {d, d}, {"", s}} {
		assert.False(t, CanTransition(bad[0], bad[1]), "%s -> %s", bad[0], bad[1])
	}
}

func TestInspectionEditLockedAfterSubmit(t *testing.T) {
	assert.NoError(t, AuthorizeInspectionEdit(models.RoleSiteEngineer, models.InspectionDraft))
	for _, role := range []models.Role{models.RoleSuperAdmin, models.RoleAdmin, models.RoleProjectManager, models.RoleSiteEngineer} {
		for _, st := range []models.InspectionStatus{models.InspectionSubmitted, models.InspectionReviewed} {
			var v *ValidationError
			assert.ErrorAs(t, AuthorizeInspectionEdit(role, st), &v, "%s on %s", role, st)
		}
	}
	assert.True(t, errors.Is(AuthorizeInspectionEdit(models.RoleClient, models.InspectionDraft), ErrForbidden))
}

func TestInspectionSubmitAndReview(t *testing.T) {
	assert.NoError(t, AuthorizeInspectionSubmit(models.RoleSiteEngineer, models.InspectionDraft))
	assert.Error(t, AuthorizeInspectionSubmit(models.RoleSiteEngineer, models.InspectionSubmitted))

	assert.NoError(t, AuthorizeInspectionReview(models.RoleProjectManager, models.InspectionSubmitted))
	assert.Error(t, AuthorizeInspectionReview(models.RoleProjectManager, models.InspectionDraft))
	assert.Error(t, AuthorizeInspectionReview(models.RoleAdmin, models.InspectionReviewed))
	assert.True(t, errors.Is(AuthorizeInspectionReview(models.RoleSiteEngineer, models.InspectionSubmitted), ErrForbidden))
}

func TestValidateMembershipGrant(t *testing.T) {
	project := &models.Project{ID: 1, ManagerID: 10, ClientID: 20}
	eng := &models.User{ID: 30, Role: models.RoleSiteEngineer, Status: models.UserActive}
	pm := &models.User{ID: 40, Role: models.RoleProjectManager, Status: models.UserActive}
	client := &models.User{ID: 20, Role: models.RoleClient, Status: models.UserActive}
	owner := &models.User{ID: 10, Role: models.RoleProjectManager, Status: models.UserActive}
	suspended := &models.User{ID: 50, Role: models.RoleSiteEngineer, Status: models.UserSuspended}

	assert.NoError(t, ValidateMembershipGrant(project, eng, models.RoleSiteEngineer))
	assert.NoError(t, ValidateMembershipGrant(project, pm, models.RoleProjectManager))

	var v *ValidationError
	err := ValidateMembershipGrant(project, client, models.RoleSiteEngineer)
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.Error(), "CLIENT")
	assert.Contains(t, v.Error(), "SITE_ENGINEER")

	assert.ErrorAs(t, ValidateMembershipGrant(project, eng, models.RoleProjectManager), &v)
	assert.ErrorAs(t, ValidateMembershipGrant(project, client, models.RoleClient), &v)
	assert.ErrorAs(t, ValidateMembershipGrant(project, eng, models.RoleAdmin), &v)
	assert.ErrorAs(t, ValidateMembershipGrant(project, suspended, models.RoleSiteEngineer), &v)
	assert.True(t, errors.Is(ValidateMembershipGrant(project, owner, models.RoleProjectManager), ErrConflict))
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, StatusCode(ErrUnauthenticated))
	assert.Equal(t, http.StatusForbidden, StatusCode(denied("x")))
	assert.Equal(t, http.StatusNotFound, StatusCode(NotFound("project")))
	assert.Equal(t, http.StatusConflict, StatusCode(Conflict("dup")))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusCode(Invalid("bad %d", 1)))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("db down")))
	assert.Equal(t, "project not found", NotFound("project").Error())
}
