package rbac

import "buildsite/internal/models"

// CanTransition encodes DRAFT -> SUBMITTED -> REVIEWED. There is no way back.
func CanTransition(from, to models.InspectionStatus) bool {
	switch from {
	case models.InspectionDraft:
		return to == models.InspectionSubmitted
	case models.InspectionSubmitted:
		return to == models.InspectionReviewed
	case models.InspectionReviewed:
		return false
	}
	return false
}

// AuthorizeInspectionEdit rejects response edits once the inspection has
// left DRAFT, whatever the caller's role.
func AuthorizeInspectionEdit(role models.Role, status models.InspectionStatus) error {
	if !CanCreateProjectUpdate(role) {
		return denied("role %s may not edit inspections", role)
	}
	if status != models.InspectionDraft {
		return Invalid("inspection is %s; responses can no longer be edited", status)
	}
	return nil
}

func AuthorizeInspectionSubmit(role models.Role, status models.InspectionStatus) error {
	if !CanCreateProjectUpdate(role) {
		return denied("role %s may not submit inspections", role)
	}
	if !CanTransition(status, models.InspectionSubmitted) {
		return Invalid("inspection is %s and cannot be submitted", status)
	}
	return nil
}

func AuthorizeInspectionReview(role models.Role, status models.InspectionStatus) error {
	if !CanReviewInspections(role) {
		return denied("role %s may not review inspections", role)
	}
	if !CanTransition(status, models.InspectionReviewed) {
		return Invalid("inspection is %s and cannot be reviewed", status)
	}
	return nil
}
