package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"buildsite/internal/models"
	"buildsite/internal/rbac"
)

func ListInspections(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, project, ok := projectScope(c, db)
		if !ok {
			return
		}
		q := db.WithContext(c).Where("project_id = ?", project.ID).Order("id")
		if s := c.Query("status"); s != "" {
			q = q.Where("status = ?", s)
		}
		var rows []models.Inspection
		if err := q.Find(&rows).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"inspections": rows})
	}
}

func CreateInspection(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Title     string            `json:"title" binding:"required"`
			Responses map[string]string `json:"responses"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, project, ok := projectScope(c, db)
		if !ok || !allowed(c, p, rbac.CapCreateProjectUpdate) {
			return
		}
		insp := models.Inspection{
			ProjectID:   project.ID,
			Title:       in.Title,
			Status:      models.InspectionDraft,
			InspectorID: p.ID,
		}
		if in.Responses != nil {
			raw, _ := json.Marshal(in.Responses)
			insp.Responses = datatypes.JSON(raw)
		}
		if err := db.WithContext(c).Create(&insp).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"inspection": insp})
	}
}

// transitionInspection moves a row out of from only if it is still in from,
// so two concurrent submits cannot both succeed.
func transitionInspection(c *gin.Context, db *gorm.DB, insp *models.Inspection, from models.InspectionStatus, updates map[string]any) error {
	res := db.WithContext(c).Model(&models.Inspection{}).
		Where("id = ? AND status = ?", insp.ID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return rbac.Invalid("inspection is no longer %s", from)
	}
	return nil
}

// UpdateInspectionResponses replaces the answers on a draft inspection.
func UpdateInspectionResponses(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Responses map[string]string `json:"responses" binding:"required"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, project, ok := projectScope(c, db)
		if !ok {
			return
		}
		var insp models.Inspection
		if !findInProject(c, db, &insp, "inspection", project.ID, "iid") {
			return
		}
		if err := rbac.AuthorizeInspectionEdit(p.Role, insp.Status); err != nil {
			fail(c, err)
			return
		}
		raw, _ := json.Marshal(in.Responses)
		if err := transitionInspection(c, db, &insp, models.InspectionDraft,
			map[string]any{"responses": datatypes.JSON(raw)}); err != nil {
			fail(c, err)
			return
		}
		insp.Responses = datatypes.JSON(raw)
		c.JSON(http.StatusOK, gin.H{"inspection": insp})
	}
}

func SubmitInspection(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, project, ok := projectScope(c, db)
		if !ok {
			return
		}
		var insp models.Inspection
		if !findInProject(c, db, &insp, "inspection", project.ID, "iid") {
			return
		}
		if err := rbac.AuthorizeInspectionSubmit(p.Role, insp.Status); err != nil {
			fail(c, err)
			return
		}
		now := time.Now()
		if err := transitionInspection(c, db, &insp, models.InspectionDraft,
			map[string]any{"status": models.InspectionSubmitted, "submitted_at": now}); err != nil {
			fail(c, err)
			return
		}
		insp.Status, insp.SubmittedAt = models.InspectionSubmitted, &now
		recordAudit(db, c, p, "inspection.submit", "inspection", insp.ID, &project.ID, nil)

		c.JSON(http.StatusOK, gin.H{"inspection": insp})
	}
}

func ReviewInspection(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Notes string `json:"notes"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, project, ok := projectScope(c, db)
		if !ok {
			return
		}
		var insp models.Inspection
		if !findInProject(c, db, &insp, "inspection", project.ID, "iid") {
			return
		}
		if err := rbac.AuthorizeInspectionReview(p.Role, insp.Status); err != nil {
			fail(c, err)
			return
		}
		now := time.Now()
		reviewer := p.ID
		if err := transitionInspection(c, db, &insp, models.InspectionSubmitted, map[string]any{
			"status":         models.InspectionReviewed,
			"reviewed_at":    now,
			"reviewed_by_id": reviewer,
			"review_notes":   in.Notes,
		}); err != nil {
			fail(c, err)
			return
		}
		insp.Status, insp.ReviewedAt, insp.ReviewedByID, insp.ReviewNotes = models.InspectionReviewed, &now, &reviewer, in.Notes
		recordAudit(db, c, p, "inspection.review", "inspection", insp.ID, &project.ID, nil)

		c.JSON(http.StatusOK, gin.H{"inspection": insp})
	}
}
