package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"buildsite/internal/models"
	"buildsite/internal/rbac"
)

type drawingView struct {
	models.Media
	State models.DrawingState `json:"state"`
}

func viewDrawing(m models.Media) drawingView { return drawingView{Media: m, State: m.State()} }

// ListDrawings returns the project's drawings; clients only get approved ones.
func ListDrawings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, project, ok := projectScope(c, db)
		if !ok {
			return
		}
		var rows []models.Media
		if err := db.WithContext(c).
			Where("project_id = ? AND type = ?", project.ID, models.MediaDrawing).
			Order("id").Find(&rows).Error; err != nil {
			fail(c, err)
			return
		}
		out := make([]drawingView, 0, len(rows))
		for _, m := range rows {
			if rbac.CanViewDrawing(p.Role, m.State()) {
				out = append(out, viewDrawing(m))
			}
		}
		c.JSON(http.StatusOK, gin.H{"drawings": out})
	}
}

// CreateDrawing registers an uploaded drawing as a draft. The object is
// already in storage under storage_key.
func CreateDrawing(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Title      string `json:"title" binding:"required"`
			StorageKey string `json:"storage_key" binding:"required"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, project, ok := projectScope(c, db)
		if !ok || !allowed(c, p, rbac.CapCreateProjectUpdate) {
			return
		}

		// A new upload with an existing title is the next version of it.
		var prev int64
		if err := db.WithContext(c).Model(&models.Media{}).
			Where("project_id = ? AND type = ? AND title = ?", project.ID, models.MediaDrawing, in.Title).
			Count(&prev).Error; err != nil {
			fail(c, err)
			return
		}
		m := models.Media{
			ProjectID:    project.ID,
			Type:         models.MediaDrawing,
			Title:        in.Title,
			StorageKey:   in.StorageKey,
			Version:      int(prev) + 1,
			UploadedByID: p.ID,
		}
		if err := db.WithContext(c).Create(&m).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"drawing": viewDrawing(m)})
	}
}

// loadDrawing resolves :did inside the project, hiding drafts from clients.
func loadDrawing(c *gin.Context, db *gorm.DB, p rbac.Principal, project *models.Project) (*models.Media, bool) {
	id, ok := idParam(c, "did")
	if !ok {
		return nil, false
	}
	var m models.Media
	err := db.WithContext(c).
		Where("id = ? AND project_id = ? AND type = ?", id, project.ID, models.MediaDrawing).
		First(&m).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, err)
		return nil, false
	}
	if err != nil || !rbac.CanViewDrawing(p.Role, m.State()) {
		fail(c, rbac.NotFound("drawing"))
		return nil, false
	}
	return &m, true
}

func ApproveDrawing(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, project, ok := projectScope(c, db)
		if !ok {
			return
		}
		m, ok := loadDrawing(c, db, p, project)
		if !ok {
			return
		}
		if err := rbac.AuthorizeDrawingApproval(p.Role, m.State()); err != nil {
			fail(c, err)
			return
		}
		now := time.Now()
		approver := p.ID
		if err := db.WithContext(c).Model(m).Updates(map[string]any{"approved_at": now, "approved_by_id": approver}).Error; err != nil {
			fail(c, err)
			return
		}
		m.ApprovedAt, m.ApprovedByID = &now, &approver
		recordAudit(db, c, p, "drawing.approve", "drawing", m.ID, &project.ID, map[string]any{"version": m.Version})

		c.JSON(http.StatusOK, gin.H{"drawing": viewDrawing(*m)})
	}
}

// RevokeDrawing returns an approved drawing to draft.
func RevokeDrawing(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, project, ok := projectScope(c, db)
		if !ok {
			return
		}
		m, ok := loadDrawing(c, db, p, project)
		if !ok {
			return
		}
		if err := rbac.AuthorizeDrawingRevocation(p.Role, m.State()); err != nil {
			fail(c, err)
			return
		}
		if err := db.WithContext(c).Model(m).Updates(map[string]any{"approved_at": nil, "approved_by_id": nil}).Error; err != nil {
			fail(c, err)
			return
		}
		m.ApprovedAt, m.ApprovedByID = nil, nil
		recordAudit(db, c, p, "drawing.revoke", "drawing", m.ID, &project.ID, nil)

		c.JSON(http.StatusOK, gin.H{"drawing": viewDrawing(*m)})
	}
}

func DeleteDrawing(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, project, ok := projectScope(c, db)
		if !ok {
			return
		}
		m, ok := loadDrawing(c, db, p, project)
		if !ok {
			return
		}
		if err := rbac.AuthorizeDrawingDelete(p.Role, m.State()); err != nil {
			fail(c, err)
			return
		}
		if err := db.WithContext(c).Delete(m).Error; err != nil {
			fail(c, err)
			return
		}
		recordAudit(db, c, p, "drawing.delete", "drawing", m.ID, &project.ID,
			map[string]any{"state": m.State().String(), "title": m.Title})

		c.JSON(http.StatusOK, gin.H{"message": "drawing deleted"})
	}
}
