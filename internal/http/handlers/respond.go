package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"buildsite/internal/auth"
	"buildsite/internal/logger"
	"buildsite/internal/models"
	"buildsite/internal/rbac"
)

// fail writes err with the status the access layer assigns to it. Internal
// errors are logged and hidden from the caller.
func fail(c *gin.Context, err error) {
	status := rbac.StatusCode(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.AbortWithStatusJSON(status, gin.H{"error": "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func principal(c *gin.Context) (rbac.Principal, bool) {
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return p, ok
}

func idParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// projectScope resolves the caller and the :id project they must be able to see.
func projectScope(c *gin.Context, db *gorm.DB) (rbac.Principal, *models.Project, bool) {
	p, ok := principal(c)
	if !ok {
		return p, nil, false
	}
	projectID, ok := idParam(c, "id")
	if !ok {
		return p, nil, false
	}
	project, err := rbac.Checker{DB: db}.RequireProject(c, p, projectID)
	if err != nil {
		fail(c, err)
		return p, nil, false
	}
	return p, project, true
}

// findInProject loads one row of dest's type belonging to projectID.
func findInProject(c *gin.Context, db *gorm.DB, dest any, kind string, projectID uint64, param string) bool {
	id, ok := idParam(c, param)
	if !ok {
		return false
	}
	err := db.WithContext(c).Where("id = ? AND project_id = ?", id, projectID).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, rbac.NotFound(kind))
		return false
	}
	if err != nil {
		fail(c, err)
		return false
	}
	return true
}

func recordAudit(db *gorm.DB, c *gin.Context, p rbac.Principal, action, resourceType string, resourceID uint64, projectID *uint64, meta map[string]any) {
	var initiatorName string
	var u models.User
	if err := db.WithContext(c).First(&u, p.ID).Error; err == nil {
		initiatorName = u.Name
	}
	var metaJSON []byte
	if meta != nil {
		metaJSON, _ = json.Marshal(meta)
	}
	entry := models.AuditLog{
		UserID:        p.ID,
		ProjectID:     projectID,
		Action:        action,
		ResourceType:  resourceType,
		ResourceID:    resourceID,
		Metadata:      datatypes.JSON(metaJSON),
		IP:            c.ClientIP(),
		UserAgent:     c.GetHeader("User-Agent"),
		InitiatorName: initiatorName,
		CreatedAt:     time.Now(),
	}
	if err := db.WithContext(c).Create(&entry).Error; err != nil {
		logger.Warn().Err(err).Str("action", action).Msg("audit write failed")
	}
}

// allowed answers 403 when p's role lacks capability. Call it after the
// project has been resolved so invisible projects still read as missing.
func allowed(c *gin.Context, p rbac.Principal, capability rbac.Capability) bool {
	if rbac.Allows(p.Role, capability) {
		return true
	}
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "missing": capability})
	return false
}
