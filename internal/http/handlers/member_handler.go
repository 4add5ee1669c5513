package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"buildsite/internal/models"
	"buildsite/internal/rbac"
)

// ListMembers lists membership rows with their users. Open to admins and to
// project managers who can see the project.
func ListMembers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, project, ok := projectScope(c, db)
		if !ok {
			return
		}
		if !rbac.IsAdmin(p.Role) && p.Role != models.RoleProjectManager {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		var members []models.ProjectMember
		if err := db.WithContext(c).Preload("User").Where("project_id = ?", project.ID).Order("id").Find(&members).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"members": members})
	}
}

// GrantMember adds a user to a project. The membership role must match the
// user's global role.
func GrantMember(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			UserID uint64 `json:"user_id" binding:"required"`
			Role   string `json:"role" binding:"required"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, project, ok := projectScope(c, db)
		if !ok {
			return
		}

		var target models.User
		if err := db.WithContext(c).First(&target, in.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				err = rbac.Invalid("user %d does not exist", in.UserID)
			}
			fail(c, err)
			return
		}
		if err := rbac.ValidateMembershipGrant(project, &target, models.Role(in.Role)); err != nil {
			fail(c, err)
			return
		}

		var existing int64
		if err := db.WithContext(c).Model(&models.ProjectMember{}).
			Where("project_id = ? AND user_id = ?", project.ID, target.ID).
			Count(&existing).Error; err != nil {
			fail(c, err)
			return
		}
		if existing > 0 {
			fail(c, rbac.Conflict("user %d is already a member of project %d", target.ID, project.ID))
			return
		}

		member := models.ProjectMember{ProjectID: project.ID, UserID: target.ID, Role: target.Role}
		if err := db.WithContext(c).Create(&member).Error; err != nil {
			fail(c, err)
			return
		}
		recordAudit(db, c, p, "member.grant", "project_member", member.ID, &project.ID,
			map[string]any{"user_id": target.ID, "role": member.Role})

		c.JSON(http.StatusCreated, gin.H{"member": member})
	}
}

// RevokeMember deletes the membership row outright.
func RevokeMember(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, project, ok := projectScope(c, db)
		if !ok {
			return
		}
		userID, ok := idParam(c, "userId")
		if !ok {
			return
		}
		res := db.WithContext(c).Where("project_id = ? AND user_id = ?", project.ID, userID).Delete(&models.ProjectMember{})
		if res.Error != nil {
			fail(c, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			fail(c, rbac.NotFound("membership"))
			return
		}
		recordAudit(db, c, p, "member.revoke", "project_member", userID, &project.ID, map[string]any{"user_id": userID})

		c.JSON(http.StatusOK, gin.H{"message": "membership revoked"})
	}
}
