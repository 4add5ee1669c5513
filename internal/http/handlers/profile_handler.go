package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"buildsite/internal/models"
	"buildsite/internal/rbac"
)

// ProfileHandler returns a user's profile. Profiles the caller may not view
// are reported as missing.
func ProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if !rbac.CanViewUserProfile(p, id) {
			fail(c, rbac.NotFound("user"))
			return
		}

		var user models.User
		if err := db.WithContext(c).First(&user, id).Error; err != nil {
			fail(c, rbac.NotFound("user"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}
