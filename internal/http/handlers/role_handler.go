package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"buildsite/internal/models"
	"buildsite/internal/rbac"
)

// ListRoles returns the fixed role catalog with each role's capabilities.
func ListRoles() gin.HandlerFunc {
	type roleView struct {
		Role         models.Role       `json:"role"`
		Capabilities []rbac.Capability `json:"capabilities"`
		Membership   bool              `json:"membership"`
	}
	roles := make([]roleView, 0, len(models.Roles))
	for _, r := range models.Roles {
		roles = append(roles, roleView{Role: r, Capabilities: rbac.Capabilities(r), Membership: rbac.IsMembershipRole(r)})
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"roles": roles})
	}
}
