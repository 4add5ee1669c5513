package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"buildsite/internal/auth"
	"buildsite/internal/models"
	"buildsite/internal/rbac"
)

// ListUsers returns all users, optionally filtered by ?role=.
func ListUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := db.WithContext(c).Order("id")
		if r := c.Query("role"); r != "" {
			role, ok := models.ParseRole(r)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
				return
			}
			q = q.Where("role = ?", role)
		}
		var users []models.User
		if err := q.Find(&users).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": users})
	}
}

// CreateUser inserts a new user
func CreateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Email    string `json:"email" binding:"required,email"`
			Name     string `json:"name" binding:"required"`
			Phone    string `json:"phone"`
			Role     string `json:"role" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, ok := principal(c)
		if !ok {
			return
		}

		role, ok := models.ParseRole(in.Role)
		if !ok {
			fail(c, rbac.Invalid("unknown role %q", in.Role))
			return
		}
		// Only a SUPER_ADMIN may mint another SUPER_ADMIN.
		if role == models.RoleSuperAdmin && p.Role != models.RoleSuperAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "only SUPER_ADMIN may create SUPER_ADMIN users"})
			return
		}

		in.Email = strings.TrimSpace(strings.ToLower(in.Email))
		in.Name = strings.TrimSpace(in.Name)

		hash, err := auth.HashPassword(in.Password)
		if errors.Is(err, auth.ErrPasswordTooShort) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			fail(c, err)
			return
		}

		var existing int64
		if err := db.WithContext(c).Model(&models.User{}).Where("email = ?", in.Email).Count(&existing).Error; err != nil {
			fail(c, err)
			return
		}
		if existing > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "email already exists"})
			return
		}

		user := models.User{
			Email:        in.Email,
			Name:         in.Name,
			Phone:        in.Phone,
			Role:         role,
			PasswordHash: hash,
			Status:       models.UserActive,
		}
		if err := db.WithContext(c).Create(&user).Error; err != nil {
			fail(c, err)
			return
		}
		recordAudit(db, c, p, "user.create", "user", user.ID, nil, map[string]any{"role": role})

		c.JSON(http.StatusCreated, gin.H{"user": user})
	}
}

// SetUserStatus activates or suspends a user. Callers cannot suspend themselves.
func SetUserStatus(db *gorm.DB, status models.UserStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if id == p.ID && status == models.UserSuspended {
			fail(c, rbac.Invalid("cannot suspend your own account"))
			return
		}

		var user models.User
		if err := db.WithContext(c).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				err = rbac.NotFound("user")
			}
			fail(c, err)
			return
		}
		if user.Role == models.RoleSuperAdmin && p.Role != models.RoleSuperAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "only SUPER_ADMIN may change a SUPER_ADMIN account"})
			return
		}
		if err := db.WithContext(c).Model(&user).Update("status", status).Error; err != nil {
			fail(c, err)
			return
		}
		user.Status = status
		recordAudit(db, c, p, "user."+string(status), "user", user.ID, nil, nil)

		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}
