package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"buildsite/internal/auth"
	"buildsite/internal/models"
	"buildsite/internal/rbac"
)

// LoginHandler authenticates the user and returns JWT
func LoginHandler(db *gorm.DB, jwtSecret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		email := strings.TrimSpace(strings.ToLower(input.Email))
		if err := db.WithContext(c).Where("email = ?", email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		if !auth.CheckPassword(user.PasswordHash, input.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		if !user.IsActive() {
			c.JSON(http.StatusForbidden, gin.H{"error": "account suspended"})
			return
		}

		tokenString, err := auth.IssueToken(user, jwtSecret, ttl)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create token"})
			return
		}

		c.SetCookie("token", tokenString, int(ttl.Seconds()), "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{
			"token": tokenString,
			"user":  user,
		})
	}
}

// LogoutHandler clears the session cookie.
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie("token", "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

// MeHandler returns the caller and the capabilities their role carries.
func MeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		var user models.User
		if err := db.WithContext(c).First(&user, p.ID).Error; err != nil {
			fail(c, rbac.NotFound("user"))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user":         user,
			"capabilities": rbac.Capabilities(p.Role),
		})
	}
}
