package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"buildsite/internal/models"
	"buildsite/internal/rbac"
)

const principalKey = "principal"

// Claims represents the JWT claims structure.
type Claims struct {
	UserID uint64      `json:"uid"`
	Role   models.Role `json:"role"`
	Email  string      `json:"email"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 session token for user.
func IssueToken(user models.User, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates tokenStr and returns its claims. Tokens carrying a
// role outside the declared set are rejected.
func ParseToken(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	if _, ok := models.ParseRole(string(claims.Role)); !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

// JWT returns a Gin middleware that validates JWT tokens from
// either the Authorization header or a "token" cookie and verifies
// that the user is still active in the database. The role used for the
// rest of the request is the one in the token.
func JWT(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.GetHeader("Authorization")
		if tokenStr == "" {
			if cookie, err := c.Cookie("token"); err == nil {
				tokenStr = "Bearer " + cookie
			}
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr = strings.TrimSpace(strings.TrimPrefix(tokenStr, "Bearer "))

		claims, err := ParseToken(tokenStr, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if err := db.WithContext(c).First(&user, claims.UserID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		if !user.IsActive() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account suspended"})
			return
		}

		c.Set(principalKey, rbac.Principal{ID: claims.UserID, Role: claims.Role})
		c.Next()
	}
}

// CurrentPrincipal returns the caller set by JWT.
func CurrentPrincipal(c *gin.Context) (rbac.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return rbac.Principal{}, false
	}
	p, ok := v.(rbac.Principal)
	return p, ok
}

// SetPrincipal stores p on the context; used by JWT and by tests that bypass
// token handling.
func SetPrincipal(c *gin.Context, p rbac.Principal) { c.Set(principalKey, p) }
