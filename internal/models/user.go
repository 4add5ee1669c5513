package models

import "time"

// Role is the single global role carried by every user.
type Role string

const (
	RoleSuperAdmin     Role = "SUPER_ADMIN"
	RoleAdmin          Role = "ADMIN"
	RoleProjectManager Role = "PROJECT_MANAGER"
	RoleSiteEngineer   Role = "SITE_ENGINEER"
	RoleClient         Role = "CLIENT"
)

// Roles lists every declared role, most privileged first.
var Roles = []Role{RoleSuperAdmin, RoleAdmin, RoleProjectManager, RoleSiteEngineer, RoleClient}

// ParseRole returns the declared role matching s. Unknown input is reported
// with ok=false and must be treated as having no privileges.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleSuperAdmin, RoleAdmin, RoleProjectManager, RoleSiteEngineer, RoleClient:
		return r, true
	}
	return "", false
}

type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserSuspended UserStatus = "suspended"
)

type User struct {
	ID           uint64     `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string     `gorm:"size:200" json:"name"`
	Phone        string     `gorm:"size:50" json:"phone,omitempty"`
	Role         Role       `gorm:"size:32;not null;index" json:"role"`
	PasswordHash string     `gorm:"size:255" json:"-"`
	Status       UserStatus `gorm:"size:16;default:active" json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (u User) IsActive() bool { return u.Status == UserActive }
