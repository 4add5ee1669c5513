package models

import "time"

// ProjectMember grants a user access to a project beyond the manager/client
// foreign keys. The (project_id, user_id) pair is unique. Rows are hard
// deleted on revoke so the pair can be granted again.
type ProjectMember struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	ProjectID uint64    `gorm:"uniqueIndex:idx_project_user;not null" json:"project_id"`
	UserID    uint64    `gorm:"uniqueIndex:idx_project_user;index;not null" json:"user_id"`
	Role      Role      `gorm:"size:32;not null" json:"role"` // SITE_ENGINEER or PROJECT_MANAGER
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ProjectMember) TableName() string { return "project_members" }
