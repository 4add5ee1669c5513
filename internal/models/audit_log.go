package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditLog struct {
	ID            int64          `gorm:"primaryKey" json:"id"`
	UserID        uint64         `gorm:"index" json:"user_id"`
	ProjectID     *uint64        `gorm:"index" json:"project_id,omitempty"`
	Action        string         `gorm:"size:200;not null" json:"action"` // e.g. "member.grant", "drawing.approve"
	ResourceType  string         `gorm:"size:100" json:"resource_type"`
	ResourceID    uint64         `gorm:"index" json:"resource_id"`
	Metadata      datatypes.JSON `json:"metadata,omitempty"`
	IP            string         `gorm:"size:64" json:"ip"`
	InitiatorName string         `gorm:"size:255" json:"initiator_name"`
	UserAgent     string         `gorm:"size:255" json:"user_agent"`
	CreatedAt     time.Time      `json:"created_at"`
}

// All returns every model in migration order.
func All() []any {
	return []any{
		&User{},
		&Project{},
		&ProjectMember{},
		&Media{},
		&Inspection{},
		&Payment{},
		&Material{},
		&ProjectUpdate{},
		&Query{},
		&AuditLog{},
	}
}
