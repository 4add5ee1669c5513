package models

import "time"

type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "planning"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectOnHold     ProjectStatus = "on_hold"
	ProjectCompleted  ProjectStatus = "completed"
)

// Project has exactly one owning manager and one client; additional managers
// and engineers are attached through ProjectMember rows.
type Project struct {
	ID        uint64        `gorm:"primaryKey" json:"id"`
	Name      string        `gorm:"size:200;not null" json:"name"`
	Location  string        `gorm:"size:255" json:"location,omitempty"`
	Status    ProjectStatus `gorm:"size:32;default:planning" json:"status"`
	Budget    int64         `json:"budget"` // minor currency units
	ManagerID uint64        `gorm:"index;not null" json:"manager_id"`
	ClientID  uint64        `gorm:"index;not null" json:"client_id"`
	StartDate *time.Time    `json:"start_date,omitempty"`
	EndDate   *time.Time    `json:"end_date,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	Manager *User           `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	Client  *User           `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Members []ProjectMember `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
}
