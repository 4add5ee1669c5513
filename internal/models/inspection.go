package models

import (
	"time"

	"gorm.io/datatypes"
)

type InspectionStatus string

const (
	InspectionDraft     InspectionStatus = "DRAFT"
	InspectionSubmitted InspectionStatus = "SUBMITTED"
	InspectionReviewed  InspectionStatus = "REVIEWED"
)

type Inspection struct {
	ID           uint64           `gorm:"primaryKey" json:"id"`
	ProjectID    uint64           `gorm:"index;not null" json:"project_id"`
	Title        string           `gorm:"size:200;not null" json:"title"`
	Status       InspectionStatus `gorm:"size:16;not null;default:DRAFT" json:"status"`
	Responses    datatypes.JSON   `json:"responses,omitempty"` // checklist item -> answer
	InspectorID  uint64           `gorm:"index" json:"inspector_id"`
	SubmittedAt  *time.Time       `json:"submitted_at,omitempty"`
	ReviewedAt   *time.Time       `json:"reviewed_at,omitempty"`
	ReviewedByID *uint64          `json:"reviewed_by_id,omitempty"`
	ReviewNotes  string           `gorm:"type:text" json:"review_notes,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}
