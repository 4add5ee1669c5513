package models

import "time"

type MediaType string

const (
	MediaDrawing  MediaType = "DRAWING"
	MediaPhoto    MediaType = "PHOTO"
	MediaDocument MediaType = "DOCUMENT"
)

// DrawingState is derived from the approval columns; nothing else should
// inspect ApprovedAt to decide whether a drawing is approved.
type DrawingState int

const (
	DrawingDraft DrawingState = iota
	DrawingApproved
)

func (s DrawingState) String() string {
	switch s {
	case DrawingDraft:
		return "DRAFT"
	case DrawingApproved:
		return "APPROVED"
	}
	return "UNKNOWN"
}

func (s DrawingState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Media is a file attached to a project. The object itself lives in external
// storage under StorageKey.
type Media struct {
	ID           uint64     `gorm:"primaryKey" json:"id"`
	ProjectID    uint64     `gorm:"index;not null" json:"project_id"`
	Type         MediaType  `gorm:"size:16;not null;index" json:"type"`
	Title        string     `gorm:"size:200;not null" json:"title"`
	StorageKey   string     `gorm:"size:512;not null" json:"storage_key"`
	Version      int        `gorm:"default:1" json:"version"`
	UploadedByID uint64     `gorm:"index" json:"uploaded_by_id"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	ApprovedByID *uint64    `json:"approved_by_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// State reports the approval state of a drawing.
func (m Media) State() DrawingState {
	if m.ApprovedAt != nil {
		return DrawingApproved
	}
	return DrawingDraft
}
