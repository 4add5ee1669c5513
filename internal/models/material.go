package models

import "time"

type Material struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	ProjectID   uint64    `gorm:"index;not null" json:"project_id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Quantity    float64   `json:"quantity"`
	Unit        string    `gorm:"size:32" json:"unit"`
	UnitCost    int64     `json:"unit_cost"` // minor currency units
	Supplier    string    `gorm:"size:200" json:"supplier,omitempty"`
	CreatedByID uint64    `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectUpdate is a progress note posted from the field.
type ProjectUpdate struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	ProjectID uint64    `gorm:"index;not null" json:"project_id"`
	AuthorID  uint64    `gorm:"index;not null" json:"author_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Progress  int       `json:"progress"` // percent complete, 0-100
	CreatedAt time.Time `json:"created_at"`
}
