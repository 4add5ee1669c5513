package models

import "time"

type QueryStatus string

const (
	QueryOpen     QueryStatus = "open"
	QueryAnswered QueryStatus = "answered"
	QueryClosed   QueryStatus = "closed"
)

// Query is a question raised on a project, typically by the client.
type Query struct {
	ID            uint64      `gorm:"primaryKey" json:"id"`
	ProjectID     uint64      `gorm:"index;not null" json:"project_id"`
	RaisedByID    uint64      `gorm:"index;not null" json:"raised_by_id"`
	Subject       string      `gorm:"size:200;not null" json:"subject"`
	Body          string      `gorm:"type:text" json:"body"`
	Status        QueryStatus `gorm:"size:16;default:open" json:"status"`
	Response      string      `gorm:"type:text" json:"response,omitempty"`
	RespondedByID *uint64     `json:"responded_by_id,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
