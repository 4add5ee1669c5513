package models

import "time"

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

type Payment struct {
	ID          uint64        `gorm:"primaryKey" json:"id"`
	ProjectID   uint64        `gorm:"index;not null" json:"project_id"`
	Description string        `gorm:"size:255;not null" json:"description"`
	Amount      int64         `gorm:"not null" json:"amount"` // minor currency units
	Status      PaymentStatus `gorm:"size:16;default:pending" json:"status"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
	PaidAt      *time.Time    `json:"paid_at,omitempty"`
	CreatedByID uint64        `json:"created_by_id"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
