package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentEventModel mirrors the 'payment_events' outbox table. Rows are
// appended by the webhook handler and claimed by the worker with
// FOR UPDATE SKIP LOCKED.
type PaymentEventModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Topic       string    `gorm:"type:varchar(50);not null"`
	ResourceID  string    `gorm:"type:varchar(64);not null;index"`
	Status      string    `gorm:"type:varchar(20);not null;default:'pending';index"`
	Attempts    int       `gorm:"not null;default:0"`
	LastError   string    `gorm:"type:text"`
	ReceivedAt  time.Time `gorm:"not null;index"`
	ProcessedAt *time.Time
}

// TableName explicitly sets the table name for GORM.
func (PaymentEventModel) TableName() string {
	return "payment_events"
}
