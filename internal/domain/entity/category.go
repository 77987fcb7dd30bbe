package entity

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products for browsing and filtering. Names are unique.
type Category struct {
	ID          uuid.UUID
	Name        string
	Description string
	Status      RecordStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
