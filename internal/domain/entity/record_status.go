// Package entity contains the core business objects of the project.
package entity

// RecordStatus represents the lifecycle state of a persisted record.
// It replaces scattered isActive/isDeleted boolean flags with a single
// enumeration shared by every soft-deletable entity.
type RecordStatus string

const (
	// RecordStatusActive indicates a live, visible record.
	RecordStatusActive RecordStatus = "active"
	// RecordStatusDisabled indicates a record hidden by an administrator
	// but restorable without data loss.
	RecordStatusDisabled RecordStatus = "disabled"
	// RecordStatusDeleted indicates a soft-deleted record.
	RecordStatusDeleted RecordStatus = "deleted"
)

// String returns the string representation of the RecordStatus.
func (s RecordStatus) String() string {
	return string(s)
}

// IsValid checks if the RecordStatus is a valid value.
func (s RecordStatus) IsValid() bool {
	switch s {
	case RecordStatusActive, RecordStatusDisabled, RecordStatusDeleted:
		return true
	default:
		return false
	}
}

// IsActive reports whether the record is live.
func (s RecordStatus) IsActive() bool {
	return s == RecordStatusActive
}
