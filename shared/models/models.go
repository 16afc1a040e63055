package models

import (
	"time"

	"github.com/google/uuid"
)

// ID represents a unique identifier
type ID string

// GenerateUUID creates a new UUID
func GenerateUUID() ID {
	return ID(uuid.New().String())
}

// NewID creates an ID from string
func NewID(id string) (ID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", err
	}
	return ID(parsed.String()), nil
}

// String returns string representation
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is empty
func (id ID) IsZero() bool {
	return id == ""
}

// Clock returns the current time. Tests replace it to get deterministic timestamps.
type Clock func() time.Time

// UTCNow is the default Clock
func UTCNow() time.Time {
	return time.Now().UTC()
}
