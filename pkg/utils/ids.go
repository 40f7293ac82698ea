package utils

import (
	"errors"

	"github.com/google/uuid"
)

// ErrInvalidID is returned for ids that are not canonical, non-nil uuids
var ErrInvalidID = errors.New("invalid id")

var newUUIDv7 = uuid.NewV7

// NewID returns a time-ordered v7 id, which keeps id cursors in creation
// order. Falls back to v4 if the clock source fails.
func NewID() uuid.UUID {
	id, err := newUUIDv7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// ParseID accepts only the 36 character hyphenated form and rejects the nil uuid
func ParseID(s string) (uuid.UUID, error) {
	if len(s) != 36 {
		return uuid.Nil, ErrInvalidID
	}
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}

// ParseOptionalID returns nil for an empty string
func ParseOptionalID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := ParseID(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
