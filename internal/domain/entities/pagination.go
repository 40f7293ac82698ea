package entities

import "github.com/google/uuid"

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 50
)

// PageRequest carries cursor pagination parameters. Cursor is the id of the
// first item of the requested page, as returned in a previous NextCursor.
type PageRequest struct {
	Limit  int
	Cursor *uuid.UUID
}

// Page is a cursor-paginated result
type Page[T any] struct {
	Items      []T        `json:"items"`
	NextCursor *uuid.UUID `json:"nextCursor"`
}
