package utils

import "github.com/google/uuid"

const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// NormalizeLimit applies the default page size and caps it at MaxLimit
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// SplitPage trims a limit+1 result set. When the extra row is present it is
// dropped and its id becomes the next cursor.
func SplitPage[T any](rows []T, limit int, idOf func(T) uuid.UUID) ([]T, *uuid.UUID) {
	if len(rows) <= limit {
		return rows, nil
	}
	next := idOf(rows[limit])
	return rows[:limit], &next
}
