package usecases

import (
	"errors"
	"fmt"
	"strings"

	domainerrors "re-view.backend/internal/domain/errors"
	"re-view.backend/pkg/validation"
)

const (
	// product and user search wait for three characters; brand names can be
	// as short as "HP"
	searchMinLength      = 3
	brandSearchMinLength = 1
	searchLimit          = 10
)

// validate runs struct tags and reports failures as a VALIDATION_ERROR
func validate(v any) error {
	err := validation.Struct(v)
	if err == nil {
		return nil
	}
	if fields, ok := validation.Fields(err); ok {
		return fieldErrors(fields)
	}
	return domainerrors.BadRequest(err.Error())
}

func fieldErrors(fields validation.Errors) error {
	out := make([]domainerrors.FieldError, 0, len(fields))
	for _, f := range fields {
		out = append(out, domainerrors.FieldError{Field: f.Field, Message: f.Message})
	}
	return domainerrors.Validation(out...)
}

func invalidField(field, message string) error {
	return domainerrors.Validation(domainerrors.FieldError{Field: field, Message: message})
}

// searchQuery trims q and enforces a minimum length in characters
func searchQuery(q string, minLength int) (string, error) {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < minLength {
		if minLength == 1 {
			return "", invalidField("query", "is required")
		}
		return "", invalidField("query", fmt.Sprintf("must be at least %d characters", minLength))
	}
	return q, nil
}

// notFound maps a repository miss onto a caller-facing message
func notFound(err error, message string) error {
	if errors.Is(err, domainerrors.ErrNotFound) {
		return domainerrors.NotFound(message)
	}
	return err
}
