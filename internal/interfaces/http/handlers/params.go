package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"re-view.backend/internal/domain/entities"
	domainerrors "re-view.backend/internal/domain/errors"
	"re-view.backend/pkg/utils"
)

// pathID parses a UUID path parameter
func pathID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := utils.ParseID(c.Param(name))
	if err != nil {
		return uuid.Nil, domainerrors.Validation(domainerrors.FieldError{Field: name, Message: "must be a valid UUID"})
	}
	return id, nil
}

// pageRequest reads ?limit= and ?cursor=. Out of range limits are clamped
// later; only malformed values are rejected here.
func pageRequest(c *gin.Context) (entities.PageRequest, error) {
	var page entities.PageRequest
	var fields []domainerrors.FieldError

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			fields = append(fields, domainerrors.FieldError{Field: "limit", Message: "must be an integer"})
		}
		page.Limit = limit
	}
	cursor, err := utils.ParseOptionalID(c.Query("cursor"))
	if err != nil {
		fields = append(fields, domainerrors.FieldError{Field: "cursor", Message: "must be a valid UUID"})
	}
	page.Cursor = cursor

	if len(fields) > 0 {
		return page, domainerrors.Validation(fields...)
	}
	return page, nil
}
