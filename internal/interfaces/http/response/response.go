package response

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "re-view.backend/internal/domain/errors"
	"re-view.backend/pkg/logger"
	"re-view.backend/pkg/validation"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response. Sentinel errors keep their status; anything
// unrecognised is reported as an internal error without leaking its text.
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromError(err)
	if appErr.Code == domainerrors.CodeInternal {
		logger.Error(c.Request.Context(), "Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}

	body := gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	if len(appErr.Fields) > 0 {
		body["details"] = appErr.Fields
	}
	c.JSON(appErr.Status, body)
}

// BindError reports a ShouldBind failure: validator output becomes a
// field list, anything else (malformed JSON, wrong types) a bad request
func BindError(c *gin.Context, err error) {
	fields, ok := validation.Fields(err)
	if !ok {
		Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	out := make([]domainerrors.FieldError, 0, len(fields))
	for _, f := range fields {
		out = append(out, domainerrors.FieldError{Field: f.Field, Message: f.Message})
	}
	Error(c, domainerrors.Validation(out...))
}

// ErrorWithError sends an error response with a specific status and message
func ErrorWithError(c *gin.Context, status int, code string, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}
