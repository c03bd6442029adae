package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentflow/internal/app/uow"
	"rentflow/internal/domain/shared/fault"
)

// writeError maps the engine's error taxonomy onto HTTP statuses: missing
// referenced entities are 404, invariant conflicts are 409, malformed input
// is 400. Anything else is an internal failure.
func writeError(c *gin.Context, log *slog.Logger, err error) {
	var status int
	switch {
	case fault.IsNotFound(err):
		status = http.StatusNotFound
	case fault.IsConflict(err):
		status = http.StatusConflict
	case fault.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, uow.ErrUnitOfWorkMissing):
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}
	if log != nil && status >= http.StatusInternalServerError {
		log.Error("request failed", "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
