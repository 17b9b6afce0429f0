package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ds-lab/eventmanager/internal/entity"
)

// writeError maps domain sentinels onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, entity.ErrEventNotFound),
		errors.Is(err, entity.ErrAttendeeNotFound),
		errors.Is(err, entity.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrValidation),
		errors.Is(err, entity.ErrEventClosed):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrDuplicateAttendee),
		errors.Is(err, entity.ErrCapacityExceeded),
		errors.Is(err, entity.ErrUserAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, entity.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, entity.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
