package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moodlet/moodlet-backend/internal/common"
	"github.com/moodlet/moodlet-backend/internal/storage"
)

const msgInternal = "Internal server error"

// badRequest lists the errors caused by the request itself.
var badRequest = []error{
	common.ErrInvalidInput,
	common.ErrSessionMismatch,
	storage.ErrEmptyString,
	storage.ErrInvalidID,
	storage.ErrInvalidAnswer,
	storage.ErrInvalidUser,
	storage.ErrInvalidQueryLimit,
}

// statusFor maps an error to a status code and the message shown to clients.
func statusFor(err error) (int, string) {
	status := http.StatusInternalServerError
	message := msgInternal

	switch {
	case errors.Is(err, common.ErrNotFound):
		status, message = http.StatusNotFound, "Not found"
	case errors.Is(err, common.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "Could not validate credentials"
	case errors.Is(err, common.ErrDuplicateEntry):
		status, message = http.StatusConflict, "Already exists"
	case errors.Is(err, common.ErrMissingConfig):
		status, message = http.StatusServiceUnavailable, "Service not configured"
	default:
		for _, target := range badRequest {
			if errors.Is(err, target) {
				status, message = http.StatusBadRequest, err.Error()
				break
			}
		}
	}

	if status != http.StatusInternalServerError {
		if msg, ok := common.ClientMessage(err); ok {
			message = msg
		}
	}
	return status, message
}

// fail aborts the request with a {"detail": ...} body.
func (s *Server) fail(c *gin.Context, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": message})
}

func (s *Server) badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": message})
}
