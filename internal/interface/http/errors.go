package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/nutriquest/internal/application"
	"github.com/oksasatya/nutriquest/pkg/response"
)

// writeAppError maps application sentinel errors to HTTP statuses.
func writeAppError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, application.ErrInvalidArgument):
		response.Error[any](c, http.StatusBadRequest, "invalid argument", err.Error())
	case errors.Is(err, application.ErrChallengeNotFound):
		response.Error[any](c, http.StatusNotFound, "challenge not found", nil)
	case errors.Is(err, application.ErrStorageDisabled):
		response.Error[any](c, http.StatusServiceUnavailable, "object storage not configured", nil)
	default:
		response.Error[any](c, http.StatusInternalServerError, fallback, nil)
	}
}
