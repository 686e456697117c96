package handlers

import (
	"errors"
	"net/http"

	"rental-pricing-api/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ErrorResponse struct {
	Error string `json:"error" example:"Column 'colour' not found in the dataset."`
}

// respondError maps an application error to its status code. Internal
// errors are logged and answered with a generic message.
func respondError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	status := kind.HTTPStatus()

	msg := err.Error()
	var appErr *services.AppError
	if !errors.As(err, &appErr) {
		msg = "internal server error"
	}

	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).
		Str("kind", kind.String()).
		Str("path", c.Request.URL.Path).
		Msg("request failed")

	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}
