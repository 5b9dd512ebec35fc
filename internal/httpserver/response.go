package httpserver

import (
	"errors"
	"net/http"

	"pizzeria-storefront/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type errorBody struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

// writeError maps err to its status and writes {"code","message"}. Internal errors
// are logged with their cause and answered with a generic message.
func writeError(c *gin.Context, logger *zerolog.Logger, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("code", string(apperr.CodeOf(err))).
			Msg("request error")
	}
	c.AbortWithStatusJSON(status, errorBody{Code: apperr.CodeOf(err), Message: apperr.PublicMessage(err)})
}

func badRequest(msg string) error {
	return apperr.New(apperr.CodeValidation, msg)
}

// bindJSON decodes the body and reports a validation error on malformed input.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.Wrap(apperr.CodeValidation, err, "invalid request body")
	}
	return nil
}
