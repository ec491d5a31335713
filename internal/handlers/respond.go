package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/knbsoft/knb_backend/internal/apperrors"
	"github.com/knbsoft/knb_backend/internal/middleware"
)

// ErrorResponse is the uniform error body returned by every handler.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError maps the service-layer error sentinels onto HTTP statuses.
// Unrecognized errors become 500 with a generic body; the detail stays in
// the server log only.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidAmount),
		errors.Is(err, apperrors.ErrSelfTransfer):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrInsufficientFunds),
		errors.Is(err, apperrors.ErrAccountNotActive):
		status, msg = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrDuplicateOwner):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, apperrors.ErrBusy):
		status, msg = http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, apperrors.ErrForbidden):
		status, msg = http.StatusForbidden, err.Error()
	}

	if status == http.StatusInternalServerError {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Unhandled service error", slog.String("error", err.Error()))
	}

	c.JSON(status, ErrorResponse{Error: msg})
}
