package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"tasktrack-api/domain"
)

// writeError maps domain errors onto HTTP responses. Driver and SDK errors
// never reach the client; anything unrecognized is logged and reported as a
// generic 500.
func writeError(c echo.Context, err error) error {
	var verr domain.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: verr.Error()})
	}
	var uerr *domain.UploadError
	if errors.As(err, &uerr) {
		c.Logger().Error(err)
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "file storage unavailable"})
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	case errors.Is(err, domain.ErrForbidden):
		return c.JSON(http.StatusForbidden, errorResponse{Error: "forbidden"})
	case errors.Is(err, domain.ErrTaskNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "task not found"})
	case errors.Is(err, domain.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "user not found"})
	case errors.Is(err, domain.ErrAttachmentNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "attachment not found"})
	case errors.Is(err, domain.ErrEmailTaken):
		return c.JSON(http.StatusConflict, errorResponse{Error: "email already registered"})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
