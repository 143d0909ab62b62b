package handlers

import (
	"errors"
	"net/http"

	"stemarcade/services"

	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidURL),
		errors.Is(err, services.ErrEmptyComment):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrBackendUnreachable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
