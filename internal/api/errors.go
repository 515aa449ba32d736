package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/last-emo-boy/uptime-core/internal/apperr"
)

// respondError maps the apperr taxonomy onto HTTP responses. Anything not
// in the taxonomy is treated as an opaque internal failure.
func respondError(c *gin.Context, err error) {
	var validationErr *apperr.ValidationError
	var notFoundErr *apperr.NotFoundError
	var authErr *apperr.AuthError
	var storeErr *apperr.StoreError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": validationErr.Msg})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"detail": notFoundErr.Msg})
	case errors.As(err, &authErr):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": authErr.Msg})
	case errors.As(err, &storeErr):
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}
