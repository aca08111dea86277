package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"

	"github.com/blog-comment-moderation/internal/moderation"
	"github.com/blog-comment-moderation/internal/service"
	pkgvalidation "github.com/blog-comment-moderation/internal/validation"
)

// respondError maps a service error onto a status code and a Spanish message.
// forbidden is the message shown when the viewer lacks the capability.
func respondError(c *gin.Context, log zerolog.Logger, err error, forbidden string) {
	var verrs validation.Errors

	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "validation_failed",
			"message": "Los datos enviados no son válidos.",
			"details": pkgvalidation.FieldErrors(verrs),
		})
	case errors.Is(err, service.ErrUnknownViewer):
		abortUnauthenticated(c)
	case errors.Is(err, moderation.ErrUnauthorized):
		if viewerFrom(c) == nil {
			abortUnauthenticated(c)
			return
		}
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "forbidden",
			"message": forbidden,
		})
	case errors.Is(err, moderation.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "not_found",
			"message": "El comentario o la publicación no existe.",
		})
	case errors.Is(err, moderation.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   "invalid_transition",
			"message": "Debes indicar un estado válido y, para rechazar, un motivo.",
		})
	case errors.Is(err, moderation.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{
			"success":   false,
			"error":     "conflict",
			"message":   "El comentario ha cambiado desde que lo cargaste. Recarga e inténtalo de nuevo.",
			"retryable": true,
		})
	default:
		log.Error().Err(err).Str("request_id", requestID(c)).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "internal_error",
			"message": "Error interno del servidor.",
		})
	}
}

// respondBadRequest reports a malformed request body or query
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   "bad_request",
		"message": message,
	})
}

func respondNotFound(c *gin.Context) {
	respondError(c, zerolog.Nop(), moderation.ErrNotFound, "")
}
