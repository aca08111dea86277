package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/blog-comment-moderation/internal/models"
	"github.com/blog-comment-moderation/internal/moderation"
	"github.com/blog-comment-moderation/internal/service"
)

// AdminHandler handles staff-only listing and export endpoints
type AdminHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(services *service.Services, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		services: services,
		log:      log.With().Str("handler", "admin").Logger(),
	}
}

// requireStaff answers 401/403 unless the viewer is staff or superuser
func requireStaff(c *gin.Context, log zerolog.Logger) bool {
	if viewerFrom(c).IsAdmin() {
		return true
	}
	respondError(c, log, moderation.ErrUnauthorized, "Solo el personal del blog puede acceder.")
	return false
}

// List handles GET /v1/admin/comments?state=&author=
func (h *AdminHandler) List(c *gin.Context) {
	var filter models.CommentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBadRequest(c, "Filtro no válido.")
		return
	}

	comments, err := h.services.Comment.ListAll(c.Request.Context(), viewerID(c), filter)
	if err != nil {
		respondError(c, h.log, err, "Solo el personal del blog puede acceder.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": comments,
		"count":    len(comments),
	})
}

// Export handles GET /v1/admin/comments/export?format=ndjson|json|csv
// Streams the export directly to the response
func (h *AdminHandler) Export(c *gin.Context) {
	if !requireStaff(c, h.log) {
		return
	}

	format := c.DefaultQuery("format", "ndjson")
	if format != "ndjson" && format != "json" && format != "csv" {
		respondBadRequest(c, "El formato debe ser ndjson, json o csv.")
		return
	}

	h.log.Info().
		Str("format", format).
		Str("viewer_id", viewerID(c)).
		Msg("Starting streaming export")

	err := h.services.Export.StreamComments(c.Request.Context(), c.Writer, format)
	if errors.Is(err, service.ErrUnsupportedFormat) {
		respondBadRequest(c, "El formato debe ser ndjson, json o csv.")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Export failed")
		// Can't return error JSON after streaming has started
		return
	}
}
