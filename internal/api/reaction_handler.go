package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/blog-comment-moderation/internal/service"
	"github.com/blog-comment-moderation/internal/validation"
)

// ReactionHandler handles reaction endpoints
type ReactionHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(services *service.Services, log zerolog.Logger) *ReactionHandler {
	return &ReactionHandler{
		services: services,
		log:      log.With().Str("handler", "reactions").Logger(),
	}
}

// React handles PUT /v1/comments/:comment_id/reactions
func (h *ReactionHandler) React(c *gin.Context) {
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	var req validation.ReactionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Reacción no válida.")
		return
	}

	reaction, err := h.services.Reaction.React(c.Request.Context(), commentID, viewerID(c), req.Type)
	if err != nil {
		respondError(c, h.log, err, "No puedes reaccionar a este comentario.")
		return
	}

	summary, err := h.services.Reaction.Summary(c.Request.Context(), commentID, viewerID(c))
	if err != nil {
		respondError(c, h.log, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"reaction": reaction,
		"summary":  summary,
	})
}

// Remove handles DELETE /v1/comments/:comment_id/reactions
func (h *ReactionHandler) Remove(c *gin.Context) {
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	if err := h.services.Reaction.RemoveReaction(c.Request.Context(), commentID, viewerID(c)); err != nil {
		respondError(c, h.log, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Summary handles GET /v1/comments/:comment_id/reactions
func (h *ReactionHandler) Summary(c *gin.Context) {
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	summary, err := h.services.Reaction.Summary(c.Request.Context(), commentID, viewerID(c))
	if err != nil {
		respondError(c, h.log, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
