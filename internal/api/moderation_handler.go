package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/blog-comment-moderation/internal/models"
	"github.com/blog-comment-moderation/internal/moderation"
	"github.com/blog-comment-moderation/internal/service"
	"github.com/blog-comment-moderation/internal/validation"
)

const forbiddenModeration = "No tienes permiso para moderar este comentario."

// ModerationHandler handles moderation endpoints
type ModerationHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewModerationHandler creates a new ModerationHandler
func NewModerationHandler(services *service.Services, log zerolog.Logger) *ModerationHandler {
	return &ModerationHandler{
		services: services,
		log:      log.With().Str("handler", "moderation").Logger(),
	}
}

// Transition handles POST /v1/comments/:comment_id/moderation
func (h *ModerationHandler) Transition(c *gin.Context) {
	var req validation.ModerationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Solicitud de moderación no válida.")
		return
	}
	h.apply(c, req)
}

// Approve handles POST /v1/comments/:comment_id/approve
func (h *ModerationHandler) Approve(c *gin.Context) {
	h.apply(c, validation.ModerationInput{State: models.CommentStateApproved})
}

// Reject handles POST /v1/comments/:comment_id/reject
func (h *ModerationHandler) Reject(c *gin.Context) {
	var req struct {
		Reason          string `json:"reason"`
		ExpectedVersion *int   `json:"expected_version,omitempty"`
	}
	if err := bindOptionalJSON(c, &req); err != nil {
		respondBadRequest(c, "Debes indicar el motivo del rechazo.")
		return
	}
	h.apply(c, validation.ModerationInput{
		State:           models.CommentStateRejected,
		Reason:          req.Reason,
		ExpectedVersion: req.ExpectedVersion,
	})
}

// bindOptionalJSON binds a JSON body when one was sent; an empty body leaves obj untouched
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (h *ModerationHandler) apply(c *gin.Context, req validation.ModerationInput) {
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	if err := req.Validate(); err != nil {
		// An unknown target state is a transition error, not a malformed request
		if _, bad := validation.FieldErrors(err)["state"]; bad && req.State != "" {
			respondError(c, h.log, moderation.ErrInvalidTransition, forbiddenModeration)
			return
		}
		respondError(c, h.log, err, forbiddenModeration)
		return
	}

	version, ok := expectedVersion(c, req.ExpectedVersion)
	if !ok {
		return
	}

	comment, err := h.services.Comment.TransitionComment(c.Request.Context(), service.TransitionInput{
		CommentID:       commentID,
		Target:          req.State,
		ActorID:         viewerID(c),
		Reason:          req.Reason,
		ExpectedVersion: version,
	})
	if err != nil {
		respondError(c, h.log, err, forbiddenModeration)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Comentario " + comment.State.Label(),
		"comment": comment,
	})
}

// Queue handles GET /v1/moderation/queue?page=
func (h *ModerationHandler) Queue(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	queue, err := h.services.Comment.ModerationQueue(c.Request.Context(), viewerID(c), page)
	if err != nil {
		respondError(c, h.log, err, "No tienes permisos para moderar comentarios.")
		return
	}
	c.JSON(http.StatusOK, queue)
}

// PendingCount handles GET /v1/moderation/pending-count
func (h *ModerationHandler) PendingCount(c *gin.Context) {
	count, err := h.services.Comment.PendingCount(c.Request.Context(), viewerID(c))
	if err != nil {
		respondError(c, h.log, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// Stats handles GET /v1/moderation/stats (staff only)
func (h *ModerationHandler) Stats(c *gin.Context) {
	if !requireStaff(c, h.log) {
		return
	}
	stats, err := h.services.Comment.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, "")
		return
	}
	c.JSON(http.StatusOK, stats)
}
