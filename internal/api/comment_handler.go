package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/blog-comment-moderation/internal/models"
	"github.com/blog-comment-moderation/internal/moderation"
	"github.com/blog-comment-moderation/internal/service"
	"github.com/blog-comment-moderation/internal/validation"
)

// CommentHandler handles comment endpoints
type CommentHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services: services,
		log:      log.With().Str("handler", "comments").Logger(),
	}
}

type editRequest struct {
	Content         string `json:"content"`
	ExpectedVersion *int   `json:"expected_version,omitempty"`
}

// pathID reads a UUID path parameter and answers 404 when it is malformed
func pathID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if err := validation.ValidateID(id); err != nil {
		respondNotFound(c)
		return "", false
	}
	return id, true
}

// expectedVersion prefers the body value and falls back to an If-Match header
func expectedVersion(c *gin.Context, fromBody *int) (*int, bool) {
	if fromBody != nil {
		return fromBody, true
	}
	raw := strings.TrimSpace(c.GetHeader("If-Match"))
	if raw == "" {
		return nil, true
	}
	raw = strings.Trim(strings.TrimPrefix(raw, "W/"), `"`)
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		respondBadRequest(c, "La cabecera If-Match debe contener la versión del comentario.")
		return nil, false
	}
	return &v, true
}

// List handles GET /v1/posts/:post_id/comments?order=asc|desc
func (h *CommentHandler) List(c *gin.Context) {
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}

	order := moderation.ParseSortOrder(c.Query("order"))
	views, err := h.services.Comment.ListVisibleComments(c.Request.Context(), postID, viewerID(c), order)
	if err != nil {
		respondError(c, h.log, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": views,
		"count":    len(views),
		"order":    order,
	})
}

// Create handles POST /v1/posts/:post_id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}

	var req validation.CommentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Error al publicar el comentario.")
		return
	}

	comment, err := h.services.Comment.CreateComment(c.Request.Context(), service.CreateCommentInput{
		PostID:   postID,
		AuthorID: viewerID(c),
		Content:  req.Content,
	})
	if err != nil {
		respondError(c, h.log, err, "No tienes permiso para comentar.")
		return
	}

	message := "¡Comentario enviado! Será revisado por un moderador antes de publicarse."
	if comment.IsApproved() {
		message = "¡Comentario publicado!"
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"message":       message,
		"comment":       comment,
		"auto_approved": comment.IsApproved(),
	})
}

// Edit handles PATCH /v1/comments/:comment_id
func (h *CommentHandler) Edit(c *gin.Context) {
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Error al actualizar el comentario.")
		return
	}
	version, ok := expectedVersion(c, req.ExpectedVersion)
	if !ok {
		return
	}

	comment, err := h.services.Comment.EditComment(c.Request.Context(), service.EditInput{
		CommentID:       commentID,
		ActorID:         viewerID(c),
		Content:         req.Content,
		ExpectedVersion: version,
	})
	if err != nil {
		respondError(c, h.log, err, "No tienes permiso para editar este comentario.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "¡Comentario actualizado! Será revisado nuevamente.",
		"comment": comment,
	})
}

// Delete handles DELETE /v1/comments/:comment_id
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	if err := h.services.Comment.DeleteComment(c.Request.Context(), commentID, viewerID(c)); err != nil {
		respondError(c, h.log, err, "No tienes permiso para eliminar este comentario.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Comentario eliminado.",
	})
}

func queryLimit(c *gin.Context) int {
	limit, _ := strconv.Atoi(c.Query("limit"))
	return limit
}

// Recent handles GET /v1/comments/recent?limit=
func (h *CommentHandler) Recent(c *gin.Context) {
	comments, err := h.services.Comment.RecentApproved(c.Request.Context(), queryLimit(c))
	if err != nil {
		respondError(c, h.log, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": nonNil(comments)})
}

// Popular handles GET /v1/comments/popular?limit=
func (h *CommentHandler) Popular(c *gin.Context) {
	comments, err := h.services.Comment.PopularApproved(c.Request.Context(), queryLimit(c))
	if err != nil {
		respondError(c, h.log, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": nonNil(comments)})
}

func nonNil(comments []models.Comment) []models.Comment {
	if comments == nil {
		return []models.Comment{}
	}
	return comments
}
