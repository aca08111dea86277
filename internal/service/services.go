package service

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/blog-comment-moderation/internal/cache"
	"github.com/blog-comment-moderation/internal/config"
	"github.com/blog-comment-moderation/internal/models"
	"github.com/blog-comment-moderation/internal/moderation"
	"github.com/blog-comment-moderation/internal/repository"
)

// ErrUnknownViewer is returned when a viewer or actor id does not resolve to a user
var ErrUnknownViewer = fmt.Errorf("%w: unknown user", moderation.ErrUnauthorized)

// CreateCommentInput is a new comment submitted by AuthorID on PostID
type CreateCommentInput struct {
	PostID   string
	AuthorID string
	Content  string
}

// TransitionInput asks for CommentID to be moved to Target by ActorID.
// ExpectedVersion, when set, must match the stored version.
type TransitionInput struct {
	CommentID       string
	Target          models.CommentState
	ActorID         string
	Reason          string
	ExpectedVersion *int
}

// EditInput replaces the content of CommentID on behalf of ActorID
type EditInput struct {
	CommentID       string
	ActorID         string
	Content         string
	ExpectedVersion *int
}

// CommentView is a comment as presented to one viewer
type CommentView struct {
	models.Comment
	StateLabel  string `json:"state_label"`
	ContentHTML string `json:"content_html"`
	CanEdit     bool   `json:"can_edit"`
	CanDelete   bool   `json:"can_delete"`
	CanModerate bool   `json:"can_moderate"`
	IsMine      bool   `json:"is_mine"`
}

// QueuePage is one page of the moderation queue
type QueuePage struct {
	Comments   []models.Comment `json:"comments"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
	HasNext    bool             `json:"has_next"`
}

// CommentService defines the host-facing comment and moderation operations
type CommentService interface {
	ResolveViewer(ctx context.Context, viewerID string) (*models.User, error)
	CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error)
	TransitionComment(ctx context.Context, in TransitionInput) (*models.Comment, error)
	ListVisibleComments(ctx context.Context, postID, viewerID string, order moderation.SortOrder) ([]CommentView, error)
	EditComment(ctx context.Context, in EditInput) (*models.Comment, error)
	DeleteComment(ctx context.Context, commentID, actorID string) error
	ModerationQueue(ctx context.Context, viewerID string, page int) (*QueuePage, error)
	PendingCount(ctx context.Context, viewerID string) (int, error)
	Stats(ctx context.Context) (*models.CommentStats, error)
	ListAll(ctx context.Context, viewerID string, filter models.CommentFilter) ([]models.Comment, error)
	RecentApproved(ctx context.Context, limit int) ([]models.Comment, error)
	PopularApproved(ctx context.Context, limit int) ([]models.Comment, error)
}

// ReactionService defines the interface for reactions on visible comments
type ReactionService interface {
	React(ctx context.Context, commentID, userID string, kind models.ReactionType) (*models.Reaction, error)
	RemoveReaction(ctx context.Context, commentID, userID string) error
	Summary(ctx context.Context, commentID, viewerID string) (map[models.ReactionType]int, error)
}

// ExportService defines the interface for export operations
type ExportService interface {
	StreamComments(ctx context.Context, w http.ResponseWriter, format string) error
}

// ImportService defines the interface for legacy comment imports
type ImportService interface {
	ImportLegacyComments(ctx context.Context, r io.Reader) (*models.ImportResult, error)
}

// Services holds all service interfaces
type Services struct {
	Comment  CommentService
	Reaction ReactionService
	Export   ExportService
	Import   ImportService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, c *cache.Cache, cfg *config.Config, log zerolog.Logger) *Services {
	commentSvc := newCommentService(repos, c, cfg.Moderation, log)

	return &Services{
		Comment:  commentSvc,
		Reaction: newReactionService(repos, commentSvc, log),
		Export:   newExportService(repos, log),
		Import:   newImportService(repos, c, cfg.Import, log),
	}
}
