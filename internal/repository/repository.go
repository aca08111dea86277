package repository

import (
	"context"
	"errors"

	"github.com/blog-comment-moderation/internal/database"
	"github.com/blog-comment-moderation/internal/models"
)

var (
	// ErrVersionMismatch is returned by Update when the stored version differs from the expected one
	ErrVersionMismatch = errors.New("version mismatch")

	// ErrRecordNotFound is returned by writes addressed at a missing row
	ErrRecordNotFound = errors.New("record not found")
)

// PendingScope restricts the moderation queue. An empty PostAuthorID means every post.
type PendingScope struct {
	PostAuthorID string
}

// CommentRepository defines the interface for comment data operations.
// Getters return (nil, nil) when the row does not exist.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	BatchInsert(ctx context.Context, comments []*models.Comment) (int, error)
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	// Update writes every mutable field iff the stored version equals expectedVersion,
	// then bumps comment.Version.
	Update(ctx context.Context, comment *models.Comment, expectedVersion int) error
	Delete(ctx context.Context, id string) (bool, error)
	ListPending(ctx context.Context, scope PendingScope, limit, offset int) ([]models.Comment, error)
	CountPending(ctx context.Context, scope PendingScope) (int, error)
	CountByState(ctx context.Context) (*models.CommentStats, error)
	List(ctx context.Context, filter models.CommentFilter) ([]models.Comment, error)
	ListRecentApproved(ctx context.Context, limit int) ([]models.Comment, error)
	ListPopularApproved(ctx context.Context, limit int) ([]models.Comment, error)
	StreamAll(ctx context.Context, callback func(*models.Comment) error) error
}

// PostRepository defines the interface for post lookups
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)
}

// UserRepository defines the interface for user and role lookups
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)
}

// ReactionRepository defines the interface for reaction data operations
type ReactionRepository interface {
	Upsert(ctx context.Context, reaction *models.Reaction) error
	Delete(ctx context.Context, commentID, userID string) (bool, error)
	CountByType(ctx context.Context, commentID string) (map[models.ReactionType]int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Comment  CommentRepository
	Post     PostRepository
	User     UserRepository
	Reaction ReactionRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Comment:  NewCommentRepo(db),
		Post:     NewPostRepo(db),
		User:     NewUserRepo(db),
		Reaction: NewReactionRepo(db),
	}
}
