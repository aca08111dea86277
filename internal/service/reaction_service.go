package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blog-comment-moderation/internal/models"
	"github.com/blog-comment-moderation/internal/moderation"
	"github.com/blog-comment-moderation/internal/repository"
	"github.com/blog-comment-moderation/internal/validation"
)

// reactionService is the concrete implementation of ReactionService
type reactionService struct {
	repos    *repository.Repositories
	comments *commentService
	log      zerolog.Logger
}

// newReactionService creates a new ReactionService
func newReactionService(repos *repository.Repositories, comments *commentService, log zerolog.Logger) *reactionService {
	return &reactionService{
		repos:    repos,
		comments: comments,
		log:      log.With().Str("service", "reactions").Logger(),
	}
}

// visibleTarget loads a comment the viewer can see. Hidden comments are reported as not found.
func (s *reactionService) visibleTarget(ctx context.Context, commentID string, viewer *models.User) (*models.Comment, error) {
	comment, post, err := s.comments.loadTarget(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !moderation.CanView(comment, viewer, post) {
		return nil, fmt.Errorf("comment %s: %w", commentID, moderation.ErrNotFound)
	}
	return comment, nil
}

// React records the user's reaction, replacing any previous one on the same comment
func (s *reactionService) React(ctx context.Context, commentID, userID string, kind models.ReactionType) (*models.Reaction, error) {
	if err := (validation.ReactionInput{Type: kind}).Validate(); err != nil {
		return nil, err
	}

	user, err := s.comments.ResolveViewer(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: anonymous users cannot react", moderation.ErrUnauthorized)
	}

	comment, err := s.visibleTarget(ctx, commentID, user)
	if err != nil {
		return nil, err
	}

	reaction := &models.Reaction{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CommentID: comment.ID,
		Type:      kind,
		CreatedAt: s.comments.now(),
	}
	if err := s.repos.Reaction.Upsert(ctx, reaction); err != nil {
		return nil, fmt.Errorf("failed to save reaction: %w", err)
	}

	s.log.Debug().
		Str("comment_id", comment.ID).
		Str("user_id", user.ID).
		Str("type", string(kind)).
		Msg("Reaction saved")

	return reaction, nil
}

// RemoveReaction deletes the user's reaction on a comment
func (s *reactionService) RemoveReaction(ctx context.Context, commentID, userID string) error {
	user, err := s.comments.ResolveViewer(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: anonymous users cannot react", moderation.ErrUnauthorized)
	}

	removed, err := s.repos.Reaction.Delete(ctx, commentID, user.ID)
	if err != nil {
		return fmt.Errorf("failed to delete reaction: %w", err)
	}
	if !removed {
		return fmt.Errorf("reaction on %s: %w", commentID, moderation.ErrNotFound)
	}
	return nil
}

// Summary returns reaction counts per type for a comment the viewer can see
func (s *reactionService) Summary(ctx context.Context, commentID, viewerID string) (map[models.ReactionType]int, error) {
	viewer, err := s.comments.ResolveViewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.visibleTarget(ctx, commentID, viewer); err != nil {
		return nil, err
	}
	return s.repos.Reaction.CountByType(ctx, commentID)
}
