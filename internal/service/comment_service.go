package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blog-comment-moderation/internal/cache"
	"github.com/blog-comment-moderation/internal/config"
	"github.com/blog-comment-moderation/internal/markdown"
	"github.com/blog-comment-moderation/internal/metrics"
	"github.com/blog-comment-moderation/internal/models"
	"github.com/blog-comment-moderation/internal/moderation"
	"github.com/blog-comment-moderation/internal/repository"
	"github.com/blog-comment-moderation/internal/validation"
)

const (
	defaultListLimit = 5
	maxListLimit     = 50
)

// commentService is the concrete implementation of CommentService
type commentService struct {
	repos    *repository.Repositories
	cache    *cache.Cache
	pageSize int
	now      func() time.Time
	log      zerolog.Logger
}

// newCommentService creates a new CommentService
func newCommentService(repos *repository.Repositories, c *cache.Cache, cfg config.ModerationConfig, log zerolog.Logger) *commentService {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	return &commentService{
		repos:    repos,
		cache:    c,
		pageSize: pageSize,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With().Str("service", "comments").Logger(),
	}
}

func postCachePrefix(postID string) string {
	return "comments:post:" + postID + ":"
}

func postCacheKey(postID string, order moderation.SortOrder) string {
	return postCachePrefix(postID) + string(order)
}

func (s *commentService) invalidatePost(postID string) {
	if s.cache == nil {
		return
	}
	if n := s.cache.DeleteByPrefix(postCachePrefix(postID)); n > 0 {
		s.log.Debug().Str("post_id", postID).Int("entries", n).Msg("Comment cache invalidated")
	}
}

// ResolveViewer maps an id to a user. An empty id is the anonymous viewer (nil, nil).
func (s *commentService) ResolveViewer(ctx context.Context, viewerID string) (*models.User, error) {
	if viewerID == "" {
		return nil, nil
	}
	user, err := s.repos.User.GetByID(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrUnknownViewer
	}
	return user, nil
}

func (s *commentService) loadPost(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.repos.Post.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if post == nil {
		return nil, fmt.Errorf("post %s: %w", postID, moderation.ErrNotFound)
	}
	return post, nil
}

// loadTarget fetches a comment together with its post
func (s *commentService) loadTarget(ctx context.Context, commentID string) (*models.Comment, *models.Post, error) {
	comment, err := s.repos.Comment.GetByID(ctx, commentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load comment: %w", err)
	}
	if comment == nil {
		return nil, nil, fmt.Errorf("comment %s: %w", commentID, moderation.ErrNotFound)
	}
	post, err := s.loadPost(ctx, comment.PostID)
	if err != nil {
		return nil, nil, err
	}
	return comment, post, nil
}

func checkVersion(comment *models.Comment, expected *int) error {
	if expected != nil && *expected != comment.Version {
		return fmt.Errorf("%w: expected version %d, stored %d", moderation.ErrConflict, *expected, comment.Version)
	}
	return nil
}

// persist writes next over the stored snapshot read at readVersion
func (s *commentService) persist(ctx context.Context, next *models.Comment, readVersion int) error {
	err := s.repos.Comment.Update(ctx, next, readVersion)
	switch {
	case errors.Is(err, repository.ErrVersionMismatch):
		return fmt.Errorf("%w: comment %s", moderation.ErrConflict, next.ID)
	case errors.Is(err, repository.ErrRecordNotFound):
		return fmt.Errorf("comment %s: %w", next.ID, moderation.ErrNotFound)
	case err != nil:
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, moderation.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, moderation.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, moderation.ErrNotFound):
		return "not_found"
	case errors.Is(err, moderation.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}

func (s *commentService) recordFailure(op string, commentID string, err error) {
	reason := failureReason(err)
	metrics.RecordFailure(reason)

	event := s.log.Info()
	if reason == "conflict" {
		event = s.log.Warn()
	} else if reason == "error" {
		event = s.log.Error()
	}
	event.Err(err).Str("op", op).Str("comment_id", commentID).Msg("Comment operation refused")
}

// CreateComment stores a new comment. Authors who moderate the post get it approved directly.
func (s *commentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	author, err := s.ResolveViewer(ctx, in.AuthorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, fmt.Errorf("%w: anonymous users cannot comment", moderation.ErrUnauthorized)
	}

	post, err := s.loadPost(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	content := validation.NormalizeContent(in.Content)
	if err := (validation.CommentInput{Content: content}).Validate(); err != nil {
		return nil, err
	}

	comment := moderation.NewComment(uuid.NewString(), post, author, content, s.now())
	if err := s.repos.Comment.Create(ctx, &comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	metrics.CommentsCreated.WithLabelValues(string(comment.State)).Inc()
	s.invalidatePost(post.ID)

	s.log.Info().
		Str("comment_id", comment.ID).
		Str("post_id", post.ID).
		Str("author_id", author.ID).
		Str("state", string(comment.State)).
		Msg("Comment created")

	return &comment, nil
}

// TransitionComment applies a moderation decision
func (s *commentService) TransitionComment(ctx context.Context, in TransitionInput) (*models.Comment, error) {
	current, post, err := s.loadTarget(ctx, in.CommentID)
	if err != nil {
		s.recordFailure("transition", in.CommentID, err)
		return nil, err
	}

	actor, err := s.ResolveViewer(ctx, in.ActorID)
	if err != nil {
		return nil, err
	}

	if err := checkVersion(current, in.ExpectedVersion); err != nil {
		s.recordFailure("transition", current.ID, err)
		return nil, err
	}

	next, err := moderation.Transition(*current, in.Target, actor, post, in.Reason, s.now())
	if err != nil {
		s.recordFailure("transition", current.ID, err)
		return nil, err
	}

	if in.Target == current.State && in.Target != models.CommentStateRejected {
		return current, nil
	}

	if err := s.persist(ctx, &next, current.Version); err != nil {
		s.recordFailure("transition", current.ID, err)
		return nil, err
	}

	metrics.RecordTransition(string(current.State), string(next.State))
	s.invalidatePost(post.ID)

	s.log.Info().
		Str("comment_id", next.ID).
		Str("from", string(current.State)).
		Str("to", string(next.State)).
		Str("actor_id", actor.ID).
		Int("version", next.Version).
		Msg("Comment moderated")

	return &next, nil
}

// ListVisibleComments returns the comments of a post that viewerID may see, with
// the viewer's capabilities on each. Anonymous lists are cached per post and order.
func (s *commentService) ListVisibleComments(ctx context.Context, postID, viewerID string, order moderation.SortOrder) ([]CommentView, error) {
	viewer, err := s.ResolveViewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	cacheable := viewer == nil && s.cache != nil
	prefix, key := postCachePrefix(post.ID), postCacheKey(post.ID, order)
	var gen cache.Generation
	if cacheable {
		if cached, ok := s.cache.Get(key); ok {
			metrics.RecordCacheLookup(true)
			return copyViews(cached.([]CommentView)), nil
		}
		metrics.RecordCacheLookup(false)
		gen = s.cache.Current(prefix)
	}

	all, err := s.repos.Comment.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	visible := moderation.VisibleComments(all, viewer, post, order)
	views := make([]CommentView, 0, len(visible))
	for i := range visible {
		views = append(views, buildView(&visible[i], viewer, post))
	}

	if cacheable && !s.cache.SetIfCurrent(prefix, key, copyViews(views), gen) {
		s.log.Debug().Str("post_id", post.ID).Msg("Comment list changed while loading, not cached")
	}
	return views, nil
}

// copyViews deep-copies views so cached entries are never shared with callers
func copyViews(views []CommentView) []CommentView {
	out := make([]CommentView, len(views))
	for i := range views {
		out[i] = views[i]
		out[i].Comment = views[i].Comment.Clone()
	}
	return out
}

func buildView(c *models.Comment, viewer *models.User, post *models.Post) CommentView {
	caps := moderation.Capabilities(viewer, c, post)
	return CommentView{
		Comment:     *c,
		StateLabel:  c.State.Label(),
		ContentHTML: markdown.Render(c.Content),
		CanEdit:     caps.Has(moderation.CapabilityEdit),
		CanDelete:   caps.Has(moderation.CapabilityDelete),
		CanModerate: caps.Has(moderation.CapabilityModerate),
		IsMine:      viewer != nil && c.AuthorID == viewer.ID,
	}
}

// EditComment replaces the content and sends the comment back to pending
func (s *commentService) EditComment(ctx context.Context, in EditInput) (*models.Comment, error) {
	current, post, err := s.loadTarget(ctx, in.CommentID)
	if err != nil {
		s.recordFailure("edit", in.CommentID, err)
		return nil, err
	}

	actor, err := s.ResolveViewer(ctx, in.ActorID)
	if err != nil {
		return nil, err
	}

	content := validation.NormalizeContent(in.Content)
	next, err := moderation.Edit(*current, actor, post, content, s.now())
	if err != nil {
		s.recordFailure("edit", current.ID, err)
		return nil, err
	}

	if err := (validation.CommentInput{Content: content}).Validate(); err != nil {
		return nil, err
	}

	if err := checkVersion(current, in.ExpectedVersion); err != nil {
		s.recordFailure("edit", current.ID, err)
		return nil, err
	}

	if err := s.persist(ctx, &next, current.Version); err != nil {
		s.recordFailure("edit", current.ID, err)
		return nil, err
	}

	metrics.CommentsEdited.Inc()
	if current.State != next.State {
		metrics.RecordTransition(string(current.State), string(next.State))
	}
	s.invalidatePost(post.ID)

	s.log.Info().
		Str("comment_id", next.ID).
		Str("from", string(current.State)).
		Str("actor_id", actor.ID).
		Msg("Comment edited")

	return &next, nil
}

// DeleteComment removes a comment when the actor holds the delete capability
func (s *commentService) DeleteComment(ctx context.Context, commentID, actorID string) error {
	current, post, err := s.loadTarget(ctx, commentID)
	if err != nil {
		s.recordFailure("delete", commentID, err)
		return err
	}

	actor, err := s.ResolveViewer(ctx, actorID)
	if err != nil {
		return err
	}

	if !moderation.Capabilities(actor, current, post).Has(moderation.CapabilityDelete) {
		err := fmt.Errorf("%w: delete capability required", moderation.ErrUnauthorized)
		s.recordFailure("delete", commentID, err)
		return err
	}

	deleted, err := s.repos.Comment.Delete(ctx, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if !deleted {
		return fmt.Errorf("comment %s: %w", commentID, moderation.ErrNotFound)
	}

	metrics.CommentsDeleted.Inc()
	s.invalidatePost(post.ID)

	s.log.Info().Str("comment_id", commentID).Str("actor_id", actor.ID).Msg("Comment deleted")
	return nil
}

// pendingScope returns the queue scope of viewer, or false when viewer moderates nothing
func pendingScope(viewer *models.User) (repository.PendingScope, bool) {
	switch {
	case viewer == nil:
		return repository.PendingScope{}, false
	case viewer.IsAdmin():
		return repository.PendingScope{}, true
	case viewer.IsCollaborator:
		return repository.PendingScope{PostAuthorID: viewer.ID}, true
	default:
		return repository.PendingScope{}, false
	}
}

// ModerationQueue lists pending comments the viewer can moderate, oldest first
func (s *commentService) ModerationQueue(ctx context.Context, viewerID string, page int) (*QueuePage, error) {
	viewer, err := s.ResolveViewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	scope, ok := pendingScope(viewer)
	if !ok {
		return nil, fmt.Errorf("%w: moderation queue requires moderator rights", moderation.ErrUnauthorized)
	}

	if page < 1 {
		page = 1
	}

	total, err := s.repos.Comment.CountPending(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending comments: %w", err)
	}

	comments, err := s.repos.Comment.ListPending(ctx, scope, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending comments: %w", err)
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	totalPages := (total + s.pageSize - 1) / s.pageSize
	return &QueuePage{
		Comments:   comments,
		Page:       page,
		PageSize:   s.pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}, nil
}

// PendingCount returns the size of the viewer's moderation queue, 0 for non-moderators
func (s *commentService) PendingCount(ctx context.Context, viewerID string) (int, error) {
	viewer, err := s.ResolveViewer(ctx, viewerID)
	if err != nil {
		return 0, err
	}
	scope, ok := pendingScope(viewer)
	if !ok {
		return 0, nil
	}
	return s.repos.Comment.CountPending(ctx, scope)
}

// Stats returns comment totals per state
func (s *commentService) Stats(ctx context.Context) (*models.CommentStats, error) {
	return s.repos.Comment.CountByState(ctx)
}

// ListAll lists every comment matching filter; staff only
func (s *commentService) ListAll(ctx context.Context, viewerID string, filter models.CommentFilter) ([]models.Comment, error) {
	viewer, err := s.ResolveViewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin() {
		return nil, fmt.Errorf("%w: staff only", moderation.ErrUnauthorized)
	}
	if err := validation.ValidateFilter(filter); err != nil {
		return nil, err
	}

	comments, err := s.repos.Comment.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// RecentApproved returns the newest approved comments across the blog
func (s *commentService) RecentApproved(ctx context.Context, limit int) ([]models.Comment, error) {
	return s.repos.Comment.ListRecentApproved(ctx, clampLimit(limit))
}

// PopularApproved returns approved comments with the most reactions
func (s *commentService) PopularApproved(ctx context.Context, limit int) ([]models.Comment, error) {
	return s.repos.Comment.ListPopularApproved(ctx, clampLimit(limit))
}
