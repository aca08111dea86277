package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/blog-comment-moderation/internal/models"
	"github.com/blog-comment-moderation/internal/repository"
)

// Verify interface compliance
var (
	_ repository.CommentRepository  = (*MockCommentRepository)(nil)
	_ repository.PostRepository     = (*MockPostRepository)(nil)
	_ repository.UserRepository     = (*MockUserRepository)(nil)
	_ repository.ReactionRepository = (*MockReactionRepository)(nil)
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	Users    map[string]*models.User
	GetError error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[string]*models.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.Users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.Users[id], nil
}

func (m *MockUserRepository) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	found := make(map[string]bool)
	for _, id := range ids {
		if _, ok := m.Users[id]; ok {
			found[id] = true
		}
	}
	return found, nil
}

// MockPostRepository is a mock implementation of PostRepository
type MockPostRepository struct {
	Posts map[string]*models.Post
}

func NewMockPostRepository() *MockPostRepository {
	return &MockPostRepository{Posts: make(map[string]*models.Post)}
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	m.Posts[post.ID] = post
	return nil
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return m.Posts[id], nil
}

func (m *MockPostRepository) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	found := make(map[string]bool)
	for _, id := range ids {
		if _, ok := m.Posts[id]; ok {
			found[id] = true
		}
	}
	return found, nil
}

// MockCommentRepository is a mock implementation of CommentRepository.
// Stored comments are copies, so callers never alias repository state.
type MockCommentRepository struct {
	mu               sync.Mutex
	Comments         map[string]*models.Comment
	Posts            *MockPostRepository
	Reactions        *MockReactionRepository
	InsertError      error
	UpdateError      error
	BatchInsertFunc  func(ctx context.Context, comments []*models.Comment) (int, error)
	BatchInsertCalls int
	UpdateCalls      int
}

// NewMockCommentRepository needs the post mock to scope the moderation queue
// and the reaction mock to rank popular comments; either may be nil.
func NewMockCommentRepository(posts *MockPostRepository, reactions *MockReactionRepository) *MockCommentRepository {
	return &MockCommentRepository{
		Comments:  make(map[string]*models.Comment),
		Posts:     posts,
		Reactions: reactions,
	}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	stored := comment.Clone()
	m.Comments[comment.ID] = &stored
	return nil
}

func (m *MockCommentRepository) BatchInsert(ctx context.Context, comments []*models.Comment) (int, error) {
	m.mu.Lock()
	m.BatchInsertCalls++
	m.mu.Unlock()
	if m.BatchInsertFunc != nil {
		return m.BatchInsertFunc(ctx, comments)
	}
	for _, c := range comments {
		if err := m.Create(ctx, c); err != nil {
			return 0, err
		}
	}
	return len(comments), nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Comments[id]
	if !ok {
		return nil, nil
	}
	out := c.Clone()
	return &out, nil
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	return m.collect(func(c *models.Comment) bool { return c.PostID == postID }, newestFirst), nil
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *models.Comment, expectedVersion int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	if m.UpdateError != nil {
		return m.UpdateError
	}
	stored, ok := m.Comments[comment.ID]
	if !ok {
		return repository.ErrRecordNotFound
	}
	if stored.Version != expectedVersion {
		return repository.ErrVersionMismatch
	}
	comment.Version = expectedVersion + 1
	next := comment.Clone()
	m.Comments[comment.ID] = &next
	return nil
}

func (m *MockCommentRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Comments[id]; !ok {
		return false, nil
	}
	delete(m.Comments, id)
	if m.Reactions != nil {
		m.Reactions.dropComment(id)
	}
	return true, nil
}

func (m *MockCommentRepository) inScope(c *models.Comment, scope repository.PendingScope) bool {
	if c.State != models.CommentStatePending {
		return false
	}
	if scope.PostAuthorID == "" {
		return true
	}
	if m.Posts == nil {
		return false
	}
	post, ok := m.Posts.Posts[c.PostID]
	return ok && post.AuthorID == scope.PostAuthorID
}

func (m *MockCommentRepository) ListPending(ctx context.Context, scope repository.PendingScope, limit, offset int) ([]models.Comment, error) {
	all := m.collect(func(c *models.Comment) bool { return m.inScope(c, scope) }, oldestFirst)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *MockCommentRepository) CountPending(ctx context.Context, scope repository.PendingScope) (int, error) {
	return len(m.collect(func(c *models.Comment) bool { return m.inScope(c, scope) }, oldestFirst)), nil
}

func (m *MockCommentRepository) CountByState(ctx context.Context) (*models.CommentStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &models.CommentStats{}
	for _, c := range m.Comments {
		switch c.State {
		case models.CommentStatePending:
			stats.Pending++
		case models.CommentStateApproved:
			stats.Approved++
		case models.CommentStateRejected:
			stats.Rejected++
		}
		stats.Total++
	}
	return stats, nil
}

func (m *MockCommentRepository) List(ctx context.Context, filter models.CommentFilter) ([]models.Comment, error) {
	author := strings.ToLower(filter.Author)
	return m.collect(func(c *models.Comment) bool {
		if filter.State != "" && c.State != filter.State {
			return false
		}
		return author == "" || strings.Contains(strings.ToLower(c.AuthorName), author)
	}, newestFirst), nil
}

func (m *MockCommentRepository) ListRecentApproved(ctx context.Context, limit int) ([]models.Comment, error) {
	all := m.collect(func(c *models.Comment) bool { return c.IsApproved() }, newestFirst)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *MockCommentRepository) ListPopularApproved(ctx context.Context, limit int) ([]models.Comment, error) {
	all := m.collect(func(c *models.Comment) bool { return c.IsApproved() }, newestFirst)
	if m.Reactions != nil {
		sort.SliceStable(all, func(i, j int) bool {
			return m.Reactions.total(all[i].ID) > m.Reactions.total(all[j].ID)
		})
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *MockCommentRepository) StreamAll(ctx context.Context, callback func(*models.Comment) error) error {
	for _, c := range m.collect(func(*models.Comment) bool { return true }, oldestFirst) {
		c := c
		if err := callback(&c); err != nil {
			return err
		}
	}
	return nil
}

func newestFirst(a, b models.Comment) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

func oldestFirst(a, b models.Comment) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func (m *MockCommentRepository) collect(keep func(*models.Comment) bool, less func(a, b models.Comment) bool) []models.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Comment
	for _, c := range m.Comments {
		if keep(c) {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// MockReactionRepository is a mock implementation of ReactionRepository
type MockReactionRepository struct {
	mu        sync.Mutex
	Reactions map[string]*models.Reaction // keyed by commentID + "/" + userID
}

func NewMockReactionRepository() *MockReactionRepository {
	return &MockReactionRepository{Reactions: make(map[string]*models.Reaction)}
}

func reactionKey(commentID, userID string) string {
	return commentID + "/" + userID
}

func (m *MockReactionRepository) Upsert(ctx context.Context, reaction *models.Reaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := reactionKey(reaction.CommentID, reaction.UserID)
	if existing, ok := m.Reactions[key]; ok {
		reaction.ID = existing.ID
	}
	stored := *reaction
	m.Reactions[key] = &stored
	return nil
}

func (m *MockReactionRepository) Delete(ctx context.Context, commentID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := reactionKey(commentID, userID)
	if _, ok := m.Reactions[key]; !ok {
		return false, nil
	}
	delete(m.Reactions, key)
	return true, nil
}

func (m *MockReactionRepository) CountByType(ctx context.Context, commentID string) (map[models.ReactionType]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[models.ReactionType]int)
	for _, r := range m.Reactions {
		if r.CommentID == commentID {
			counts[r.Type]++
		}
	}
	return counts, nil
}

func (m *MockReactionRepository) total(commentID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.Reactions {
		if r.CommentID == commentID {
			n++
		}
	}
	return n
}

func (m *MockReactionRepository) dropComment(commentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, r := range m.Reactions {
		if r.CommentID == commentID {
			delete(m.Reactions, key)
		}
	}
}

// NewMockRepositories wires every mock into a repository.Repositories
func NewMockRepositories() (*repository.Repositories, *Store) {
	store := &Store{
		Users:     NewMockUserRepository(),
		Posts:     NewMockPostRepository(),
		Reactions: NewMockReactionRepository(),
	}
	store.Comments = NewMockCommentRepository(store.Posts, store.Reactions)
	return &repository.Repositories{
		Comment:  store.Comments,
		Post:     store.Posts,
		User:     store.Users,
		Reaction: store.Reactions,
	}, store
}

// Store exposes the concrete mocks behind NewMockRepositories for seeding and assertions
type Store struct {
	Comments  *MockCommentRepository
	Posts     *MockPostRepository
	Users     *MockUserRepository
	Reactions *MockReactionRepository
}
