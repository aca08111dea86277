package mocks

import (
	"context"
	"io"
	"net/http"

	"github.com/blog-comment-moderation/internal/models"
	"github.com/blog-comment-moderation/internal/moderation"
	"github.com/blog-comment-moderation/internal/service"
)

// MockCommentService is a mock implementation of CommentService.
// Unset funcs return zero values; Users backs ResolveViewer.
type MockCommentService struct {
	Users            map[string]*models.User
	CreateFunc       func(ctx context.Context, in service.CreateCommentInput) (*models.Comment, error)
	TransitionFunc   func(ctx context.Context, in service.TransitionInput) (*models.Comment, error)
	ListVisibleFunc  func(ctx context.Context, postID, viewerID string, order moderation.SortOrder) ([]service.CommentView, error)
	EditFunc         func(ctx context.Context, in service.EditInput) (*models.Comment, error)
	DeleteFunc       func(ctx context.Context, commentID, actorID string) error
	QueueFunc        func(ctx context.Context, viewerID string, page int) (*service.QueuePage, error)
	PendingCountFunc func(ctx context.Context, viewerID string) (int, error)
	StatsFunc        func(ctx context.Context) (*models.CommentStats, error)
	ListAllFunc      func(ctx context.Context, viewerID string, filter models.CommentFilter) ([]models.Comment, error)
	Transitions      []service.TransitionInput
}

// Verify interface compliance
var _ service.CommentService = (*MockCommentService)(nil)

func NewMockCommentService() *MockCommentService {
	return &MockCommentService{Users: make(map[string]*models.User)}
}

func (m *MockCommentService) ResolveViewer(ctx context.Context, viewerID string) (*models.User, error) {
	if viewerID == "" {
		return nil, nil
	}
	u, ok := m.Users[viewerID]
	if !ok {
		return nil, service.ErrUnknownViewer
	}
	return u, nil
}

func (m *MockCommentService) CreateComment(ctx context.Context, in service.CreateCommentInput) (*models.Comment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in)
	}
	return &models.Comment{PostID: in.PostID, AuthorID: in.AuthorID, Content: in.Content, State: models.CommentStatePending, Version: 1}, nil
}

func (m *MockCommentService) TransitionComment(ctx context.Context, in service.TransitionInput) (*models.Comment, error) {
	m.Transitions = append(m.Transitions, in)
	if m.TransitionFunc != nil {
		return m.TransitionFunc(ctx, in)
	}
	return &models.Comment{ID: in.CommentID, State: in.Target, RejectionReason: in.Reason, Version: 2}, nil
}

func (m *MockCommentService) ListVisibleComments(ctx context.Context, postID, viewerID string, order moderation.SortOrder) ([]service.CommentView, error) {
	if m.ListVisibleFunc != nil {
		return m.ListVisibleFunc(ctx, postID, viewerID, order)
	}
	return []service.CommentView{}, nil
}

func (m *MockCommentService) EditComment(ctx context.Context, in service.EditInput) (*models.Comment, error) {
	if m.EditFunc != nil {
		return m.EditFunc(ctx, in)
	}
	return &models.Comment{ID: in.CommentID, Content: in.Content, State: models.CommentStatePending}, nil
}

func (m *MockCommentService) DeleteComment(ctx context.Context, commentID, actorID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, commentID, actorID)
	}
	return nil
}

func (m *MockCommentService) ModerationQueue(ctx context.Context, viewerID string, page int) (*service.QueuePage, error) {
	if m.QueueFunc != nil {
		return m.QueueFunc(ctx, viewerID, page)
	}
	return &service.QueuePage{Comments: []models.Comment{}, Page: page}, nil
}

func (m *MockCommentService) PendingCount(ctx context.Context, viewerID string) (int, error) {
	if m.PendingCountFunc != nil {
		return m.PendingCountFunc(ctx, viewerID)
	}
	return 0, nil
}

func (m *MockCommentService) Stats(ctx context.Context) (*models.CommentStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &models.CommentStats{}, nil
}

func (m *MockCommentService) ListAll(ctx context.Context, viewerID string, filter models.CommentFilter) ([]models.Comment, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx, viewerID, filter)
	}
	return []models.Comment{}, nil
}

func (m *MockCommentService) RecentApproved(ctx context.Context, limit int) ([]models.Comment, error) {
	return nil, nil
}

func (m *MockCommentService) PopularApproved(ctx context.Context, limit int) ([]models.Comment, error) {
	return nil, nil
}

// MockReactionService is a mock implementation of ReactionService
type MockReactionService struct {
	ReactFunc func(ctx context.Context, commentID, userID string, kind models.ReactionType) (*models.Reaction, error)
}

// Verify interface compliance
var _ service.ReactionService = (*MockReactionService)(nil)

func NewMockReactionService() *MockReactionService {
	return &MockReactionService{}
}

func (m *MockReactionService) React(ctx context.Context, commentID, userID string, kind models.ReactionType) (*models.Reaction, error) {
	if m.ReactFunc != nil {
		return m.ReactFunc(ctx, commentID, userID, kind)
	}
	return &models.Reaction{CommentID: commentID, UserID: userID, Type: kind}, nil
}

func (m *MockReactionService) RemoveReaction(ctx context.Context, commentID, userID string) error {
	return nil
}

func (m *MockReactionService) Summary(ctx context.Context, commentID, viewerID string) (map[models.ReactionType]int, error) {
	return map[models.ReactionType]int{}, nil
}

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	StreamCommentsFunc func(ctx context.Context, w http.ResponseWriter, format string) error
	Formats            []string
}

// Verify interface compliance
var _ service.ExportService = (*MockExportService)(nil)

func NewMockExportService() *MockExportService {
	return &MockExportService{}
}

func (m *MockExportService) StreamComments(ctx context.Context, w http.ResponseWriter, format string) error {
	m.Formats = append(m.Formats, format)
	if m.StreamCommentsFunc != nil {
		return m.StreamCommentsFunc(ctx, w, format)
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	return nil
}

// MockImportService is a mock implementation of ImportService
type MockImportService struct {
	ImportFunc func(ctx context.Context, r io.Reader) (*models.ImportResult, error)
}

// Verify interface compliance
var _ service.ImportService = (*MockImportService)(nil)

func NewMockImportService() *MockImportService {
	return &MockImportService{}
}

func (m *MockImportService) ImportLegacyComments(ctx context.Context, r io.Reader) (*models.ImportResult, error) {
	if m.ImportFunc != nil {
		return m.ImportFunc(ctx, r)
	}
	return &models.ImportResult{}, nil
}

// NewMockServices wires every service mock into a service.Services
func NewMockServices() (*service.Services, *MockCommentService, *MockReactionService, *MockExportService) {
	comments := NewMockCommentService()
	reactions := NewMockReactionService()
	exports := NewMockExportService()
	return &service.Services{
		Comment:  comments,
		Reaction: reactions,
		Export:   exports,
		Import:   NewMockImportService(),
	}, comments, reactions, exports
}
