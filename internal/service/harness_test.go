package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/blog-comment-moderation/internal/cache"
	"github.com/blog-comment-moderation/internal/config"
	"github.com/blog-comment-moderation/internal/mocks"
	"github.com/blog-comment-moderation/internal/models"
	"github.com/blog-comment-moderation/internal/repository"
	"github.com/blog-comment-moderation/internal/service"
)

type testHarness struct {
	services *service.Services
	repos    *repository.Repositories
	store    *mocks.Store
	cache    *cache.Cache

	author       *models.User // collaborator who wrote post
	collaborator *models.User // collaborator on someone else's post
	reader       *models.User
	otherReader  *models.User
	staff        *models.User
	post         *models.Post
	otherPost    *models.Post
}

func newTestHarness(t *testing.T, pageSize int) *testHarness {
	t.Helper()

	repos, store := mocks.NewMockRepositories()
	c, err := cache.New(128, time.Minute)
	require.NoError(t, err)

	cfg := &config.Config{
		Moderation: config.ModerationConfig{PageSize: pageSize},
		Import:     config.ImportConfig{BatchSize: 2},
	}

	h := &testHarness{
		services:     service.NewServices(repos, c, cfg, zerolog.Nop()),
		repos:        repos,
		store:        store,
		cache:        c,
		author:       &models.User{ID: uuid.NewString(), Username: "ana", IsCollaborator: true},
		collaborator: &models.User{ID: uuid.NewString(), Username: "carlos", IsCollaborator: true},
		reader:       &models.User{ID: uuid.NewString(), Username: "lucia"},
		otherReader:  &models.User{ID: uuid.NewString(), Username: "pablo"},
		staff:        &models.User{ID: uuid.NewString(), Username: "editor", IsStaff: true},
	}
	for _, u := range []*models.User{h.author, h.collaborator, h.reader, h.otherReader, h.staff} {
		store.Users.Create(context.Background(), u)
	}

	h.post = &models.Post{ID: uuid.NewString(), AuthorID: h.author.ID, Title: "Una semana en Oaxaca"}
	h.otherPost = &models.Post{ID: uuid.NewString(), AuthorID: h.collaborator.ID, Title: "Lisboa en tranvía"}
	store.Posts.Create(context.Background(), h.post)
	store.Posts.Create(context.Background(), h.otherPost)

	return h
}

// seed stores a comment directly, bypassing the service
func (h *testHarness) seed(t *testing.T, post *models.Post, author *models.User, state models.CommentState, createdAt time.Time) *models.Comment {
	t.Helper()
	c := &models.Comment{
		ID:         uuid.NewString(),
		PostID:     post.ID,
		AuthorID:   author.ID,
		AuthorName: author.Username,
		Content:    "Comentario sembrado para las pruebas",
		State:      state,
		Version:    1,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	if state != models.CommentStatePending {
		by := h.staff.ID
		at := createdAt
		c.ModeratedBy = &by
		c.ModeratedAt = &at
	}
	if state == models.CommentStateRejected {
		c.RejectionReason = "Spam"
	}
	require.NoError(t, h.store.Comments.Create(context.Background(), c))
	return c
}

func intPtr(v int) *int {
	return &v
}
