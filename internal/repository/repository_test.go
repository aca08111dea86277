package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/blog-comment-moderation/internal/mocks"
	"github.com/blog-comment-moderation/internal/models"
	"github.com/blog-comment-moderation/internal/repository"
)

func seedComment(id, postID string, state models.CommentState, createdAt time.Time) *models.Comment {
	c := &models.Comment{
		ID:         id,
		PostID:     postID,
		AuthorID:   "user-1",
		AuthorName: "Lucía",
		Content:    "Un comentario de prueba suficientemente largo",
		State:      state,
		Version:    1,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	if state == models.CommentStateRejected {
		c.RejectionReason = "spam"
	}
	return c
}

func TestMockCommentRepository_UpdateChecksVersion(t *testing.T) {
	repos, _ := mocks.NewMockRepositories()
	ctx := context.Background()

	c := seedComment("c-1", "post-1", models.CommentStatePending, time.Now())
	if err := repos.Comment.Create(ctx, c); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	first, _ := repos.Comment.GetByID(ctx, "c-1")
	second, _ := repos.Comment.GetByID(ctx, "c-1")

	first.State = models.CommentStateApproved
	if err := repos.Comment.Update(ctx, first, first.Version); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if first.Version != 2 {
		t.Errorf("Expected version 2 after update, got %d", first.Version)
	}

	second.State = models.CommentStateRejected
	second.RejectionReason = "spam"
	err := repos.Comment.Update(ctx, second, second.Version)
	if !errors.Is(err, repository.ErrVersionMismatch) {
		t.Fatalf("Expected ErrVersionMismatch, got %v", err)
	}

	stored, _ := repos.Comment.GetByID(ctx, "c-1")
	if stored.State != models.CommentStateApproved {
		t.Errorf("Stale write must not land, state is %s", stored.State)
	}
}

func TestMockCommentRepository_UpdateMissing(t *testing.T) {
	repos, _ := mocks.NewMockRepositories()

	err := repos.Comment.Update(context.Background(), seedComment("ghost", "post-1", models.CommentStatePending, time.Now()), 1)
	if !errors.Is(err, repository.ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestMockCommentRepository_GetReturnsCopy(t *testing.T) {
	repos, _ := mocks.NewMockRepositories()
	ctx := context.Background()

	repos.Comment.Create(ctx, seedComment("c-1", "post-1", models.CommentStatePending, time.Now()))

	got, _ := repos.Comment.GetByID(ctx, "c-1")
	got.State = models.CommentStateApproved

	again, _ := repos.Comment.GetByID(ctx, "c-1")
	if again.State != models.CommentStatePending {
		t.Error("Mutating a fetched comment must not change the stored one")
	}

	missing, err := repos.Comment.GetByID(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("Expected (nil, nil) for a missing comment, got (%v, %v)", missing, err)
	}
}

func TestMockCommentRepository_PendingScope(t *testing.T) {
	repos, store := mocks.NewMockRepositories()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	store.Posts.Create(ctx, &models.Post{ID: "post-a", AuthorID: "collab-a"})
	store.Posts.Create(ctx, &models.Post{ID: "post-b", AuthorID: "collab-b"})

	for i := 0; i < 5; i++ {
		post := "post-a"
		if i%2 == 1 {
			post = "post-b"
		}
		repos.Comment.Create(ctx, seedComment(fmt.Sprintf("c-%d", i), post, models.CommentStatePending, base.Add(time.Duration(i)*time.Minute)))
	}
	repos.Comment.Create(ctx, seedComment("c-approved", "post-a", models.CommentStateApproved, base))

	all, _ := repos.Comment.CountPending(ctx, repository.PendingScope{})
	if all != 5 {
		t.Errorf("Expected 5 pending overall, got %d", all)
	}

	own, _ := repos.Comment.CountPending(ctx, repository.PendingScope{PostAuthorID: "collab-a"})
	if own != 3 {
		t.Errorf("Expected 3 pending on collab-a posts, got %d", own)
	}

	page, _ := repos.Comment.ListPending(ctx, repository.PendingScope{}, 2, 0)
	if len(page) != 2 || page[0].ID != "c-0" || page[1].ID != "c-1" {
		t.Errorf("Expected oldest-first page [c-0 c-1], got %v", ids(page))
	}

	tail, _ := repos.Comment.ListPending(ctx, repository.PendingScope{}, 2, 4)
	if len(tail) != 1 || tail[0].ID != "c-4" {
		t.Errorf("Expected last page [c-4], got %v", ids(tail))
	}
}

func TestMockCommentRepository_DeleteCascadesReactions(t *testing.T) {
	repos, store := mocks.NewMockRepositories()
	ctx := context.Background()

	repos.Comment.Create(ctx, seedComment("c-1", "post-1", models.CommentStateApproved, time.Now()))
	repos.Reaction.Upsert(ctx, &models.Reaction{ID: "r-1", UserID: "u-1", CommentID: "c-1", Type: models.ReactionLike})

	deleted, err := repos.Comment.Delete(ctx, "c-1")
	if err != nil || !deleted {
		t.Fatalf("Delete failed: deleted=%v err=%v", deleted, err)
	}
	if len(store.Reactions.Reactions) != 0 {
		t.Errorf("Expected reactions removed with the comment, got %d", len(store.Reactions.Reactions))
	}

	deleted, _ = repos.Comment.Delete(ctx, "c-1")
	if deleted {
		t.Error("Second delete should report nothing removed")
	}
}

func TestMockReactionRepository_UpsertReplacesType(t *testing.T) {
	repos, _ := mocks.NewMockRepositories()
	ctx := context.Background()

	repos.Reaction.Upsert(ctx, &models.Reaction{ID: "r-1", UserID: "u-1", CommentID: "c-1", Type: models.ReactionLike})
	second := &models.Reaction{ID: "r-2", UserID: "u-1", CommentID: "c-1", Type: models.ReactionLove}
	repos.Reaction.Upsert(ctx, second)
	repos.Reaction.Upsert(ctx, &models.Reaction{ID: "r-3", UserID: "u-2", CommentID: "c-1", Type: models.ReactionLove})

	if second.ID != "r-1" {
		t.Errorf("Expected upsert to keep the original reaction ID, got %s", second.ID)
	}

	counts, _ := repos.Reaction.CountByType(ctx, "c-1")
	if counts[models.ReactionLove] != 2 || counts[models.ReactionLike] != 0 {
		t.Errorf("Unexpected counts: %v", counts)
	}
}

func TestMockCommentRepository_ListFilter(t *testing.T) {
	repos, _ := mocks.NewMockRepositories()
	ctx := context.Background()
	now := time.Now()

	a := seedComment("c-1", "post-1", models.CommentStateApproved, now)
	a.AuthorName = "María García"
	b := seedComment("c-2", "post-1", models.CommentStateRejected, now.Add(time.Second))
	b.AuthorName = "Mario"
	repos.Comment.Create(ctx, a)
	repos.Comment.Create(ctx, b)

	byAuthor, _ := repos.Comment.List(ctx, models.CommentFilter{Author: "mar"})
	if len(byAuthor) != 2 || byAuthor[0].ID != "c-2" {
		t.Errorf("Expected newest-first [c-2 c-1], got %v", ids(byAuthor))
	}

	byState, _ := repos.Comment.List(ctx, models.CommentFilter{State: models.CommentStateApproved})
	if len(byState) != 1 || byState[0].ID != "c-1" {
		t.Errorf("Expected [c-1], got %v", ids(byState))
	}
}

func ids(comments []models.Comment) []string {
	out := make([]string, len(comments))
	for i, c := range comments {
		out[i] = c.ID
	}
	return out
}
