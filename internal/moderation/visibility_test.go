package moderation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/blog-comment-moderation/internal/models"
	"github.com/blog-comment-moderation/internal/moderation"
)

func commentSet(postID string) []models.Comment {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []models.Comment{
		{ID: "a", PostID: postID, AuthorID: "reader", State: models.CommentStateApproved, CreatedAt: base},
		{ID: "b", PostID: postID, AuthorID: "reader", State: models.CommentStatePending, CreatedAt: base.Add(1 * time.Minute)},
		{ID: "c", PostID: postID, AuthorID: "someone", State: models.CommentStatePending, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "d", PostID: postID, AuthorID: "reader", State: models.CommentStateRejected, RejectionReason: "spam", CreatedAt: base.Add(3 * time.Minute)},
		{ID: "e", PostID: postID, AuthorID: "someone", State: models.CommentStateApproved, CreatedAt: base.Add(4 * time.Minute)},
		{ID: "f", PostID: postID, AuthorID: "collab", State: models.CommentStatePending, CreatedAt: base.Add(5 * time.Minute)},
	}
}

func ids(comments []models.Comment) []string {
	out := make([]string, len(comments))
	for i, c := range comments {
		out[i] = c.ID
	}
	return out
}

func TestVisibleComments_ByRole(t *testing.T) {
	_, reader, collaborator, _, staff, superuser := fixtures()
	ownPost := &models.Post{ID: "post-own", AuthorID: collaborator.ID}
	foreignPost := &models.Post{ID: "post-foreign", AuthorID: "author"}

	tests := []struct {
		name   string
		viewer *models.User
		post   *models.Post
		want   []string
	}{
		{name: "anonymous", viewer: nil, post: foreignPost, want: []string{"e", "a"}},
		{name: "reader sees approved and own", viewer: reader, post: foreignPost, want: []string{"e", "d", "b", "a"}},
		{name: "collaborator on own post", viewer: collaborator, post: ownPost, want: []string{"f", "e", "d", "c", "b", "a"}},
		{name: "collaborator on foreign post", viewer: collaborator, post: foreignPost, want: []string{"e", "a"}},
		{name: "staff", viewer: staff, post: foreignPost, want: []string{"f", "e", "d", "c", "b", "a"}},
		{name: "superuser", viewer: superuser, post: foreignPost, want: []string{"f", "e", "d", "c", "b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := moderation.VisibleComments(commentSet(tt.post.ID), tt.viewer, tt.post, moderation.SortNewestFirst)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestVisibleComments_AnonymousNeverSeesUnapproved(t *testing.T) {
	post := &models.Post{ID: "p", AuthorID: "author"}
	for _, c := range moderation.VisibleComments(commentSet("p"), nil, post, moderation.SortNewestFirst) {
		assert.Equal(t, models.CommentStateApproved, c.State)
	}
}

func TestVisibleComments_CollaboratorSeesAtLeastAsMuchOnOwnPost(t *testing.T) {
	_, _, collaborator, _, _, _ := fixtures()
	own := &models.Post{ID: "p", AuthorID: collaborator.ID}
	foreign := &models.Post{ID: "p", AuthorID: "author"}

	onOwn := moderation.VisibleComments(commentSet("p"), collaborator, own, moderation.SortNewestFirst)
	onForeign := moderation.VisibleComments(commentSet("p"), collaborator, foreign, moderation.SortNewestFirst)

	assert.GreaterOrEqual(t, len(onOwn), len(onForeign))
	assert.Subset(t, ids(onOwn), ids(onForeign))
}

func TestVisibleComments_OldestFirst(t *testing.T) {
	_, _, _, _, staff, _ := fixtures()
	post := &models.Post{ID: "p", AuthorID: "author"}

	got := moderation.VisibleComments(commentSet("p"), staff, post, moderation.SortOldestFirst)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, ids(got))
}

func TestVisibleComments_DoesNotReorderInput(t *testing.T) {
	all := commentSet("p")
	moderation.VisibleComments(all, nil, &models.Post{ID: "p"}, moderation.SortNewestFirst)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, ids(all))
}

func TestSortComments_TieBreaksOnID(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	comments := []models.Comment{{ID: "1", CreatedAt: at}, {ID: "3", CreatedAt: at}, {ID: "2", CreatedAt: at}}

	moderation.SortComments(comments, moderation.SortNewestFirst)
	assert.Equal(t, []string{"3", "2", "1"}, ids(comments))

	moderation.SortComments(comments, moderation.SortOldestFirst)
	assert.Equal(t, []string{"1", "2", "3"}, ids(comments))
}

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, moderation.SortOldestFirst, moderation.ParseSortOrder("asc"))
	assert.Equal(t, moderation.SortNewestFirst, moderation.ParseSortOrder("desc"))
	assert.Equal(t, moderation.SortNewestFirst, moderation.ParseSortOrder(""))
	assert.Equal(t, moderation.SortNewestFirst, moderation.ParseSortOrder("bogus"))
}
