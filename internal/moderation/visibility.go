package moderation

import (
	"sort"

	"github.com/blog-comment-moderation/internal/models"
)

// SortOrder selects the creation-time ordering of a comment list
type SortOrder string

const (
	SortNewestFirst SortOrder = "desc"
	SortOldestFirst SortOrder = "asc"
)

// ParseSortOrder maps a query value to a SortOrder, defaulting to newest first
func ParseSortOrder(v string) SortOrder {
	if v == string(SortOldestFirst) {
		return SortOldestFirst
	}
	return SortNewestFirst
}

// CanView reports whether viewer may see c on post.
//
//   - anonymous: approved only
//   - staff and superusers: everything
//   - collaborators: everything on their own posts, approved elsewhere
//   - everyone else: approved plus their own comments in any state
func CanView(c *models.Comment, viewer *models.User, post *models.Post) bool {
	if c.State == models.CommentStateApproved {
		return true
	}
	if viewer == nil {
		return false
	}
	if viewer.IsStaff || viewer.IsSuperuser {
		return true
	}
	if viewer.IsCollaborator {
		return post != nil && post.AuthorID == viewer.ID && c.PostID == post.ID
	}
	return c.AuthorID == viewer.ID
}

// VisibleComments filters all down to what viewer may see on post and sorts the
// result by creation time. The input slice is not modified.
func VisibleComments(all []models.Comment, viewer *models.User, post *models.Post, order SortOrder) []models.Comment {
	out := make([]models.Comment, 0, len(all))
	for i := range all {
		if CanView(&all[i], viewer, post) {
			out = append(out, all[i])
		}
	}
	SortComments(out, order)
	return out
}

// SortComments orders comments by CreatedAt, breaking ties on ID
func SortComments(comments []models.Comment, order SortOrder) {
	sort.SliceStable(comments, func(i, j int) bool {
		a, b := comments[i], comments[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if order == SortOldestFirst {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		if order == SortOldestFirst {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})
}
