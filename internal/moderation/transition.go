package moderation

import (
	"fmt"
	"strings"
	"time"

	"github.com/blog-comment-moderation/internal/models"
)

// NewComment builds a fresh comment for author on post. The comment starts
// approved when the author already moderates that post, pending otherwise.
func NewComment(id string, post *models.Post, author *models.User, content string, now time.Time) models.Comment {
	c := models.Comment{
		ID:         id,
		PostID:     post.ID,
		AuthorID:   author.ID,
		AuthorName: author.Username,
		Content:    content,
		State:      models.CommentStatePending,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if CanModeratePost(author, post) {
		stamp(&c, author.ID, now)
		c.State = models.CommentStateApproved
	}
	return c
}

// Transition moves c to target on behalf of actor and returns the new snapshot.
// c itself is left untouched, so a failed transition has no effect.
//
// Re-applying the current state is a no-op, except for rejected where the
// reason and the moderation stamp are replaced.
func Transition(c models.Comment, target models.CommentState, actor *models.User, post *models.Post, reason string, now time.Time) (models.Comment, error) {
	if !target.IsValid() {
		return c, fmt.Errorf("%w: unknown state %q", ErrInvalidTransition, target)
	}
	if !Capabilities(actor, &c, post).Has(CapabilityModerate) {
		return c, fmt.Errorf("%w: moderate capability required", ErrUnauthorized)
	}

	reason = strings.TrimSpace(reason)
	if target == models.CommentStateRejected && reason == "" {
		return c, fmt.Errorf("%w: a reason is required to reject a comment", ErrInvalidTransition)
	}

	if target == c.State && target != models.CommentStateRejected {
		return c, nil
	}

	next := c.Clone()
	switch target {
	case models.CommentStateApproved:
		stamp(&next, actor.ID, now)
		next.RejectionReason = ""
	case models.CommentStateRejected:
		stamp(&next, actor.ID, now)
		next.RejectionReason = reason
	case models.CommentStatePending:
		reset(&next)
	}
	next.State = target
	next.UpdatedAt = now
	return next, nil
}

// Edit replaces the content of c. Only the author may edit, and any edit sends
// the comment back to pending.
func Edit(c models.Comment, actor *models.User, post *models.Post, content string, now time.Time) (models.Comment, error) {
	if !Capabilities(actor, &c, post).Has(CapabilityEdit) {
		return c, fmt.Errorf("%w: only the author can edit a comment", ErrUnauthorized)
	}

	next := c.Clone()
	next.Content = content
	next.State = models.CommentStatePending
	reset(&next)
	next.UpdatedAt = now
	return next, nil
}

// CheckInvariants verifies the state/field coupling of a snapshot
func CheckInvariants(c models.Comment) error {
	if !c.State.IsValid() {
		return fmt.Errorf("invalid state %q", c.State)
	}
	hasReason := strings.TrimSpace(c.RejectionReason) != ""
	if (c.State == models.CommentStateRejected) != hasReason {
		return fmt.Errorf("state %s with rejection reason %q", c.State, c.RejectionReason)
	}
	if (c.ModeratedBy == nil) != (c.ModeratedAt == nil) {
		return fmt.Errorf("moderated_by and moderated_at out of step")
	}
	if c.State == models.CommentStatePending && c.ModeratedBy != nil {
		return fmt.Errorf("pending comment carries a moderator")
	}
	return nil
}

func stamp(c *models.Comment, moderatorID string, now time.Time) {
	by := moderatorID
	at := now
	c.ModeratedBy = &by
	c.ModeratedAt = &at
}

func reset(c *models.Comment) {
	c.ModeratedBy = nil
	c.ModeratedAt = nil
	c.RejectionReason = ""
}
