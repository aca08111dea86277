package models

import (
	"time"
)

// CommentState is the moderation state of a comment
type CommentState string

const (
	CommentStatePending  CommentState = "pending"
	CommentStateApproved CommentState = "approved"
	CommentStateRejected CommentState = "rejected"
)

// ValidCommentStates defines the allowed moderation states
var ValidCommentStates = map[CommentState]bool{
	CommentStatePending:  true,
	CommentStateApproved: true,
	CommentStateRejected: true,
}

// IsValid reports whether s is one of the three moderation states
func (s CommentState) IsValid() bool {
	return ValidCommentStates[s]
}

// Label returns the Spanish display label used in user-facing messages
func (s CommentState) Label() string {
	switch s {
	case CommentStatePending:
		return "Pendiente de revisión"
	case CommentStateApproved:
		return "Aprobado"
	case CommentStateRejected:
		return "Rechazado"
	default:
		return string(s)
	}
}

// Comment represents a comment on a post
type Comment struct {
	ID              string       `json:"id" db:"id"`
	PostID          string       `json:"post_id" db:"post_id"`
	AuthorID        string       `json:"author_id" db:"author_id"`
	AuthorName      string       `json:"author_name" db:"author_name"`
	Content         string       `json:"content" db:"content"`
	State           CommentState `json:"state" db:"state"`
	RejectionReason string       `json:"rejection_reason,omitempty" db:"rejection_reason"`
	ModeratedBy     *string      `json:"moderated_by,omitempty" db:"moderated_by"`
	ModeratedAt     *time.Time   `json:"moderated_at,omitempty" db:"moderated_at"`
	Version         int          `json:"version" db:"version"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at" db:"updated_at"`
}

// IsApproved is derived from State; there is no stored approval flag
func (c *Comment) IsApproved() bool {
	return c.State == CommentStateApproved
}

// Clone returns a deep copy so callers can compute a new snapshot without touching the original
func (c Comment) Clone() Comment {
	out := c
	if c.ModeratedBy != nil {
		by := *c.ModeratedBy
		out.ModeratedBy = &by
	}
	if c.ModeratedAt != nil {
		at := *c.ModeratedAt
		out.ModeratedAt = &at
	}
	return out
}

// CommentFilter narrows staff listings
type CommentFilter struct {
	State  CommentState `form:"state"`
	Author string       `form:"author"` // case-insensitive substring of AuthorName
}

// CommentStats holds totals per moderation state
type CommentStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// Content length bounds enforced at submission
const (
	MinCommentLength = 10
	MaxCommentLength = 1000
)
