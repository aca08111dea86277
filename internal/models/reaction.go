package models

import "time"

// ReactionType is one of the fixed reaction kinds
type ReactionType string

const (
	ReactionLike  ReactionType = "like"
	ReactionLove  ReactionType = "love"
	ReactionWow   ReactionType = "wow"
	ReactionSad   ReactionType = "sad"
	ReactionAngry ReactionType = "angry"
)

// ValidReactionTypes defines allowed reaction types
var ValidReactionTypes = map[ReactionType]bool{
	ReactionLike:  true,
	ReactionLove:  true,
	ReactionWow:   true,
	ReactionSad:   true,
	ReactionAngry: true,
}

// Reaction links one user to one comment; unique per (UserID, CommentID)
type Reaction struct {
	ID        string       `json:"id" db:"id"`
	UserID    string       `json:"user_id" db:"user_id"`
	CommentID string       `json:"comment_id" db:"comment_id"`
	Type      ReactionType `json:"type" db:"type"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}
