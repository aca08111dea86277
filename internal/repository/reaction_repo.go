package repository

import (
	"context"

	"github.com/blog-comment-moderation/internal/database"
	"github.com/blog-comment-moderation/internal/models"
)

// reactionRepo is the concrete implementation of ReactionRepository
type reactionRepo struct {
	db *database.DB
}

// NewReactionRepo creates a new reaction repository
func NewReactionRepo(db *database.DB) ReactionRepository {
	return &reactionRepo{db: db}
}

// Upsert stores the reaction, replacing the type of an existing one from the same user
func (r *reactionRepo) Upsert(ctx context.Context, reaction *models.Reaction) error {
	query := `
		INSERT INTO reactions (id, user_id, comment_id, type, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, comment_id) DO UPDATE SET
			type = EXCLUDED.type,
			created_at = EXCLUDED.created_at
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		reaction.ID, reaction.UserID, reaction.CommentID, string(reaction.Type), reaction.CreatedAt,
	).Scan(&reaction.ID)
}

// Delete removes the user's reaction on a comment
func (r *reactionRepo) Delete(ctx context.Context, commentID, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM reactions WHERE comment_id = $1 AND user_id = $2`, commentID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountByType returns the reaction tally of a comment
func (r *reactionRepo) CountByType(ctx context.Context, commentID string) (map[models.ReactionType]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT type, COUNT(*) FROM reactions WHERE comment_id = $1 GROUP BY type`, commentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.ReactionType]int)
	for rows.Next() {
		var (
			kind  string
			count int
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		counts[models.ReactionType(kind)] = count
	}
	return counts, rows.Err()
}
