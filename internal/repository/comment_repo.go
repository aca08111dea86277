package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/blog-comment-moderation/internal/database"
	"github.com/blog-comment-moderation/internal/models"
)

const commentColumns = `c.id, c.post_id, c.author_id, c.author_name, c.content, c.state,
	c.rejection_reason, c.moderated_by, c.moderated_at, c.version, c.created_at, c.updated_at`

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

func scanComment(s rowScanner) (*models.Comment, error) {
	var (
		comment     models.Comment
		state       string
		reason      sql.NullString
		moderatedBy sql.NullString
		moderatedAt sql.NullTime
	)
	err := s.Scan(
		&comment.ID, &comment.PostID, &comment.AuthorID, &comment.AuthorName, &comment.Content, &state,
		&reason, &moderatedBy, &moderatedAt, &comment.Version, &comment.CreatedAt, &comment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	comment.State = models.CommentState(state)
	comment.RejectionReason = reason.String
	if moderatedBy.Valid {
		comment.ModeratedBy = &moderatedBy.String
	}
	if moderatedAt.Valid {
		t := moderatedAt.Time
		comment.ModeratedAt = &t
	}
	return &comment, nil
}

func collectComments(rows *sql.Rows) ([]models.Comment, error) {
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}
	return comments, rows.Err()
}

// Create inserts a new comment
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, post_id, author_id, author_name, content, state,
			rejection_reason, moderated_by, moderated_at, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.PostID, comment.AuthorID, comment.AuthorName, comment.Content, string(comment.State),
		nullString(comment.RejectionReason), nullStringPtr(comment.ModeratedBy), nullTimePtr(comment.ModeratedAt),
		comment.Version, comment.CreatedAt, comment.UpdatedAt,
	)
	return err
}

// BatchInsert inserts multiple comments using PostgreSQL COPY
func (r *commentRepo) BatchInsert(ctx context.Context, comments []*models.Comment) (int, error) {
	if len(comments) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("comments",
		"id", "post_id", "author_id", "author_name", "content", "state",
		"rejection_reason", "moderated_by", "moderated_at", "version", "created_at", "updated_at",
	))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now()
	inserted := 0

	for _, comment := range comments {
		version := comment.Version
		if version < 1 {
			version = 1
		}
		_, err := stmt.ExecContext(ctx,
			comment.ID, comment.PostID, comment.AuthorID, comment.AuthorName, comment.Content, string(comment.State),
			nullString(comment.RejectionReason), nullStringPtr(comment.ModeratedBy), nullTimePtr(comment.ModeratedAt),
			version, comment.CreatedAt, now,
		)
		if err != nil {
			return 0, fmt.Errorf("copy comment %s: %w", comment.ID, err)
		}
		inserted++
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return inserted, nil
}

// GetByID retrieves a comment by ID
func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments c WHERE c.id = $1`

	comment, err := scanComment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ListByPost returns every comment of a post regardless of state
func (r *commentRepo) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments c WHERE c.post_id = $1 ORDER BY c.created_at DESC, c.id`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	return collectComments(rows)
}

// Update persists a comment using the version column as a compare-and-swap guard
func (r *commentRepo) Update(ctx context.Context, comment *models.Comment, expectedVersion int) error {
	query := `
		UPDATE comments SET
			content = $1, state = $2, rejection_reason = $3, moderated_by = $4,
			moderated_at = $5, updated_at = $6, version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`
	var version int
	err := r.db.QueryRowContext(ctx, query,
		comment.Content, string(comment.State), nullString(comment.RejectionReason),
		nullStringPtr(comment.ModeratedBy), nullTimePtr(comment.ModeratedAt), comment.UpdatedAt,
		comment.ID, expectedVersion,
	).Scan(&version)

	if err == sql.ErrNoRows {
		var exists bool
		if err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM comments WHERE id = $1)", comment.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrRecordNotFound
		}
		return ErrVersionMismatch
	}
	if err != nil {
		return err
	}

	comment.Version = version
	return nil
}

// Delete removes a comment and, through the foreign key, its reactions
func (r *commentRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func pendingWhere(scope PendingScope) (string, []interface{}) {
	if scope.PostAuthorID == "" {
		return `FROM comments c WHERE c.state = 'pending'`, nil
	}
	return `FROM comments c JOIN posts p ON p.id = c.post_id
		WHERE c.state = 'pending' AND p.author_id = $1`, []interface{}{scope.PostAuthorID}
}

// ListPending returns a page of pending comments, oldest first
func (r *commentRepo) ListPending(ctx context.Context, scope PendingScope, limit, offset int) ([]models.Comment, error) {
	from, args := pendingWhere(scope)
	n := len(args)
	query := fmt.Sprintf(`SELECT %s %s ORDER BY c.created_at ASC, c.id LIMIT $%d OFFSET $%d`,
		commentColumns, from, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectComments(rows)
}

// CountPending returns the number of pending comments in scope
func (r *commentRepo) CountPending(ctx context.Context, scope PendingScope) (int, error) {
	from, args := pendingWhere(scope)

	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) "+from, args...).Scan(&count)
	return count, err
}

// CountByState aggregates comment totals per moderation state
func (r *commentRepo) CountByState(ctx context.Context) (*models.CommentStats, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT state, COUNT(*) FROM comments GROUP BY state`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &models.CommentStats{}
	for rows.Next() {
		var (
			state string
			count int
		)
		if err := rows.Scan(&state, &count); err != nil {
			return nil, err
		}
		switch models.CommentState(state) {
		case models.CommentStatePending:
			stats.Pending = count
		case models.CommentStateApproved:
			stats.Approved = count
		case models.CommentStateRejected:
			stats.Rejected = count
		}
		stats.Total += count
	}
	return stats, rows.Err()
}

// List returns comments matching the filter, newest first
func (r *commentRepo) List(ctx context.Context, filter models.CommentFilter) ([]models.Comment, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.State != "" {
		args = append(args, string(filter.State))
		conds = append(conds, fmt.Sprintf("c.state = $%d", len(args)))
	}
	if filter.Author != "" {
		args = append(args, containsPattern(filter.Author))
		conds = append(conds, fmt.Sprintf(`c.author_name ILIKE $%d ESCAPE '\'`, len(args)))
	}

	query := `SELECT ` + commentColumns + ` FROM comments c`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY c.created_at DESC, c.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectComments(rows)
}

// ListRecentApproved returns the newest approved comments across all posts
func (r *commentRepo) ListRecentApproved(ctx context.Context, limit int) ([]models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments c
		WHERE c.state = 'approved' ORDER BY c.created_at DESC, c.id LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return collectComments(rows)
}

// ListPopularApproved returns approved comments ranked by reaction count
func (r *commentRepo) ListPopularApproved(ctx context.Context, limit int) ([]models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments c
		LEFT JOIN reactions r ON r.comment_id = c.id
		WHERE c.state = 'approved'
		GROUP BY c.id
		ORDER BY COUNT(r.id) DESC, c.created_at DESC, c.id
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return collectComments(rows)
}

// StreamAll streams all comments for export
func (r *commentRepo) StreamAll(ctx context.Context, callback func(*models.Comment) error) error {
	query := `SELECT ` + commentColumns + ` FROM comments c ORDER BY c.created_at, c.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return err
		}
		if err := callback(comment); err != nil {
			return err
		}
	}

	return rows.Err()
}
