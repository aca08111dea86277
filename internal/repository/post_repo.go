package repository

import (
	"context"
	"database/sql"

	"github.com/blog-comment-moderation/internal/database"
	"github.com/blog-comment-moderation/internal/models"
)

// postRepo is the concrete implementation of PostRepository
type postRepo struct {
	db *database.DB
}

// NewPostRepo creates a new post repository
func NewPostRepo(db *database.DB) PostRepository {
	return &postRepo{db: db}
}

// Create inserts a new post
func (r *postRepo) Create(ctx context.Context, post *models.Post) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (id, author_id, title, created_at) VALUES ($1, $2, $3, $4)`,
		post.ID, post.AuthorID, post.Title, post.CreatedAt,
	)
	return err
}

// GetByID retrieves a post by ID
func (r *postRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.db.QueryRowContext(ctx,
		`SELECT id, author_id, title, created_at FROM posts WHERE id = $1`, id,
	).Scan(&post.ID, &post.AuthorID, &post.Title, &post.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ExistingIDs reports which of the given IDs belong to stored posts
func (r *postRepo) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	return existingIDs(ctx, r.db.DB, "posts", ids)
}
