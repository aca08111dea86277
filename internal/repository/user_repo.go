package repository

import (
	"context"
	"database/sql"

	"github.com/blog-comment-moderation/internal/database"
	"github.com/blog-comment-moderation/internal/models"
)

// userRepo is the concrete implementation of UserRepository
type userRepo struct {
	db *database.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *database.DB) UserRepository {
	return &userRepo{db: db}
}

// Create inserts a new user
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, is_staff, is_superuser, is_collaborator, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.IsStaff, user.IsSuperuser, user.IsCollaborator, user.CreatedAt,
	)
	return err
}

// GetByID retrieves a user and its role flags
func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, username, email, is_staff, is_superuser, is_collaborator, created_at
		FROM users WHERE id = $1
	`

	var user models.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.Email, &user.IsStaff, &user.IsSuperuser, &user.IsCollaborator, &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// ExistingIDs reports which of the given IDs belong to stored users
func (r *userRepo) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	return existingIDs(ctx, r.db.DB, "users", ids)
}
