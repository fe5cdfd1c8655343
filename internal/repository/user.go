package repository

import (
	"context"
	"fmt"

	"alarm-clock-backend/internal/apperr"
	"alarm-clock-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, phone, name, avatar, push_token, created_at`

// FindOrCreate inserts user unless its phone is already registered and returns the stored row.
// The no-op update makes RETURNING yield the existing row on conflict.
func (r *UserRepository) FindOrCreate(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, phone, name, avatar, push_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (phone) DO UPDATE SET phone = EXCLUDED.phone
		RETURNING ` + userColumns
	var stored models.User
	err := r.db.QueryRow(ctx, query,
		user.ID, user.Phone, user.Name, user.Avatar, user.PushToken, user.CreatedAt,
	).Scan(&stored.ID, &stored.Phone, &stored.Name, &stored.Avatar, &stored.PushToken, &stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to find or create user: %w", err)
	}
	return &stored, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if err := checkID(id, "get user", "user"); err != nil {
		return nil, err
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	var user models.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Phone, &user.Name, &user.Avatar, &user.PushToken, &user.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err, "get user", "user")
	}
	return &user, nil
}

// GetByPhone retrieves a user by phone number
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`
	var user models.User
	err := r.db.QueryRow(ctx, query, phone).Scan(
		&user.ID, &user.Phone, &user.Name, &user.Avatar, &user.PushToken, &user.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err, "get user by phone", "user")
	}
	return &user, nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	if err := checkID(userID, "update push token", "user"); err != nil {
		return err
	}
	query := `UPDATE users SET push_token = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, pushToken, userID)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("update push token", "user not found")
	}
	return nil
}
