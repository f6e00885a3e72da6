package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mahdiyarhamdi/sheetaro/internal/models"
)

// UserRepository persists accounts of all pipeline roles.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, email, password_hash, display_name, phone, city, role, is_active,
	created_at, updated_at
`

// Create stores a new user.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, display_name, phone, city, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_active, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		u.Email, u.PasswordHash, u.DisplayName, u.Phone, u.City, u.Role,
	).Scan(&u.ID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("user repository: create %w", err)
	}
	return nil
}

// GetByEmail returns a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &u, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by email %w", err)
	}
	return &u, nil
}

// GetByID returns a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by id %w", err)
	}
	return &u, nil
}

// ListByRole returns active users holding the given role.
func (r *UserRepository) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	var users []models.User
	query := `SELECT ` + userColumns + ` FROM users
		WHERE role = $1 AND is_active = TRUE ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &users, query, role); err != nil {
		return nil, fmt.Errorf("user repository: list by role %w", err)
	}
	return users, nil
}

// RegisterPrintShop adds (or reactivates) the rotation entry of a
// print-shop user.
func (r *UserRepository) RegisterPrintShop(ctx context.Context, shop *models.PrintShop) error {
	query := `
		INSERT INTO print_shops (user_id, name, priority, is_active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			priority = EXCLUDED.priority,
			is_active = TRUE
		RETURNING created_at
	`
	if err := r.db.QueryRowxContext(ctx, query, shop.UserID, shop.Name, shop.Priority).Scan(&shop.CreatedAt); err != nil {
		return fmt.Errorf("user repository: register print shop %w", err)
	}
	shop.IsActive = true
	return nil
}
