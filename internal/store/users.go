// internal/store/users.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	apperrors "growth-assistant/internal/common/errors"
	"growth-assistant/internal/models"
)

// CreateUser inserts a new account. Emails are stored lowercase and are
// unique case-insensitively.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if !models.ValidRole(user.Role) {
		return apperrors.NewValidationError(fmt.Sprintf("invalid role %q", user.Role))
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, role, name, business_type, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Email, user.PasswordHash, string(user.Role),
		user.Name, user.BusinessType, user.Phone, user.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return apperrors.NewDuplicateRecordError(user.Email)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, role, name, business_type, phone, created_at
		FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetUserByEmail fetches a user by email, case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, role, name, business_type, phone, created_at
		FROM users WHERE LOWER(email) = LOWER($1)`, strings.TrimSpace(email))
	return scanUser(row)
}

// ListVendors returns every user with the vendor role, ordered by creation.
func (s *Store) ListVendors(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, password_hash, role, name, business_type, phone, created_at
		FROM users WHERE role = $1 ORDER BY created_at`, string(models.RoleVendor))
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()

	var vendors []models.User
	for rows.Next() {
		var u models.User
		var role string
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.Name,
			&u.BusinessType, &u.Phone, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		u.Role = models.Role(role)
		vendors = append(vendors, u)
	}
	return vendors, rows.Err()
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.Name,
		&u.BusinessType, &u.Phone, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("user", "")
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Role = models.Role(role)
	return &u, nil
}
