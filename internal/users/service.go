package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

const (
	DefaultAdminEmail    = "admin"
	DefaultAdminPassword = "ChangeMe#2024"
	DefaultAdminRole     = "admin"
)

// User is the actor recorded on every entity the importers create.
type User struct {
	ID    string
	Email string
	Role  string
}

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// DefaultAdmin looks up the actor used to attribute imported records. The
// importers treat ErrNotFound as a fatal setup error.
func (s *Service) DefaultAdmin(ctx context.Context, email string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, role FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("lookup admin user: %w", err)
	}
	return u, nil
}

// SeedDefaultAdmin creates the default admin account if it does not already
// exist. It is meant to be run once before the first import.
func (s *Service) SeedDefaultAdmin(ctx context.Context) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`,
		DefaultAdminEmail,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check default admin: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hash default password: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, role, is_default_admin)
		 VALUES ($1, $2, $3, TRUE)
		 ON CONFLICT (email) DO NOTHING`,
		DefaultAdminEmail, hash, DefaultAdminRole,
	)
	if err != nil {
		return fmt.Errorf("seed default admin: %w", err)
	}
	return nil
}
