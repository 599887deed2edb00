// Package customers resolves customer and contact references with
// find-or-create semantics. Natural keys: (lower(name), zone) for customers,
// (customer id, phone) for contacts; both are backed by unique constraints,
// which remain the final correctness backstop if a concurrent writer races
// the lookup.
package customers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidInput = errors.New("invalid input")

type Customer struct {
	ID         int64
	Name       string
	Zone       string
	Address    string
	Department string
}

type Contact struct {
	ID         int64
	CustomerID int64
	Name       string
	Phone      string
	Email      string
}

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// FindOrCreate resolves a customer by company name and zone, creating it
// under the importing actor on a miss.
func (s *Service) FindOrCreate(ctx context.Context, c Customer, actorID string) (int64, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return 0, fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	zone := strings.TrimSpace(c.Zone)

	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM customers WHERE LOWER(name) = LOWER($1) AND zone = $2`,
		name, zone,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup customer %q: %w", name, err)
	}

	err = s.db.QueryRowContext(ctx,
		`INSERT INTO customers (name, zone, address, department, created_by)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		name, zone, strings.TrimSpace(c.Address), strings.TrimSpace(c.Department), actorID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create customer %q: %w", name, err)
	}
	return id, nil
}

// FindOrCreateContact resolves a contact by phone within a customer.
func (s *Service) FindOrCreateContact(ctx context.Context, c Contact, actorID string) (int64, error) {
	phone := strings.TrimSpace(c.Phone)
	if c.CustomerID == 0 || phone == "" {
		return 0, fmt.Errorf("%w: contact needs a customer and a phone number", ErrInvalidInput)
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM contacts WHERE customer_id = $1 AND phone = $2`,
		c.CustomerID, phone,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup contact %s: %w", phone, err)
	}

	err = s.db.QueryRowContext(ctx,
		`INSERT INTO contacts (customer_id, name, phone, email, created_by)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		c.CustomerID, strings.TrimSpace(c.Name), phone, strings.TrimSpace(c.Email), actorID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create contact %s: %w", phone, err)
	}
	return id, nil
}
