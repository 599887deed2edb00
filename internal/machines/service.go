// Package machines resolves installed machines (assets) by serial number.
// The serial is treated as globally unique, not scoped per customer: a
// machine referenced under two different offers resolves to the same row.
package machines

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidInput = errors.New("invalid input")

type Machine struct {
	ID          int64
	Serial      string
	ProductType string
	CustomerID  int64
}

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// FindOrCreate looks a machine up by serial alone; on a miss it is created
// under the given customer.
func (s *Service) FindOrCreate(ctx context.Context, m Machine, actorID string) (int64, error) {
	serial := strings.TrimSpace(m.Serial)
	if serial == "" {
		return 0, fmt.Errorf("%w: machine serial is required", ErrInvalidInput)
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM machines WHERE serial = $1`,
		serial,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup machine %s: %w", serial, err)
	}

	err = s.db.QueryRowContext(ctx,
		`INSERT INTO machines (serial, product_type, customer_id, created_by)
		 VALUES ($1, $2, NULLIF($3, 0), $4) RETURNING id`,
		serial, strings.TrimSpace(m.ProductType), m.CustomerID, actorID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create machine %s: %w", serial, err)
	}
	return id, nil
}
