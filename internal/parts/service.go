// Package parts maintains the spare-part catalog. Part numbers are strictly
// unique: an existing part number is never updated in place by an import; the
// row is classified as a duplicate instead.
package parts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type SparePart struct {
	ID                int64
	PartNo            string
	HSNCode           string
	Name              string
	UseApplication    string
	ModelSpec         string
	ManufacturingUnit string
	TechSheet         string
}

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// ExistsByPartNo reports whether the catalog already holds the part number.
func (s *Service) ExistsByPartNo(ctx context.Context, partNo string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM spare_parts WHERE part_no = $1)`,
		strings.TrimSpace(partNo),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check part %s: %w", partNo, err)
	}
	return exists, nil
}

// Create inserts a new catalog entry attributed to the importing actor.
func (s *Service) Create(ctx context.Context, p SparePart, actorID string) (int64, error) {
	partNo := strings.TrimSpace(p.PartNo)
	name := strings.TrimSpace(p.Name)
	if partNo == "" || name == "" {
		return 0, fmt.Errorf("%w: part number and product name are required", ErrInvalidInput)
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO spare_parts
		   (part_no, hsn_code, name, use_application, model_spec, manufacturing_unit, tech_sheet, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		partNo,
		strings.TrimSpace(p.HSNCode),
		name,
		strings.TrimSpace(p.UseApplication),
		strings.TrimSpace(p.ModelSpec),
		strings.TrimSpace(p.ManufacturingUnit),
		strings.TrimSpace(p.TechSheet),
		actorID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create part %s: %w", partNo, err)
	}
	return id, nil
}

// AttachPhoto stores an inline image on an already-created part. Called after
// creation so the attachment always targets a real identifier.
func (s *Service) AttachPhoto(ctx context.Context, id int64, dataURI string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE spare_parts SET photo = $1 WHERE id = $2`,
		dataURI, id,
	)
	if err != nil {
		return fmt.Errorf("attach photo to part %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
