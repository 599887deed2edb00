// Package offers persists sales offers and their machine links. The offer
// reference number is the business key used for duplicate detection across
// repeated import runs.
package offers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidInput = errors.New("invalid input")

type Offer struct {
	ID              int64
	ReferenceNo     string
	ReferenceDate   string // ISO date or ""
	RegisteredOn    string // ISO date or ""
	OfferValue      float64
	OfferMonth      string
	POExpectedMonth string
	Probability     string
	PONumber        string
	PODate          string // ISO date or ""
	POValue         float64
	POReceivedMonth string
	IsLead          bool
	OpenFunnel      bool
	Remarks         string
	PrimarySerial   string
	CustomerID      int64
	ContactID       int64 // 0 when the row carried no usable contact
}

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// ExistsByReference reports whether an offer with the reference number is
// already persisted.
func (s *Service) ExistsByReference(ctx context.Context, referenceNo string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM offers WHERE reference_no = $1)`,
		strings.TrimSpace(referenceNo),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check offer %s: %w", referenceNo, err)
	}
	return exists, nil
}

// Create persists one offer attributed to the importing actor. Entity
// references (customer, contact) must already be resolved so the foreign
// keys are valid at creation time.
func (s *Service) Create(ctx context.Context, o Offer, actorID string) (int64, error) {
	ref := strings.TrimSpace(o.ReferenceNo)
	if ref == "" {
		return 0, fmt.Errorf("%w: offer reference number is required", ErrInvalidInput)
	}
	if o.CustomerID == 0 {
		return 0, fmt.Errorf("%w: offer %s has no resolved customer", ErrInvalidInput, ref)
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO offers (
		   reference_no, reference_date, registered_on,
		   offer_value, offer_month, po_expected_month, probability,
		   po_number, po_date, po_value, po_received_month,
		   is_lead, open_funnel, remarks, primary_serial,
		   customer_id, contact_id, created_by
		 ) VALUES (
		   $1, NULLIF($2, '')::date, NULLIF($3, '')::date,
		   $4, $5, $6, $7,
		   $8, NULLIF($9, '')::date, $10, $11,
		   $12, $13, $14, $15,
		   $16, NULLIF($17, 0), $18
		 ) RETURNING id`,
		ref, o.ReferenceDate, o.RegisteredOn,
		o.OfferValue, o.OfferMonth, o.POExpectedMonth, o.Probability,
		o.PONumber, o.PODate, o.POValue, o.POReceivedMonth,
		o.IsLead, o.OpenFunnel, o.Remarks, o.PrimarySerial,
		o.CustomerID, o.ContactID, actorID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create offer %s: %w", ref, err)
	}
	return id, nil
}

// LinkMachine records the offer-machine association. The upsert is keyed on
// the pair, so re-running an import never duplicates a link.
func (s *Service) LinkMachine(ctx context.Context, offerID, machineID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO offer_machines (offer_id, machine_id)
		 VALUES ($1, $2)
		 ON CONFLICT (offer_id, machine_id) DO NOTHING`,
		offerID, machineID,
	)
	if err != nil {
		return fmt.Errorf("link offer %d to machine %d: %w", offerID, machineID, err)
	}
	return nil
}
