package importer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fieldserve/server/internal/customers"
	"github.com/fieldserve/server/internal/machines"
	"github.com/fieldserve/server/internal/offers"
	"github.com/fieldserve/server/internal/sheet"
)

// ImportOffers loads every sheet of the workbook at path. Sheets without a
// recognizable header row are skipped with a notice; data rows fail
// individually without aborting the run. The returned stats are valid even
// when err is non-nil.
func (s *Session) ImportOffers(ctx context.Context, path string) (Stats, error) {
	started := time.Now()
	s.resetCaches()

	var stats Stats
	wb, err := sheet.OpenWorkbook(path)
	if err != nil {
		return stats, fmt.Errorf("open workbook: %w", err)
	}

	defer s.recordRun(ctx, "offers", path, started, &stats)

	for _, sh := range wb.Sheets {
		sheetStats, err := s.importOfferSheet(ctx, sh)
		stats.Add(sheetStats)
		if err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func (s *Session) importOfferSheet(ctx context.Context, sh sheet.Sheet) (Stats, error) {
	var stats Stats

	header, err := sheet.ResolveHeader(sh.Rows, offerHeaderMarkers, s.scanWindow)
	if err != nil {
		if errors.Is(err, sheet.ErrHeaderNotFound) {
			log.Printf("sheet %q: no offer header row found, skipping sheet", sh.Name)
			return stats, nil
		}
		return stats, fmt.Errorf("sheet %q: %w", sh.Name, err)
	}
	cols := resolveOfferColumns(header)

	records := sheet.GroupRecords(sh.Rows, header.Index, sheet.GroupOptions{
		StartColumn:        cols.regDate,
		ContinuationColumn: cols.serial,
		SequenceColumn:     cols.seq,
	})
	stats.TotalRows = len(records)

	for _, rec := range records {
		if err := s.throttle(ctx); err != nil {
			// Cancelled mid-run. Stop here; the deferred run record and
			// the caller's summary still report what was done.
			return stats, err
		}

		ref := rec.Field(cols.reference)
		if ref == "" {
			stats.Skipped++
			log.Printf("sheet %q row %d: no offer reference, skipping", sh.Name, rec.SheetRow+1)
			continue
		}

		exists, err := s.offers.ExistsByReference(ctx, ref)
		if err != nil {
			stats.Errors++
			log.Printf("offer %s: %v", ref, err)
			continue
		}
		if exists {
			stats.Duplicates++
			continue
		}

		if err := s.importOfferRecord(ctx, rec, cols, ref); err != nil {
			stats.Errors++
			log.Printf("offer %s: %v", ref, err)
			continue
		}
		stats.Created++
	}
	return stats, nil
}

// importOfferRecord resolves the entities one record references and persists
// the offer with its machine links. Any error leaves previously resolved
// entities in place; they are natural-keyed, so a retry converges.
func (s *Session) importOfferRecord(ctx context.Context, rec sheet.Record, cols offerColumns, ref string) error {
	company := rec.Field(cols.company)
	if company == "" {
		return errors.New("no company name")
	}
	zone := rec.Field(cols.location)

	customerID, err := s.resolveCustomer(ctx, customers.Customer{
		Name:       company,
		Zone:       zone,
		Department: rec.Field(cols.department),
	})
	if err != nil {
		return fmt.Errorf("customer %q: %w", company, err)
	}

	var contactID int64
	if phone := rec.Field(cols.phone); phone != "" {
		contactID, err = s.customers.FindOrCreateContact(ctx, customers.Contact{
			CustomerID: customerID,
			Name:       rec.Field(cols.contact),
			Phone:      phone,
			Email:      rec.Field(cols.email),
		}, s.actor.ID)
		if err != nil {
			return fmt.Errorf("contact %q: %w", phone, err)
		}
	}

	// Continuations carry every serial attached to the record, the primary
	// row's own serial first.
	machineIDs := make([]int64, 0, len(rec.Continuations))
	primarySerial := ""
	for _, serial := range rec.Continuations {
		if primarySerial == "" {
			primarySerial = serial
		}
		machineID, err := s.resolveMachine(ctx, machines.Machine{
			Serial:      serial,
			ProductType: rec.Field(cols.productType),
			CustomerID:  customerID,
		})
		if err != nil {
			return fmt.Errorf("machine %q: %w", serial, err)
		}
		machineIDs = append(machineIDs, machineID)
	}

	offerID, err := s.offers.Create(ctx, offers.Offer{
		ReferenceNo:     ref,
		ReferenceDate:   sheet.NormalizeDate(rec.Field(cols.offerDate)),
		RegisteredOn:    sheet.NormalizeDate(rec.Field(cols.regDate)),
		OfferValue:      sheet.ParseAmount(rec.Field(cols.offerValue)),
		OfferMonth:      rec.Field(cols.offerMonth),
		POExpectedMonth: rec.Field(cols.poExpected),
		Probability:     rec.Field(cols.probability),
		PONumber:        rec.Field(cols.poNumber),
		PODate:          sheet.NormalizeDate(rec.Field(cols.poDate)),
		POValue:         sheet.ParseAmount(rec.Field(cols.poValue)),
		POReceivedMonth: rec.Field(cols.poReceived),
		IsLead:          sheet.ParseFlag(rec.Field(cols.lead)),
		OpenFunnel:      sheet.ParseFlag(rec.Field(cols.openFunnel)),
		Remarks:         rec.Field(cols.remarks),
		PrimarySerial:   primarySerial,
		CustomerID:      customerID,
		ContactID:       contactID,
	}, s.actor.ID)
	if err != nil {
		return err
	}

	for _, machineID := range machineIDs {
		if err := s.offers.LinkMachine(ctx, offerID, machineID); err != nil {
			return fmt.Errorf("link machine: %w", err)
		}
	}
	return nil
}

func (s *Session) resolveCustomer(ctx context.Context, c customers.Customer) (int64, error) {
	key := strings.ToLower(c.Name) + "\x00" + c.Zone
	if id, ok := s.customerCache[key]; ok {
		return id, nil
	}
	id, err := s.customers.FindOrCreate(ctx, c, s.actor.ID)
	if err != nil {
		return 0, err
	}
	s.customerCache[key] = id
	return id, nil
}

func (s *Session) resolveMachine(ctx context.Context, m machines.Machine) (int64, error) {
	key := strings.ToLower(m.Serial)
	if id, ok := s.machineCache[key]; ok {
		return id, nil
	}
	id, err := s.machines.FindOrCreate(ctx, m, s.actor.ID)
	if err != nil {
		return 0, err
	}
	s.machineCache[key] = id
	return id, nil
}
