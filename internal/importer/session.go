// Package importer drives the spreadsheet import pipelines: header
// resolution, row grouping, entity resolution, persistence and image
// binding, with per-record failure containment and run statistics.
package importer

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/fieldserve/server/internal/customers"
	internaldb "github.com/fieldserve/server/internal/db"
	"github.com/fieldserve/server/internal/machines"
	"github.com/fieldserve/server/internal/offers"
	"github.com/fieldserve/server/internal/parts"
	"github.com/fieldserve/server/internal/users"
)

// The stores the pipelines write through. Declared here so tests can run the
// orchestrator against fakes; the real implementations are the service
// packages.
type customerStore interface {
	FindOrCreate(ctx context.Context, c customers.Customer, actorID string) (int64, error)
	FindOrCreateContact(ctx context.Context, c customers.Contact, actorID string) (int64, error)
}

type machineStore interface {
	FindOrCreate(ctx context.Context, m machines.Machine, actorID string) (int64, error)
}

type offerStore interface {
	ExistsByReference(ctx context.Context, referenceNo string) (bool, error)
	Create(ctx context.Context, o offers.Offer, actorID string) (int64, error)
	LinkMachine(ctx context.Context, offerID, machineID int64) error
}

type partStore interface {
	ExistsByPartNo(ctx context.Context, partNo string) (bool, error)
	Create(ctx context.Context, p parts.SparePart, actorID string) (int64, error)
	AttachPhoto(ctx context.Context, id int64, dataURI string) error
}

// Options tunes one session; zero values fall back to the defaults the CLIs
// use.
type Options struct {
	RatePerSec       int
	RateBurst        int
	HeaderScanWindow int
}

// Session executes import runs strictly sequentially. This is deliberate,
// not a limitation: the find-or-create sequence (lookup, then conditional
// create) is not atomic at the store level, so overlapping records that
// reference the same natural key would race to create duplicate entities.
// The unique constraints remain the backstop; sequential execution keeps
// them from ever firing in the common case.
type Session struct {
	db         *sql.DB
	actor      users.User
	customers  customerStore
	machines   machineStore
	offers     offerStore
	parts      partStore
	limiter    *rate.Limiter
	scanWindow int

	// Per-run natural-key caches. A convenience only: the store's unique
	// constraints are the source of truth for uniqueness.
	customerCache map[string]int64
	machineCache  map[string]int64
}

// NewSession builds a session over a live database connection.
func NewSession(database *sql.DB, actor users.User, opts Options) *Session {
	s := &Session{
		db:        database,
		actor:     actor,
		customers: customers.NewService(database),
		machines:  machines.NewService(database),
		offers:    offers.NewService(database),
		parts:     parts.NewService(database),
	}
	s.applyOptions(opts)
	return s
}

func (s *Session) applyOptions(opts Options) {
	perSec := opts.RatePerSec
	if perSec <= 0 {
		perSec = 50
	}
	burst := opts.RateBurst
	if burst <= 0 {
		burst = perSec
	}
	s.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	s.scanWindow = opts.HeaderScanWindow
	if s.scanWindow <= 0 {
		s.scanWindow = 10
	}
}

func (s *Session) resetCaches() {
	s.customerCache = make(map[string]int64)
	s.machineCache = make(map[string]int64)
}

// throttle paces the write loop: bursts of up to the configured batch size,
// then brief pauses, so a long import never saturates the store.
func (s *Session) throttle(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}

// recordRun appends the finished run to the import_runs history. History is
// best-effort; a failure to record never fails the run itself.
func (s *Session) recordRun(ctx context.Context, kind, sourceFile string, started time.Time, stats *Stats) {
	if s.db == nil {
		return
	}
	err := internaldb.RecordImportRun(context.WithoutCancel(ctx), s.db, internaldb.RunRecord{
		ID:             uuid.New().String(),
		Kind:           kind,
		SourceFile:     sourceFile,
		ActorID:        s.actor.ID,
		StartedAt:      started,
		FinishedAt:     time.Now(),
		Created:        stats.Created,
		Duplicates:     stats.Duplicates,
		Errors:         stats.Errors,
		Skipped:        stats.Skipped,
		ImagesAttached: stats.ImagesAttached,
	})
	if err != nil {
		log.Printf("record %s import run: %v", kind, err)
	}
}
