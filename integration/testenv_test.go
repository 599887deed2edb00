package integration_test

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	internaldb "github.com/fieldserve/server/internal/db"
	"github.com/fieldserve/server/internal/importer"
	"github.com/fieldserve/server/internal/migrate"
	"github.com/fieldserve/server/internal/users"
)

type testEnv struct {
	t       *testing.T
	db      *sql.DB
	actor   users.User
	session *importer.Session
}

func setupIntegrationEnv(t *testing.T) *testEnv {
	t.Helper()

	if strings.TrimSpace(os.Getenv("FIELDSERVE_INTEGRATION")) != "1" {
		t.Skip("set FIELDSERVE_INTEGRATION=1 to run integration tests")
	}

	testDSN := strings.TrimSpace(os.Getenv("TEST_DATABASE_URL"))
	if testDSN == "" {
		t.Skip("set TEST_DATABASE_URL to run integration tests")
	}

	dbName, err := databaseNameFromDSN(testDSN)
	if err != nil {
		t.Fatalf("parse TEST_DATABASE_URL: %v", err)
	}
	if !strings.Contains(strings.ToLower(dbName), "test") {
		t.Fatalf("refusing to run integration tests against non-test database name %q", dbName)
	}

	ctx := context.Background()
	db, err := internaldb.Open(ctx, testDSN)
	if err != nil {
		if strings.Contains(err.Error(), "SQLSTATE 3D000") {
			if createErr := ensureDatabaseExists(ctx, testDSN, dbName); createErr != nil {
				t.Fatalf("create test db %s: %v", dbName, createErr)
			}
			db, err = internaldb.Open(ctx, testDSN)
		}
		if err != nil {
			t.Fatalf("open test db: %v", err)
		}
	}

	if err := resetDatabase(ctx, db); err != nil {
		t.Fatalf("reset test db: %v", err)
	}

	if err := migrate.Run(ctx, db, migrationsDir(t)); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	userSvc := users.NewService(db)
	if err := userSvc.SeedDefaultAdmin(ctx); err != nil {
		t.Fatalf("seed default admin: %v", err)
	}
	actor, err := userSvc.DefaultAdmin(ctx, users.DefaultAdminEmail)
	if err != nil {
		t.Fatalf("load default admin: %v", err)
	}

	env := &testEnv{
		t:     t,
		db:    db,
		actor: actor,
		session: importer.NewSession(db, actor, importer.Options{
			RatePerSec: 10000,
			RateBurst:  10000,
		}),
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return env
}

func resetDatabase(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `DROP SCHEMA IF EXISTS public CASCADE; CREATE SCHEMA public;`)
	return err
}

func migrationsDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("resolve caller path")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", "migrations"))
}

func databaseNameFromDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return "", fmt.Errorf("missing database name in dsn")
	}
	return name, nil
}

func ensureDatabaseExists(ctx context.Context, testDSN, dbName string) error {
	adminDSN, err := withDatabaseName(testDSN, "postgres")
	if err != nil {
		return err
	}

	adminDB, err := internaldb.Open(ctx, adminDSN)
	if err != nil {
		return err
	}
	defer adminDB.Close()

	_, err = adminDB.ExecContext(ctx, fmt.Sprintf(`CREATE DATABASE %s`, quoteIdent(dbName)))
	if err != nil && !strings.Contains(strings.ToLower(err.Error()), "already exists") {
		return err
	}
	return nil
}

func withDatabaseName(dsn, dbName string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}
	u.Path = "/" + dbName
	return u.String(), nil
}

func quoteIdent(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

type fixtureSheet struct {
	name string
	rows [][]interface{}
}

// writeWorkbook builds an xlsx fixture with one or more sheets, in the given
// order. Each sheet's rows are written starting at A1.
func (e *testEnv) writeWorkbook(name string, sheets []fixtureSheet) string {
	e.t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				e.t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			e.t.Fatalf("new sheet: %v", err)
		}
		for j, row := range sh.rows {
			cell, err := excelize.CoordinatesToCellName(1, j+1)
			if err != nil {
				e.t.Fatalf("cell name: %v", err)
			}
			if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
				e.t.Fatalf("set row: %v", err)
			}
		}
	}

	path := filepath.Join(e.t.TempDir(), name)
	if err := f.SaveAs(path); err != nil {
		e.t.Fatalf("save workbook: %v", err)
	}
	return path
}

func (e *testEnv) countRows(table string) int {
	e.t.Helper()
	var n int
	if err := e.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		e.t.Fatalf("count %s: %v", table, err)
	}
	return n
}
