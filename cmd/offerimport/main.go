// Command offerimport loads an offer-register workbook into the database.
//
//	offerimport [offers.xlsx]
//
// Every sheet of the workbook is scanned; rows fail individually and the
// run always ends with a summary table, even when interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fieldserve/server/internal/config"
	"github.com/fieldserve/server/internal/db"
	"github.com/fieldserve/server/internal/importer"
	"github.com/fieldserve/server/internal/migrate"
	"github.com/fieldserve/server/internal/users"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := &cobra.Command{
		Use:           "offerimport [offers.xlsx]",
		Short:         "Import sales offers from a spreadsheet register",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return run(cmd.Context(), path)
		},
	}

	if err := cmd.ExecuteContext(ctx); err != nil {
		log.Printf("offerimport: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if path == "" {
		path = cfg.DefaultOffersFile
	}

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if cfg.AutoMigrate {
		if err := migrate.Run(ctx, database, cfg.MigrationsDir); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	actor, err := users.NewService(database).DefaultAdmin(ctx, cfg.AdminEmail)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return fmt.Errorf("admin account %q does not exist; run seedadmin first", cfg.AdminEmail)
		}
		return err
	}

	session := importer.NewSession(database, actor, importer.Options{
		RatePerSec:       cfg.ImportRatePerSec,
		RateBurst:        cfg.ImportRateBurst,
		HeaderScanWindow: cfg.HeaderScanWindow,
	})

	log.Printf("importing offers from %s as %s", path, actor.Email)
	stats, err := session.ImportOffers(ctx, path)
	importer.PrintSummary("Offer import", stats)
	return err
}
