// Command partsimport loads a spare-part catalog workbook into the database,
// including product photos embedded in the workbook itself.
//
//	partsimport [parts.xlsx] [--images dir]
//
// When the workbook carries no embedded images, --images names a folder
// whose files are paired with the new parts in order.
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

	var imagesDir string

	cmd := &cobra.Command{
		Use:           "partsimport [parts.xlsx]",
		Short:         "Import the spare-part catalog from a spreadsheet",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return run(cmd.Context(), path, imagesDir)
		},
	}
	cmd.Flags().StringVar(&imagesDir, "images", "", "folder of product images paired with new parts by position")

	if err := cmd.ExecuteContext(ctx); err != nil {
		log.Printf("partsimport: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path, imagesDir string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if path == "" {
		path = cfg.DefaultPartsFile
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

	log.Printf("importing spare parts from %s as %s", path, actor.Email)
	stats, err := session.ImportParts(ctx, path, imagesDir)
	importer.PrintSummary("Spare part import", stats)
	return err
}
