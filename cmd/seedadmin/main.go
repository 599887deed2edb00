// Command seedadmin applies pending migrations and creates the default
// admin account the import tools attribute their writes to. Safe to run
// repeatedly; an existing account is left untouched.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fieldserve/server/internal/config"
	"github.com/fieldserve/server/internal/db"
	"github.com/fieldserve/server/internal/migrate"
	"github.com/fieldserve/server/internal/users"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := &cobra.Command{
		Use:           "seedadmin",
		Short:         "Apply migrations and seed the default admin account",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}

	if err := cmd.ExecuteContext(ctx); err != nil {
		log.Printf("seedadmin: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := migrate.Run(ctx, database, cfg.MigrationsDir); err != nil {
		return err
	}

	if err := users.NewService(database).SeedDefaultAdmin(ctx); err != nil {
		return err
	}
	log.Printf("default admin %q is ready; change its password before production use", users.DefaultAdminEmail)
	return nil
}
