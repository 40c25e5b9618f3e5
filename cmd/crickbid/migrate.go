package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nbbluestudios/crickbid/db/migrations"
	"github.com/nbbluestudios/crickbid/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	applyLogLevel()

	ctx := context.Background()
	db, err := database.New(ctx, database.ConfigFromEnv())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Up(db.Bun.DB); err != nil {
		return err
	}
	log.Info().Msg("migrations applied")
	return nil
}
