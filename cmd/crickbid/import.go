package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nbbluestudios/crickbid/internal/database"
	"github.com/nbbluestudios/crickbid/internal/importer"
	"github.com/nbbluestudios/crickbid/internal/players"
)

var importCmd = &cobra.Command{
	Use:   "import <players.csv>",
	Short: "Import the player CSV into the staging and curated pools",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	applyLogLevel()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	ctx := context.Background()
	db, err := database.New(ctx, database.ConfigFromEnv())
	if err != nil {
		return err
	}
	defer db.Close()

	imp := importer.New(players.NewRepository(db.Bun))
	res, err := imp.Run(ctx, f)
	if err != nil {
		return err
	}

	log.Info().
		Int("raw", res.RawCount).
		Int("curated", res.CuratedCount).
		Int("skipped", res.Skipped).
		Msg("import finished")
	return nil
}
