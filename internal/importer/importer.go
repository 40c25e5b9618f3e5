// Package importer loads the player CSV into the raw staging table and
// the curated auction pool.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nbbluestudios/crickbid/internal/models"
	"github.com/nbbluestudios/crickbid/internal/players"
)

// columns is the required CSV header, in order.
var columns = []string{
	"cricketer_id", "cricket_team", "player_name", "bowling_style",
	"batting_style", "role", "class_band", "base_price", "country",
	"ipl_team", "ipl_type", "player_status",
}

// activeStatus marks rows eligible for the curated pool.
const activeStatus = "Active"

// Importer stages and curates player data.
type Importer struct {
	repo *players.Repository
}

func New(repo *players.Repository) *Importer {
	return &Importer{repo: repo}
}

// Result summarises one import run.
type Result struct {
	RawCount     int
	CuratedCount int
	Skipped      int
}

// Run parses the CSV and replaces both player tables. Every row lands
// in the staging table; the curated pool takes only active players in
// the top three class bands.
func (i *Importer) Run(ctx context.Context, r io.Reader) (Result, error) {
	raw, curated, skipped, err := Parse(r)
	if err != nil {
		return Result{}, err
	}
	if err := i.repo.ReplaceAll(ctx, raw, curated); err != nil {
		return Result{}, err
	}

	res := Result{RawCount: len(raw), CuratedCount: len(curated), Skipped: skipped}
	log.Info().
		Int("raw", res.RawCount).
		Int("curated", res.CuratedCount).
		Int("skipped", res.Skipped).
		Msg("player import complete")
	return res, nil
}

// Parse reads the CSV into raw rows and the curated subset. skipped
// counts active rows rejected from curation for an unknown role or
// class.
func Parse(r io.Reader) (raw []models.RawPlayer, curated []models.Player, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, 0, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	if err := checkHeader(header); err != nil {
		return nil, nil, 0, err
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, 0, fmt.Errorf("read csv line %d: %w", line, err)
		}

		basePrice, err := strconv.ParseInt(strings.TrimSpace(record[7]), 10, 64)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("line %d: invalid base_price %q", line, record[7])
		}

		rp := models.RawPlayer{
			CricketerID:  strings.TrimSpace(record[0]),
			CricketTeam:  strings.TrimSpace(record[1]),
			PlayerName:   strings.TrimSpace(record[2]),
			BowlingStyle: strings.TrimSpace(record[3]),
			BattingStyle: strings.TrimSpace(record[4]),
			Role:         strings.TrimSpace(record[5]),
			ClassBand:    strings.TrimSpace(record[6]),
			BasePrice:    basePrice,
			Country:      strings.TrimSpace(record[8]),
			IPLTeam:      strings.TrimSpace(record[9]),
			IPLType:      strings.TrimSpace(record[10]),
			PlayerStatus: strings.TrimSpace(record[11]),
		}
		if rp.PlayerName == "" {
			return nil, nil, 0, fmt.Errorf("line %d: player_name is required", line)
		}
		raw = append(raw, rp)

		if rp.PlayerStatus != activeStatus {
			continue
		}
		if !models.CuratedClasses[models.ClassBand(rp.ClassBand)] {
			continue
		}
		if !models.ValidRole(rp.Role) {
			skipped++
			continue
		}

		curated = append(curated, models.Player{
			Name:      rp.PlayerName,
			Country:   rp.Country,
			Role:      models.PlayerRole(rp.Role),
			Class:     models.ClassBand(rp.ClassBand),
			BasePrice: rp.BasePrice,
			Team:      rp.CricketTeam,
		})
	}
	return raw, curated, skipped, nil
}

func checkHeader(header []string) error {
	if len(header) != len(columns) {
		return fmt.Errorf("expected %d columns, got %d", len(columns), len(header))
	}
	for i, want := range columns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return fmt.Errorf("column %d: expected %q, got %q", i+1, want, header[i])
		}
	}
	return nil
}
