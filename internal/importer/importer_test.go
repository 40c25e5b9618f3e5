package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nbbluestudios/crickbid/internal/models"
)

const csvHeader = "cricketer_id,cricket_team,player_name,bowling_style,batting_style,role,class_band,base_price,country,ipl_team,ipl_type,player_status"

func TestParseCuratesActiveTopBands(t *testing.T) {
	input := strings.Join([]string{
		csvHeader,
		"c1,India,V Sharma,Right-arm fast,Right-hand,Batsman,Platinum,150,India,MI,Capped,Active",
		"c2,Australia,J Reed,Left-arm orthodox,Left-hand,Bowler,Gold,80,Australia,CSK,Capped,Active",
		"c3,England,T Cole,,Right-hand,All-rounder,Copper,20,England,,Uncapped,Active",
		"c4,India,R Nair,,Right-hand,Wicket Keeper,Silver,60,India,RCB,Capped,Retired",
	}, "\n")

	raw, curated, skipped, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	// Every row lands in staging.
	require.Len(t, raw, 4)
	require.Equal(t, "V Sharma", raw[0].PlayerName)
	require.Equal(t, int64(150), raw[0].BasePrice)

	// Copper band and retired players stay out of the curated pool.
	require.Len(t, curated, 2)
	require.Equal(t, models.ClassPlatinum, curated[0].Class)
	require.Equal(t, models.RoleBowler, curated[1].Role)
	require.Zero(t, skipped)
}

func TestParseSkipsUnknownRoles(t *testing.T) {
	input := strings.Join([]string{
		csvHeader,
		"c1,India,A Guard,,Right-hand,Coach,Platinum,100,India,,Capped,Active",
	}, "\n")

	raw, curated, skipped, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, raw, 1)
	require.Empty(t, curated)
	require.Equal(t, 1, skipped)
}

func TestParseToleratesBOM(t *testing.T) {
	input := "\uFEFF" + csvHeader + "\n" +
		"c1,India,V Sharma,,Right-hand,Batsman,Gold,100,India,,Capped,Active"

	raw, curated, _, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, raw, 1)
	require.Len(t, curated, 1)
}

func TestParseRejectsBadHeader(t *testing.T) {
	input := "name,role\nV Sharma,Batsman"
	_, _, _, err := Parse(strings.NewReader(input))
	require.Error(t, err)
}

func TestParseRejectsBadBasePrice(t *testing.T) {
	input := csvHeader + "\n" +
		"c1,India,V Sharma,,Right-hand,Batsman,Gold,not-a-number,India,,Capped,Active"
	_, _, _, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	require.Contains(t, err.Error(), "base_price")
}

func TestParseRejectsMissingName(t *testing.T) {
	input := csvHeader + "\n" +
		"c1,India,,,Right-hand,Batsman,Gold,100,India,,Capped,Active"
	_, _, _, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	require.Contains(t, err.Error(), "player_name")
}
