package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PlayerRole is the on-field role of a player. Roster minimums are
// enforced per role during bidding.
type PlayerRole string

const (
	RoleBatsman      PlayerRole = "Batsman"
	RoleBowler       PlayerRole = "Bowler"
	RoleAllRounder   PlayerRole = "All-rounder"
	RoleWicketKeeper PlayerRole = "Wicket Keeper"
)

// RoleOrder is the order roles are offered within a class during
// round-one rotation.
var RoleOrder = []PlayerRole{
	RoleBatsman,
	RoleBowler,
	RoleAllRounder,
	RoleWicketKeeper,
}

// RoleMinimums are the per-role minimums a manager must be able to
// reach before their remaining budget may be spent freely.
var RoleMinimums = map[PlayerRole]int{
	RoleBatsman:      3,
	RoleBowler:       3,
	RoleAllRounder:   2,
	RoleWicketKeeper: 1,
}

// MinRosterSize is the sum of the role minimums plus the two flex slots.
const MinRosterSize = 11

// MaxRosterSize caps a manager's roster; bids are rejected at the cap.
const MaxRosterSize = 15

// ValidRole reports whether s is a recognised player role.
func ValidRole(s string) bool {
	switch PlayerRole(s) {
	case RoleBatsman, RoleBowler, RoleAllRounder, RoleWicketKeeper:
		return true
	}
	return false
}

// ClassBand is the quality tier of a player. Rotation walks bands from
// strongest to weakest.
type ClassBand string

const (
	ClassPlatinum ClassBand = "Platinum"
	ClassGold     ClassBand = "Gold"
	ClassSilver   ClassBand = "Silver"
	ClassCopper   ClassBand = "Copper"
	ClassBronze   ClassBand = "Bronze"
	ClassStone    ClassBand = "Stone"
)

// ClassOrder is the band traversal order for round-one rotation.
var ClassOrder = []ClassBand{
	ClassPlatinum,
	ClassGold,
	ClassSilver,
	ClassCopper,
	ClassBronze,
	ClassStone,
}

// CuratedClasses are the bands admitted into the curated player pool
// on import.
var CuratedClasses = map[ClassBand]bool{
	ClassPlatinum: true,
	ClassGold:     true,
	ClassSilver:   true,
}

// ValidClass reports whether s is a recognised class band.
func ValidClass(s string) bool {
	switch ClassBand(s) {
	case ClassPlatinum, ClassGold, ClassSilver, ClassCopper, ClassBronze, ClassStone:
		return true
	}
	return false
}

// Player is a curated, auctionable player.
type Player struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID        int64      `bun:"player_id,pk,autoincrement" json:"player_id"`
	Name      string     `bun:"player_name,notnull" json:"player_name"`
	Country   string     `bun:"country" json:"country"`
	Role      PlayerRole `bun:"role,notnull" json:"role"`
	Class     ClassBand  `bun:"class_band,notnull" json:"class_band"`
	BasePrice int64      `bun:"base_price,notnull" json:"base_price"`
	Team      string     `bun:"cricket_team" json:"cricket_team"`
	CreatedAt time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// RawPlayer is one verbatim row of the source CSV, staged before curation.
type RawPlayer struct {
	bun.BaseModel `bun:"table:players_raw,alias:pr"`

	ID           int64  `bun:"id,pk,autoincrement" json:"id"`
	CricketerID  string `bun:"cricketer_id" json:"cricketer_id"`
	CricketTeam  string `bun:"cricket_team" json:"cricket_team"`
	PlayerName   string `bun:"player_name,notnull" json:"player_name"`
	BowlingStyle string `bun:"bowling_style" json:"bowling_style"`
	BattingStyle string `bun:"batting_style" json:"batting_style"`
	Role         string `bun:"role" json:"role"`
	ClassBand    string `bun:"class_band" json:"class_band"`
	BasePrice    int64  `bun:"base_price" json:"base_price"`
	Country      string `bun:"country" json:"country"`
	IPLTeam      string `bun:"ipl_team" json:"ipl_team"`
	IPLType      string `bun:"ipl_type" json:"ipl_type"`
	PlayerStatus string `bun:"player_status" json:"player_status"`
}
