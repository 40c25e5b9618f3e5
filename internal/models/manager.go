package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ManagerRole distinguishes the auctioneer from bidding team managers.
type ManagerRole string

const (
	ManagerRoleAdmin   ManagerRole = "admin"
	ManagerRoleManager ManagerRole = "manager"
)

// Manager is a participant account. Admins drive the auction; managers bid.
type Manager struct {
	bun.BaseModel `bun:"table:managers,alias:m"`

	ID             int64       `bun:"manager_id,pk,autoincrement" json:"manager_id"`
	Email          string      `bun:"email,notnull,unique" json:"email"`
	Name           string      `bun:"manager_name,notnull" json:"manager_name"`
	TeamName       string      `bun:"team_name,notnull" json:"team_name"`
	Role           ManagerRole `bun:"role,notnull,default:'manager'" json:"role"`
	PasswordHash   string      `bun:"password_hash,notnull" json:"-"`
	StartingBudget int64       `bun:"starting_budget,notnull" json:"starting_budget"`
	CurrentBudget  int64       `bun:"current_budget,notnull" json:"current_budget"`
	IsReady        bool        `bun:"is_ready,notnull,default:false" json:"is_ready"`
	CreatedAt      time.Time   `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// IsAdmin reports whether the manager may perform auctioneer operations.
func (m *Manager) IsAdmin() bool {
	return m.Role == ManagerRoleAdmin
}
