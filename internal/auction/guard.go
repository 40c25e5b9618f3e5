package auction

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/nbbluestudios/crickbid/internal/models"
	"github.com/nbbluestudios/crickbid/internal/players"
)

// FreezeVerdict reports whether a manager's bidding is frozen to
// protect their remaining role minimums, with the numbers behind it.
type FreezeVerdict struct {
	Frozen bool `json:"frozen"`
	// Reason is a human-readable explanation when frozen.
	Reason string `json:"reason,omitempty"`
	// RequiredBudget is the cheapest possible cost of completing every
	// short role from the remaining pool.
	RequiredBudget int64 `json:"required_budget"`
	// Shortfalls maps each unfilled role to how many more are required.
	Shortfalls map[models.PlayerRole]int `json:"shortfalls,omitempty"`
}

// evaluateFreeze decides freezing from pure inputs: the manager's
// budget, their roster role counts, and the cheapest available base
// prices per role (ascending). A manager is frozen when a short role
// has no players left, or when their budget cannot cover the cheapest
// completion of every shortfall.
func evaluateFreeze(budget int64, counts map[models.PlayerRole]int, pricesByRole map[models.PlayerRole][]int64) FreezeVerdict {
	verdict := FreezeVerdict{Shortfalls: make(map[models.PlayerRole]int)}

	for _, role := range models.RoleOrder {
		min := models.RoleMinimums[role]
		if have := counts[role]; have < min {
			verdict.Shortfalls[role] = min - have
		}
	}
	if len(verdict.Shortfalls) == 0 {
		verdict.Shortfalls = nil
		return verdict
	}

	for _, role := range models.RoleOrder {
		need, short := verdict.Shortfalls[role]
		if !short {
			continue
		}
		prices := pricesByRole[role]
		if len(prices) == 0 {
			verdict.Frozen = true
			verdict.Reason = fmt.Sprintf("no %s players left to complete the minimum", role)
			return verdict
		}
		if len(prices) > need {
			prices = prices[:need]
		}
		for _, p := range prices {
			verdict.RequiredBudget += p
		}
	}

	if budget < verdict.RequiredBudget {
		verdict.Frozen = true
		verdict.Reason = fmt.Sprintf("budget %d cannot cover the %d needed for required roles", budget, verdict.RequiredBudget)
	}
	return verdict
}

// evaluateFreezeTx gathers the guard inputs inside the caller's
// transaction so the bid decision and the guard see the same state.
func evaluateFreezeTx(ctx context.Context, tx bun.IDB, a *models.Auction, manager *models.Manager, rosterSize int) (FreezeVerdict, error) {
	// A full roster cannot bid at all; skip the queries.
	if rosterSize >= models.MaxRosterSize {
		return FreezeVerdict{}, nil
	}

	counts, err := RoleCounts(ctx, tx, a.ID, manager.ID)
	if err != nil {
		return FreezeVerdict{}, err
	}

	pricesByRole := make(map[models.PlayerRole][]int64)
	for _, role := range models.RoleOrder {
		min := models.RoleMinimums[role]
		if counts[role] >= min {
			continue
		}
		need := min - counts[role]
		prices, err := players.CheapestAvailableByRole(ctx, tx, a.ID, role, need)
		if err != nil {
			return FreezeVerdict{}, err
		}
		pricesByRole[role] = prices
	}

	return evaluateFreeze(manager.CurrentBudget, counts, pricesByRole), nil
}

// Freeze evaluates the guard outside a bid, for the client's badge.
func (s *Service) Freeze(ctx context.Context, auctionID, managerID int64) (FreezeVerdict, error) {
	a, err := s.repo.Get(ctx, auctionID)
	if err != nil {
		return FreezeVerdict{}, err
	}
	manager, err := s.managers.GetByID(ctx, managerID)
	if err != nil {
		return FreezeVerdict{}, err
	}
	rosterSize, err := RosterCount(ctx, s.repo.DB(), auctionID, managerID)
	if err != nil {
		return FreezeVerdict{}, err
	}
	return evaluateFreezeTx(ctx, s.repo.DB(), a, manager, rosterSize)
}
