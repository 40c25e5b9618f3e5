package auction

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nbbluestudios/crickbid/internal/models"
)

func fullRoster() map[models.PlayerRole]int {
	return map[models.PlayerRole]int{
		models.RoleBatsman:      3,
		models.RoleBowler:       3,
		models.RoleAllRounder:   2,
		models.RoleWicketKeeper: 1,
	}
}

func TestEvaluateFreezeCompleteMinimumsNeverFrozen(t *testing.T) {
	verdict := evaluateFreeze(0, fullRoster(), nil)
	require.False(t, verdict.Frozen)
	require.Empty(t, verdict.Shortfalls)
	require.Zero(t, verdict.RequiredBudget)
}

func TestEvaluateFreezeBudgetBelowCheapestCompletion(t *testing.T) {
	counts := fullRoster()
	counts[models.RoleWicketKeeper] = 0

	prices := map[models.PlayerRole][]int64{
		models.RoleWicketKeeper: {40, 60},
	}

	verdict := evaluateFreeze(39, counts, prices)
	require.True(t, verdict.Frozen)
	require.Equal(t, int64(40), verdict.RequiredBudget)
	require.Equal(t, map[models.PlayerRole]int{models.RoleWicketKeeper: 1}, verdict.Shortfalls)

	verdict = evaluateFreeze(40, counts, prices)
	require.False(t, verdict.Frozen)
}

func TestEvaluateFreezeSumsCheapestPerShortRole(t *testing.T) {
	counts := map[models.PlayerRole]int{
		models.RoleBatsman:      1,
		models.RoleBowler:       3,
		models.RoleAllRounder:   2,
		models.RoleWicketKeeper: 1,
	}
	prices := map[models.PlayerRole][]int64{
		models.RoleBatsman: {10, 20, 30},
	}

	// Two batsmen short: cheapest two are 10 and 20.
	verdict := evaluateFreeze(29, counts, prices)
	require.True(t, verdict.Frozen)
	require.Equal(t, int64(30), verdict.RequiredBudget)

	verdict = evaluateFreeze(30, counts, prices)
	require.False(t, verdict.Frozen)
}

func TestEvaluateFreezeNoPlayersLeftForShortRole(t *testing.T) {
	counts := fullRoster()
	counts[models.RoleBowler] = 2

	verdict := evaluateFreeze(1000, counts, map[models.PlayerRole][]int64{})
	require.True(t, verdict.Frozen)
	require.Contains(t, verdict.Reason, "Bowler")
}

func TestEvaluateFreezeMultipleShortRoles(t *testing.T) {
	counts := map[models.PlayerRole]int{}
	prices := map[models.PlayerRole][]int64{
		models.RoleBatsman:      {10, 10, 10},
		models.RoleBowler:       {15, 15, 15},
		models.RoleAllRounder:   {20, 20},
		models.RoleWicketKeeper: {25},
	}

	// 3*10 + 3*15 + 2*20 + 25 = 140.
	verdict := evaluateFreeze(139, counts, prices)
	require.True(t, verdict.Frozen)
	require.Equal(t, int64(140), verdict.RequiredBudget)

	verdict = evaluateFreeze(140, counts, prices)
	require.False(t, verdict.Frozen)
	require.Len(t, verdict.Shortfalls, 4)
}
