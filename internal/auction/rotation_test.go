package auction

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nbbluestudios/crickbid/internal/models"
)

func TestNextCategoryAdvancesRolesWithinClass(t *testing.T) {
	class, role, ok := NextCategory(models.ClassPlatinum, models.RoleBatsman)
	require.True(t, ok)
	require.Equal(t, models.ClassPlatinum, class)
	require.Equal(t, models.RoleBowler, role)
}

func TestNextCategoryWrapsToNextClass(t *testing.T) {
	class, role, ok := NextCategory(models.ClassPlatinum, models.RoleWicketKeeper)
	require.True(t, ok)
	require.Equal(t, models.ClassGold, class)
	require.Equal(t, models.RoleBatsman, role)
}

func TestNextCategoryTerminatesAfterFinalCategory(t *testing.T) {
	_, _, ok := NextCategory(models.ClassStone, models.RoleWicketKeeper)
	require.False(t, ok)
}

func TestNextCategoryWalksAllCategories(t *testing.T) {
	class, role := models.ClassOrder[0], models.RoleOrder[0]
	seen := map[[2]string]bool{{string(class), string(role)}: true}

	steps := 1
	for {
		next, nextRole, ok := NextCategory(class, role)
		if !ok {
			break
		}
		key := [2]string{string(next), string(nextRole)}
		require.False(t, seen[key], "category %v repeated", key)
		seen[key] = true
		class, role = next, nextRole
		steps++
	}

	require.Equal(t, len(models.ClassOrder)*len(models.RoleOrder), steps)
	require.Equal(t, models.ClassStone, class)
	require.Equal(t, models.RoleWicketKeeper, role)
}

func TestNextCategoryUnknownStartsFromTop(t *testing.T) {
	class, role, ok := NextCategory("", "")
	require.True(t, ok)
	require.Equal(t, models.ClassPlatinum, class)
	require.Equal(t, models.RoleBatsman, role)
}
