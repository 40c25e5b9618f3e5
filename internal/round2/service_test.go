package round2

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nbbluestudios/crickbid/internal/auction"
	"github.com/nbbluestudios/crickbid/internal/models"
)

// mockStore satisfies Store with overridable behaviors per test.
type mockStore struct {
	getAuction        func(ctx context.Context, auctionID int64) (*models.Auction, error)
	availablePlayers  func(ctx context.Context, auctionID int64) ([]models.Player, error)
	managerSelections func(ctx context.Context, auctionID, managerID int64) ([]models.Round2Selection, error)
	auctionSelections func(ctx context.Context, auctionID int64) ([]models.Round2Selection, error)
	countSelections   func(ctx context.Context, auctionID, managerID int64) (int, error)
	isUnsold          func(ctx context.Context, auctionID, playerID int64) (bool, error)
	insertSelection   func(ctx context.Context, sel *models.Round2Selection) error
	deleteSelection   func(ctx context.Context, auctionID, managerID, playerID int64) (int64, error)
}

func (m *mockStore) GetAuction(ctx context.Context, auctionID int64) (*models.Auction, error) {
	return m.getAuction(ctx, auctionID)
}

func (m *mockStore) AvailablePlayers(ctx context.Context, auctionID int64) ([]models.Player, error) {
	return m.availablePlayers(ctx, auctionID)
}

func (m *mockStore) ManagerSelections(ctx context.Context, auctionID, managerID int64) ([]models.Round2Selection, error) {
	return m.managerSelections(ctx, auctionID, managerID)
}

func (m *mockStore) AuctionSelections(ctx context.Context, auctionID int64) ([]models.Round2Selection, error) {
	return m.auctionSelections(ctx, auctionID)
}

func (m *mockStore) CountSelections(ctx context.Context, auctionID, managerID int64) (int, error) {
	return m.countSelections(ctx, auctionID, managerID)
}

func (m *mockStore) IsUnsold(ctx context.Context, auctionID, playerID int64) (bool, error) {
	return m.isUnsold(ctx, auctionID, playerID)
}

func (m *mockStore) InsertSelection(ctx context.Context, sel *models.Round2Selection) error {
	return m.insertSelection(ctx, sel)
}

func (m *mockStore) DeleteSelection(ctx context.Context, auctionID, managerID, playerID int64) (int64, error) {
	return m.deleteSelection(ctx, auctionID, managerID, playerID)
}

// openSelectionStore is a happy-path mock: selection window open, the
// player unsold, and room under the cap. Tests override what they need.
func openSelectionStore() *mockStore {
	return &mockStore{
		getAuction: func(ctx context.Context, auctionID int64) (*models.Auction, error) {
			return &models.Auction{
				ID:                  auctionID,
				Status:              models.AuctionStatusActive,
				Round2SelectionOpen: true,
			}, nil
		},
		countSelections: func(ctx context.Context, auctionID, managerID int64) (int, error) {
			return 0, nil
		},
		isUnsold: func(ctx context.Context, auctionID, playerID int64) (bool, error) {
			return true, nil
		},
		insertSelection: func(ctx context.Context, sel *models.Round2Selection) error {
			return nil
		},
	}
}

func TestSelectAddsNomination(t *testing.T) {
	store := openSelectionStore()
	var inserted *models.Round2Selection
	store.insertSelection = func(ctx context.Context, sel *models.Round2Selection) error {
		inserted = sel
		return nil
	}

	svc := NewServiceWithStore(store)
	require.NoError(t, svc.Select(context.Background(), 1, 2, 3))
	require.NotNil(t, inserted)
	require.Equal(t, int64(1), inserted.AuctionID)
	require.Equal(t, int64(2), inserted.ManagerID)
	require.Equal(t, int64(3), inserted.PlayerID)
}

func TestSelectRejectsSixthNomination(t *testing.T) {
	store := openSelectionStore()
	store.countSelections = func(ctx context.Context, auctionID, managerID int64) (int, error) {
		return models.MaxRound2Selections, nil
	}
	store.insertSelection = func(ctx context.Context, sel *models.Round2Selection) error {
		t.Fatal("insert must not run past the cap")
		return nil
	}

	svc := NewServiceWithStore(store)
	err := svc.Select(context.Background(), 1, 2, 3)
	require.ErrorIs(t, err, auction.ErrSelectionLimit)
}

func TestSelectRejectsClosedWindow(t *testing.T) {
	store := openSelectionStore()
	store.getAuction = func(ctx context.Context, auctionID int64) (*models.Auction, error) {
		return &models.Auction{ID: auctionID, Status: models.AuctionStatusActive}, nil
	}

	svc := NewServiceWithStore(store)
	err := svc.Select(context.Background(), 1, 2, 3)
	require.ErrorIs(t, err, auction.ErrSelectionClosed)
}

func TestSelectRejectsPlayerOutsideUnsoldPool(t *testing.T) {
	store := openSelectionStore()
	store.isUnsold = func(ctx context.Context, auctionID, playerID int64) (bool, error) {
		return false, nil
	}

	svc := NewServiceWithStore(store)
	err := svc.Select(context.Background(), 1, 2, 3)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not in the unsold pool")
}

func TestSelectSurfacesDuplicateAsAlreadySelected(t *testing.T) {
	store := openSelectionStore()
	store.insertSelection = func(ctx context.Context, sel *models.Round2Selection) error {
		return auction.ErrAlreadySelected
	}

	svc := NewServiceWithStore(store)
	err := svc.Select(context.Background(), 1, 2, 3)
	require.ErrorIs(t, err, auction.ErrAlreadySelected)
}

func TestDeselectMissingSelection(t *testing.T) {
	store := openSelectionStore()
	store.deleteSelection = func(ctx context.Context, auctionID, managerID, playerID int64) (int64, error) {
		return 0, nil
	}

	svc := NewServiceWithStore(store)
	err := svc.Deselect(context.Background(), 1, 2, 3)
	require.Error(t, err)
	require.Contains(t, err.Error(), "selection not found")
}
