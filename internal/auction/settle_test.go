package auction

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nbbluestudios/crickbid/internal/models"
)

func int64p(v int64) *int64 { return &v }

func TestSettleOutcomeFor(t *testing.T) {
	tests := []struct {
		name    string
		auction models.Auction
		want    settleOutcome
	}{
		{
			name: "standing bid sells the player",
			auction: models.Auction{
				Status:              models.AuctionStatusActive,
				Phase:               models.PhaseBidding,
				CurrentPlayerID:     int64p(7),
				CurrentBidAmount:    45,
				CurrentBidManagerID: int64p(3),
			},
			want: settleSold,
		},
		{
			name: "no bid in round one marks unsold",
			auction: models.Auction{
				Status:          models.AuctionStatusActive,
				Phase:           models.PhaseBidding,
				CurrentPlayerID: int64p(7),
			},
			want: settleUnsold,
		},
		{
			name: "no bid in round two passes without a marker",
			auction: models.Auction{
				Status:          models.AuctionStatusRound2,
				Phase:           models.PhaseBidding,
				CurrentPlayerID: int64p(7),
			},
			want: settlePassed,
		},
		{
			name: "standing bid in round two still sells",
			auction: models.Auction{
				Status:              models.AuctionStatusRound2,
				Phase:               models.PhaseBidding,
				CurrentPlayerID:     int64p(7),
				CurrentBidAmount:    10,
				CurrentBidManagerID: int64p(2),
			},
			want: settleSold,
		},
		{
			name: "settled phase is a no-op so a second fire cannot double-sell",
			auction: models.Auction{
				Status:              models.AuctionStatusActive,
				Phase:               models.PhaseSettled,
				CurrentPlayerID:     int64p(7),
				CurrentBidAmount:    45,
				CurrentBidManagerID: int64p(3),
			},
			want: settleNone,
		},
		{
			name: "no player on the block",
			auction: models.Auction{
				Status: models.AuctionStatusActive,
				Phase:  models.PhaseBidding,
			},
			want: settleNone,
		},
		{
			name: "completed auction never settles",
			auction: models.Auction{
				Status:          models.AuctionStatusCompleted,
				Phase:           models.PhaseBidding,
				CurrentPlayerID: int64p(7),
			},
			want: settleNone,
		},
		{
			name: "draft auction never settles",
			auction: models.Auction{
				Status:          models.AuctionStatusDraft,
				Phase:           models.PhaseBidding,
				CurrentPlayerID: int64p(7),
			},
			want: settleNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, settleOutcomeFor(&tt.auction))
		})
	}
}
