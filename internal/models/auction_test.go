package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextBidAmount(t *testing.T) {
	managerID := int64(7)

	tests := []struct {
		name      string
		status    AuctionStatus
		bidder    *int64
		current   int64
		basePrice int64
		want      int64
	}{
		{name: "no bid opens at base price", bidder: nil, basePrice: 80, want: 80},
		{name: "no bid with zero base opens at floor", bidder: nil, basePrice: 0, want: 5},
		{name: "below 100 steps by 5", bidder: &managerID, current: 80, basePrice: 80, want: 85},
		{name: "95 still steps by 5", bidder: &managerID, current: 95, basePrice: 80, want: 100},
		{name: "at 100 steps by 10", bidder: &managerID, current: 100, basePrice: 80, want: 110},
		{name: "190 steps by 10", bidder: &managerID, current: 190, basePrice: 80, want: 200},
		{name: "at 200 steps by 20", bidder: &managerID, current: 200, basePrice: 80, want: 220},
		{name: "large bid steps by 20", bidder: &managerID, current: 500, basePrice: 80, want: 520},
		{name: "round two opens at floor despite base price", status: AuctionStatusRound2, bidder: nil, basePrice: 80, want: 5},
		{name: "round two zero base opens at floor", status: AuctionStatusRound2, bidder: nil, basePrice: 0, want: 5},
		{name: "round two steps from standing bid", status: AuctionStatusRound2, bidder: &managerID, current: 5, basePrice: 80, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := tt.status
			if status == "" {
				status = AuctionStatusActive
			}
			a := &Auction{
				Status:              status,
				CurrentBidAmount:    tt.current,
				CurrentBidManagerID: tt.bidder,
			}
			require.Equal(t, tt.want, a.NextBidAmount(tt.basePrice))
		})
	}
}

func TestNextBidAmountStrictlyIncreasing(t *testing.T) {
	managerID := int64(1)
	a := &Auction{CurrentBidManagerID: &managerID}

	amount := a.NextBidAmount(20)
	for i := 0; i < 50; i++ {
		a.CurrentBidAmount = amount
		next := a.NextBidAmount(20)
		require.Greater(t, next, amount)
		amount = next
	}
}

func TestAuctionStatusLive(t *testing.T) {
	require.True(t, AuctionStatusActive.Live())
	require.True(t, AuctionStatusRound2.Live())
	require.False(t, AuctionStatusDraft.Live())
	require.False(t, AuctionStatusCompleted.Live())
}

func TestAuctionRound(t *testing.T) {
	a := &Auction{Status: AuctionStatusActive}
	require.Equal(t, 1, a.Round())
	a.Status = AuctionStatusRound2
	require.Equal(t, 2, a.Round())
}

func TestRoleAndClassValidation(t *testing.T) {
	for _, role := range RoleOrder {
		require.True(t, ValidRole(string(role)))
	}
	require.False(t, ValidRole("Coach"))

	for _, class := range ClassOrder {
		require.True(t, ValidClass(string(class)))
	}
	require.False(t, ValidClass("Diamond"))
}

func TestRoleMinimumsSum(t *testing.T) {
	total := 0
	for _, n := range RoleMinimums {
		total += n
	}
	require.Equal(t, 9, total)
	require.Less(t, total, MinRosterSize)
	require.Less(t, MinRosterSize, MaxRosterSize+1)
}
