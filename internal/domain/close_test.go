package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeLot(bidCount int, currentBid int64, leader *uuid.UUID, reserve *int64) *AuctionLot {
	l := &AuctionLot{
		ID:              uuid.New(),
		Status:          LotActive,
		BidCount:        bidCount,
		CurrentBid:      dec(currentBid),
		CurrentBidderID: leader,
	}
	if reserve != nil {
		l.ReservePrice = decp(*reserve)
	}
	return l
}

func TestPlanLotClose_SoldRequiresLeaderAndReserve(t *testing.T) {
	winner := uuid.New()
	reserve := int64(20_000_000)

	tests := []struct {
		name string
		lot  *AuctionLot
		want CloseOutcome
	}{
		{"leader above reserve sells", activeLot(3, 21_500_000, &winner, &reserve), CloseSold},
		{"leader exactly at reserve sells", activeLot(1, 20_000_000, &winner, &reserve), CloseSold},
		{"no reserve configured sells", activeLot(1, 500_000, &winner, nil), CloseSold},
		{"reserve shortfall passes", activeLot(5, 19_900_000, &winner, &reserve), CloseNoSale},
		{"no bids passes", activeLot(0, 10_000_000, nil, nil), CloseNoSale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanLotClose(tt.lot, AuctionLive, 2)
			require.NotNil(t, plan)
			assert.Equal(t, tt.want, plan.Outcome)
			assert.True(t, plan.HammerPrice.Equal(tt.lot.CurrentBid))
			assert.False(t, plan.EndAuction)
			if tt.want == CloseSold {
				assert.Equal(t, winner, plan.WinnerID)
			}
		})
	}
}

// A lot bid to 21,500,000 against a 23,000,000 reserve closes no_sale even
// though it has a leader.
func TestPlanLotClose_ReserveShortfallClosesNoSale(t *testing.T) {
	leader := uuid.New()
	reserve := int64(23_000_000)
	plan := PlanLotClose(activeLot(7, 21_500_000, &leader, &reserve), AuctionLive, 1)

	require.NotNil(t, plan)
	assert.Equal(t, CloseNoSale, plan.Outcome)
}

// Once a close has terminalized the lot, every later close is a no-op: no
// status change, no second order.
func TestPlanLotClose_RepeatCloseIsNoOp(t *testing.T) {
	winner := uuid.New()
	lot := activeLot(2, 5_000_000, &winner, nil)

	first := PlanLotClose(lot, AuctionLive, 0)
	require.NotNil(t, first)
	require.Equal(t, CloseSold, first.Outcome)
	lot.Status = LotSold

	assert.Nil(t, PlanLotClose(lot, AuctionLive, 0))
	assert.Nil(t, PlanLotClose(lot, AuctionEnded, 0))
}

func TestPlanLotClose_PausedAuctionFreezesTheClock(t *testing.T) {
	winner := uuid.New()
	lot := activeLot(2, 5_000_000, &winner, nil)

	assert.Nil(t, PlanLotClose(lot, AuctionPaused, 3))
	// Resume: the same lot closes normally.
	assert.NotNil(t, PlanLotClose(lot, AuctionLive, 3))
}

func TestPlanLotClose_LastLotEndsTheAuction(t *testing.T) {
	winner := uuid.New()

	withPending := PlanLotClose(activeLot(1, 1_000_000, &winner, nil), AuctionLive, 2)
	require.NotNil(t, withPending)
	assert.False(t, withPending.EndAuction)

	last := PlanLotClose(activeLot(1, 1_000_000, &winner, nil), AuctionLive, 0)
	require.NotNil(t, last)
	assert.True(t, last.EndAuction)
}

// Runs a three-lot auction through close-and-rotate against an in-memory
// model, checking the rotation invariants the services rely on: at most one
// lot is active at a time, every close terminalizes exactly one lot, and the
// auction ends with actual_end set when the last lot leaves the block.
func TestPlanLotClose_RotationKeepsOneLotActive(t *testing.T) {
	winner := uuid.New()
	reserve := int64(2_000_000)
	lots := []*AuctionLot{
		activeLot(3, 2_500_000, &winner, &reserve), // sells
		{ID: uuid.New(), Status: LotPending, CurrentBid: dec(1_000_000), ReservePrice: decp(reserve)}, // no bids
		{ID: uuid.New(), Status: LotPending, CurrentBid: dec(1_500_000), BidCount: 1, CurrentBidderID: &winner},
	}
	status := AuctionLive
	var actualEnd *time.Time
	orders := 0

	countActive := func() int {
		n := 0
		for _, l := range lots {
			if l.IsActive() {
				n++
			}
		}
		return n
	}
	pendingAfter := func(i int) int {
		n := 0
		for _, l := range lots[i+1:] {
			if l.Status == LotPending {
				n++
			}
		}
		return n
	}

	for i, lot := range lots {
		require.Equal(t, 1, countActive(), "exactly one lot on the block before close %d", i)

		plan := PlanLotClose(lot, status, pendingAfter(i))
		require.NotNil(t, plan)

		if plan.Outcome == CloseSold {
			lot.Status = LotSold
			orders++
		} else {
			lot.Status = LotNoSale
		}
		if plan.EndAuction {
			status = AuctionEnded
			now := time.Now().UTC()
			actualEnd = &now
		} else {
			lots[i+1].Status = LotActive
		}
		require.LessOrEqual(t, countActive(), 1, "rotation must never leave two lots active")
	}

	assert.Equal(t, AuctionEnded, status)
	require.NotNil(t, actualEnd, "ending the auction records when it ended")
	assert.Equal(t, 2, orders, "lots 1 and 3 sold; lot 2 drew no bids")
	assert.Equal(t, LotSold, lots[0].Status)
	assert.Equal(t, LotNoSale, lots[1].Status)
	assert.Equal(t, LotSold, lots[2].Status)
}
