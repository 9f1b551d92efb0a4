package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func decp(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestLot_Increment_PrefersOwnOverDefault(t *testing.T) {
	lot := &AuctionLot{BidIncrement: decp(250)}
	assert.True(t, lot.Increment(dec(100)).Equal(dec(250)))

	lot.BidIncrement = nil
	assert.True(t, lot.Increment(dec(100)).Equal(dec(100)))

	zero := decimal.Zero
	lot.BidIncrement = &zero
	assert.True(t, lot.Increment(dec(100)).Equal(dec(100)), "zero increment falls back to the default")
}

func TestLot_MinNextBid(t *testing.T) {
	lot := &AuctionLot{CurrentBid: dec(5000), BidIncrement: decp(250)}
	assert.True(t, lot.MinNextBid(dec(100)).Equal(dec(5250)))

	// Fresh lot: CurrentBid is seeded with the starting bid, so the first
	// manual bid must already clear starting + increment.
	fresh := &AuctionLot{CurrentBid: dec(1000), StartingBid: dec(1000)}
	assert.True(t, fresh.MinNextBid(dec(100)).Equal(dec(1100)))
}

func TestLot_ReserveSatisfied(t *testing.T) {
	noReserve := &AuctionLot{}
	assert.True(t, noReserve.ReserveSatisfied(dec(1)), "no reserve means always met")

	zeroReserve := &AuctionLot{ReservePrice: decp(0)}
	assert.True(t, zeroReserve.ReserveSatisfied(dec(1)))

	lot := &AuctionLot{ReservePrice: decp(5000)}
	assert.False(t, lot.ReserveSatisfied(dec(4999)))
	assert.True(t, lot.ReserveSatisfied(dec(5000)), "reserve boundary is inclusive")
	assert.True(t, lot.ReserveSatisfied(dec(6000)))
}

func TestLot_HasEnded(t *testing.T) {
	now := time.Now()

	open := &AuctionLot{}
	assert.False(t, open.HasEnded(now), "lots without a deadline only close by manual advance")

	past := now.Add(-time.Second)
	future := now.Add(time.Minute)
	assert.True(t, (&AuctionLot{EndsAt: &past}).HasEnded(now))
	assert.True(t, (&AuctionLot{EndsAt: &now}).HasEnded(now), "window end is exclusive of further bids")
	assert.False(t, (&AuctionLot{EndsAt: &future}).HasEnded(now))
}

func TestLot_StatusPredicates(t *testing.T) {
	assert.True(t, (&AuctionLot{Status: LotActive}).IsActive())
	assert.False(t, (&AuctionLot{Status: LotPending}).IsActive())
	assert.True(t, (&AuctionLot{Status: LotSold}).IsTerminal())
	assert.True(t, (&AuctionLot{Status: LotNoSale}).IsTerminal())
	assert.False(t, (&AuctionLot{Status: LotActive}).IsTerminal())
}

func TestLot_ToSummary(t *testing.T) {
	ends := time.Now().Add(45 * time.Second)
	lot := &AuctionLot{
		Status:     LotActive,
		CurrentBid: dec(3000),
		BidCount:   4,
		ReserveMet: true,
		EndsAt:     &ends,
	}
	s := lot.ToSummary()
	assert.Equal(t, LotActive, s.Status)
	assert.True(t, s.CurrentBid.Equal(dec(3000)))
	assert.Equal(t, 4, s.BidCount)
	assert.True(t, s.ReserveMet)
	assert.InDelta(t, 45, s.TimeLeftSec, 2)
}

func TestLot_BidFloorMovesWithEachAcceptedBid(t *testing.T) {
	lot := &AuctionLot{CurrentBid: dec(20_000_000), BidIncrement: decp(100_000)}

	floor := lot.MinNextBid(dec(100))
	assert.True(t, floor.Equal(dec(20_100_000)))
	assert.False(t, dec(20_050_000).GreaterThanOrEqual(floor), "below-floor bid rejected")

	// Accepting 20,100,000 moves the floor to 20,200,000, so a follow-up
	// 20,150,000 no longer clears it.
	lot.CurrentBid = dec(20_100_000)
	floor = lot.MinNextBid(dec(100))
	assert.True(t, floor.Equal(dec(20_200_000)))
	assert.False(t, dec(20_150_000).GreaterThanOrEqual(floor))
}

func TestLot_ReserveShortfallMeansNoSale(t *testing.T) {
	lot := &AuctionLot{ReservePrice: decp(23_000_000)}
	assert.False(t, lot.ReserveSatisfied(dec(21_500_000)),
		"a leader below reserve closes no_sale")
}
