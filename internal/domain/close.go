package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Lot close — pure planning step
// ──────────────────────────────────────────────────────────────────────────────

// CloseOutcome is the terminal state a close assigns to a lot.
type CloseOutcome string

const (
	CloseSold   CloseOutcome = "sold"
	CloseNoSale CloseOutcome = "no_sale"
)

// ClosePlan describes the settlement decision for one lot close: the outcome,
// the winner and hammer price when sold, and whether the auction ends once
// this lot is off the block.
type ClosePlan struct {
	Outcome     CloseOutcome
	WinnerID    uuid.UUID       // set when Outcome == CloseSold
	HammerPrice decimal.Decimal // final price at close
	EndAuction  bool            // no pending lot remains to rotate in
}

// PlanLotClose computes the settlement decision for a lot, or nil when the
// close must not run:
//   - the lot is no longer active (an earlier close won the race; repeat
//     closes change nothing and emit no second order)
//   - the auction is paused (the clock is frozen; the lot stays on the block)
//
// Sold requires at least one bid, a recorded leader, and the reserve
// condition at the final price; anything else closes no_sale.
// pendingRemaining is the number of pending lots left in the auction; when
// zero the close also ends the auction.
func PlanLotClose(lot *AuctionLot, auctionStatus AuctionStatus, pendingRemaining int) *ClosePlan {
	if !lot.IsActive() {
		return nil
	}
	if auctionStatus == AuctionPaused {
		return nil
	}

	plan := &ClosePlan{
		Outcome:     CloseNoSale,
		HammerPrice: lot.CurrentBid,
		EndAuction:  pendingRemaining == 0,
	}
	if lot.BidCount > 0 && lot.CurrentBidderID != nil && lot.ReserveSatisfied(lot.CurrentBid) {
		plan.Outcome = CloseSold
		plan.WinnerID = *lot.CurrentBidderID
	}
	return plan
}
