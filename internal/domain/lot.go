package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// LotStatus represents the lifecycle state of a lot within an auction.
type LotStatus string

const (
	LotPending LotStatus = "pending" // waiting its turn in the sale order
	LotActive  LotStatus = "active"  // currently accepting bids
	LotSold    LotStatus = "sold"    // closed with reserve met and a winner
	LotNoSale  LotStatus = "no_sale" // closed without a qualifying winner
)

// ──────────────────────────────────────────────────────────────────────────────
// AuctionLot
// ──────────────────────────────────────────────────────────────────────────────

// AuctionLot is one vehicle's slot in an auction's sale order.
//
// Invariants maintained by the services:
//   - at most one lot per auction is LotActive at any time
//   - CurrentBid is monotonically non-decreasing for the lifetime of the lot
//   - lots are terminalized (sold / no_sale), never deleted
type AuctionLot struct {
	ID              uuid.UUID        `json:"id"               db:"id"`
	AuctionID       uuid.UUID        `json:"auction_id"       db:"auction_id"`
	VehicleID       uuid.UUID        `json:"vehicle_id"       db:"vehicle_id"`
	LotOrder        int              `json:"lot_order"        db:"lot_order"` // sale sequence, unique per auction
	Status          LotStatus        `json:"status"           db:"status"`
	CurrentBid      decimal.Decimal  `json:"current_bid"      db:"current_bid"`
	CurrentBidderID *uuid.UUID       `json:"current_bidder_id" db:"current_bidder_id"`
	BidCount        int              `json:"bid_count"        db:"bid_count"`
	ReserveMet      bool             `json:"reserve_met"      db:"reserve_met"`
	StartingBid     decimal.Decimal  `json:"starting_bid"     db:"starting_bid"`
	ReservePrice    *decimal.Decimal `json:"reserve_price"    db:"reserve_price"`
	BuyNowPrice     *decimal.Decimal `json:"buy_now_price"    db:"buy_now_price"`
	BidIncrement    *decimal.Decimal `json:"bid_increment"    db:"bid_increment"`
	StartsAt        *time.Time       `json:"starts_at"        db:"starts_at"`
	EndsAt          *time.Time       `json:"ends_at"          db:"ends_at"`
	DurationSec     int64            `json:"duration_sec"     db:"duration_sec"`
	WinningBid      *decimal.Decimal `json:"winning_bid"      db:"winning_bid"`
	WinnerID        *uuid.UUID       `json:"winner_id"        db:"winner_id"`
	SoldAt          *time.Time       `json:"sold_at"          db:"sold_at"`
	CreatedAt       time.Time        `json:"created_at"       db:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"       db:"updated_at"`
}

// IsActive returns true while the lot is accepting bids.
func (l *AuctionLot) IsActive() bool {
	return l.Status == LotActive
}

// IsTerminal returns true once the lot has been closed out.
func (l *AuctionLot) IsTerminal() bool {
	return l.Status == LotSold || l.Status == LotNoSale
}

// HasEnded reports whether the lot's bidding window has elapsed at now.
// Lots without an EndsAt never expire by time (manual advance only).
func (l *AuctionLot) HasEnded(now time.Time) bool {
	return l.EndsAt != nil && !l.EndsAt.After(now)
}

// Increment returns the minimum bid increment in effect for this lot:
// the lot's own increment, else auctionDefault.
func (l *AuctionLot) Increment(auctionDefault decimal.Decimal) decimal.Decimal {
	if l.BidIncrement != nil && l.BidIncrement.IsPositive() {
		return *l.BidIncrement
	}
	return auctionDefault
}

// MinNextBid returns the lowest amount a new bid must reach:
// currentBid + increment. CurrentBid is seeded with the starting bid when
// the lot is attached, so the rule holds from the first bid onwards.
func (l *AuctionLot) MinNextBid(auctionDefault decimal.Decimal) decimal.Decimal {
	return l.CurrentBid.Add(l.Increment(auctionDefault))
}

// ReserveSatisfied reports whether the reserve condition is met at price.
// A lot with no configured reserve is always considered met.
func (l *AuctionLot) ReserveSatisfied(price decimal.Decimal) bool {
	if l.ReservePrice == nil || l.ReservePrice.IsZero() {
		return true
	}
	return price.GreaterThanOrEqual(*l.ReservePrice)
}

// TimeLeft returns the duration remaining until the lot closes.
// Returns 0 when the window has already elapsed or the lot has no deadline.
func (l *AuctionLot) TimeLeft() time.Duration {
	if l.EndsAt == nil {
		return 0
	}
	remaining := time.Until(*l.EndsAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ──────────────────────────────────────────────────────────────────────────────
// LotSummary — lightweight read model for WS broadcasts and list endpoints
// ──────────────────────────────────────────────────────────────────────────────

// LotSummary is a derived, read-only view of a lot used for broadcasting.
type LotSummary struct {
	ID              uuid.UUID       `json:"id"`
	AuctionID       uuid.UUID       `json:"auction_id"`
	VehicleID       uuid.UUID       `json:"vehicle_id"`
	LotOrder        int             `json:"lot_order"`
	Status          LotStatus       `json:"status"`
	CurrentBid      decimal.Decimal `json:"current_bid"`
	CurrentBidderID *uuid.UUID      `json:"current_bidder_id"`
	BidCount        int             `json:"bid_count"`
	ReserveMet      bool            `json:"reserve_met"`
	EndsAt          *time.Time      `json:"ends_at"`
	TimeLeftSec     int64           `json:"time_left_sec"`
}

// ToSummary builds a LotSummary from the lot's current state.
func (l *AuctionLot) ToSummary() LotSummary {
	return LotSummary{
		ID:              l.ID,
		AuctionID:       l.AuctionID,
		VehicleID:       l.VehicleID,
		LotOrder:        l.LotOrder,
		Status:          l.Status,
		CurrentBid:      l.CurrentBid,
		CurrentBidderID: l.CurrentBidderID,
		BidCount:        l.BidCount,
		ReserveMet:      l.ReserveMet,
		EndsAt:          l.EndsAt,
		TimeLeftSec:     int64(l.TimeLeft().Seconds()),
	}
}
