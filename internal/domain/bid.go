package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// BidKind distinguishes manual bids from system-placed proxy bids.
type BidKind string

const (
	BidKindLive  BidKind = "live"  // placed directly by a bidder
	BidKindProxy BidKind = "proxy" // placed by the proxy engine on a bidder's behalf
)

// BidStatus represents the ledger state of a bid.
type BidStatus string

const (
	BidStatusActive  BidStatus = "active"  // the current leader on an open lot
	BidStatusOutbid  BidStatus = "outbid"  // superseded by a higher bid
	BidStatusWinning BidStatus = "winning" // leader on a lot whose reserve is met
	BidStatusWon     BidStatus = "won"     // leader at close of a sold lot
)

// ──────────────────────────────────────────────────────────────────────────────
// Bid
// ──────────────────────────────────────────────────────────────────────────────

// Bid is an immutable ledger entry. Bids are only ever created by the bid
// acceptance path (directly, or via the proxy engine) and only mutated by
// status transitions; they are never deleted.
//
// Invariant: for a given lot, exactly one bid is active/winning at a time.
type Bid struct {
	ID        uuid.UUID       `json:"id"         db:"id"`
	LotID     uuid.UUID       `json:"lot_id"     db:"lot_id"`
	BidderID  uuid.UUID       `json:"bidder_id"  db:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"     db:"amount"`
	Kind      BidKind         `json:"kind"       db:"kind"`
	Status    BidStatus       `json:"status"     db:"status"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// IsLeading returns true while the bid is the lot's current leader.
func (b *Bid) IsLeading() bool {
	return b.Status == BidStatusActive || b.Status == BidStatusWinning
}

// LeaderStatus returns the ledger status for a freshly installed leading bid:
// winning once the lot's reserve condition holds at the bid amount, active
// while the reserve is still short.
func LeaderStatus(reserveMet bool) BidStatus {
	if reserveMet {
		return BidStatusWinning
	}
	return BidStatusActive
}

// ──────────────────────────────────────────────────────────────────────────────
// MaxBid — proxy ceiling
// ──────────────────────────────────────────────────────────────────────────────

// MaxBid is a standing instruction to auto-bid on a user's behalf up to
// MaxAmount. At most one row exists per (lot, user); re-setting updates the
// existing row. Exceeded ceilings are deactivated, never deleted.
type MaxBid struct {
	ID              uuid.UUID        `json:"id"                db:"id"`
	LotID           uuid.UUID        `json:"lot_id"            db:"lot_id"`
	UserID          uuid.UUID        `json:"user_id"           db:"user_id"`
	MaxAmount       decimal.Decimal  `json:"max_amount"        db:"max_amount"`
	LastProxyAmount *decimal.Decimal `json:"last_proxy_amount" db:"last_proxy_amount"`
	IsActive        bool             `json:"is_active"         db:"is_active"`
	CreatedAt       time.Time        `json:"created_at"        db:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"        db:"updated_at"`
}

// ──────────────────────────────────────────────────────────────────────────────
// PlaceBidRequest — value object used by BidService
// ──────────────────────────────────────────────────────────────────────────────

// PlaceBidRequest carries the validated inputs for placing a manual bid.
type PlaceBidRequest struct {
	BidderID uuid.UUID
	LotID    uuid.UUID
	Amount   decimal.Decimal
}

// PlaceBidResult reports the outcome of a bid acceptance, including any
// proxy counter-bidding that ran inside the same logical operation.
type PlaceBidResult struct {
	Bid           *Bid            `json:"bid"`
	NewCurrentBid decimal.Decimal `json:"new_current_bid"`
	LeaderID      uuid.UUID       `json:"leader_id"`
	Outbid        bool            `json:"outbid"` // true when a proxy immediately retook the lead
}
