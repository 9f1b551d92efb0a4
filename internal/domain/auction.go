// Package domain defines the core business entities and types for the
// vehicle auction marketplace: auctions, lots, bids, proxy ceilings and
// settlement orders.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// AuctionStatus represents the lifecycle state of an auction event.
type AuctionStatus string

const (
	AuctionScheduled AuctionStatus = "scheduled" // created, waiting for its start time
	AuctionLive      AuctionStatus = "live"      // lots are being run in order
	AuctionPaused    AuctionStatus = "paused"    // temporarily halted by admin; resumable
	AuctionEnded     AuctionStatus = "ended"     // all lots terminalized
	AuctionCancelled AuctionStatus = "cancelled" // voided by admin
)

// AuctionType distinguishes how lots in the event are sold.
type AuctionType string

const (
	AuctionTypeLive   AuctionType = "live"
	AuctionTypeTimed  AuctionType = "timed"
	AuctionTypeBuyNow AuctionType = "buy_now"
)

// IsValid returns true if the type is a recognised auction type.
func (t AuctionType) IsValid() bool {
	return t == AuctionTypeLive || t == AuctionTypeTimed || t == AuctionTypeBuyNow
}

// DefaultBidIncrement is the fallback minimum increment (minor units) used
// when neither the lot nor its auction configures one.
var DefaultBidIncrement = decimal.NewFromInt(100)

// ──────────────────────────────────────────────────────────────────────────────
// Auction
// ──────────────────────────────────────────────────────────────────────────────

// Auction is a scheduled sales event owning an ordered sequence of lots.
// Status transitions are monotonic except live ⇄ paused.
type Auction struct {
	ID             uuid.UUID        `json:"id"              db:"id"`
	Name           string           `json:"name"            db:"name"`
	Type           AuctionType      `json:"type"            db:"type"`
	Status         AuctionStatus    `json:"status"          db:"status"`
	BidIncrement   *decimal.Decimal `json:"bid_increment"   db:"bid_increment"` // default for lots without one
	LotDurationSec int64            `json:"lot_duration_sec" db:"lot_duration_sec"`
	ScheduledStart time.Time        `json:"scheduled_start" db:"scheduled_start"`
	ScheduledEnd   *time.Time       `json:"scheduled_end"   db:"scheduled_end"`
	ActualStart    *time.Time       `json:"actual_start"    db:"actual_start"`
	ActualEnd      *time.Time       `json:"actual_end"      db:"actual_end"`
	TotalLots      int              `json:"total_lots"      db:"total_lots"`
	SoldLots       int              `json:"sold_lots"       db:"sold_lots"`
	TotalBids      int              `json:"total_bids"      db:"total_bids"`
	CreatedAt      time.Time        `json:"created_at"      db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"      db:"updated_at"`
}

// IsLive returns true while the auction is actively running lots.
func (a *Auction) IsLive() bool {
	return a.Status == AuctionLive
}

// IsTerminal returns true once the auction can no longer change state.
func (a *Auction) IsTerminal() bool {
	return a.Status == AuctionEnded || a.Status == AuctionCancelled
}

// DueToStart reports whether a scheduled auction should go live at now.
func (a *Auction) DueToStart(now time.Time) bool {
	return a.Status == AuctionScheduled && !a.ScheduledStart.After(now)
}

// LotRunDuration returns the per-lot bidding window for this auction.
// Falls back to fallback when the auction does not configure one.
func (a *Auction) LotRunDuration(fallback time.Duration) time.Duration {
	if a.LotDurationSec > 0 {
		return time.Duration(a.LotDurationSec) * time.Second
	}
	return fallback
}

// DefaultIncrement returns the auction-level increment, or the global default.
func (a *Auction) DefaultIncrement() decimal.Decimal {
	if a.BidIncrement != nil && a.BidIncrement.IsPositive() {
		return *a.BidIncrement
	}
	return DefaultBidIncrement
}
