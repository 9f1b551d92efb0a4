package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fee schedule
// ──────────────────────────────────────────────────────────────────────────────

// Service fee tiers, by winning bid amount (minor units).
var (
	feeTier1Ceiling = decimal.NewFromInt(1_000_000)
	feeTier2Ceiling = decimal.NewFromInt(5_000_000)
	feeTier3Ceiling = decimal.NewFromInt(15_000_000)

	feeTier1Flat = decimal.NewFromInt(75_000)
	feeTier2Rate = decimal.NewFromFloat(0.07)
	feeTier3Rate = decimal.NewFromFloat(0.06)
	feeTier4Rate = decimal.NewFromFloat(0.05)
)

// ServiceFeeFor computes the tiered buyer's service fee on a winning bid:
// up to 1,000,000 a flat 75,000; up to 5,000,000 7 %; up to 15,000,000 6 %;
// above that 5 %. Percentage fees are rounded down to whole minor units.
func ServiceFeeFor(winningBid decimal.Decimal) decimal.Decimal {
	switch {
	case winningBid.LessThanOrEqual(feeTier1Ceiling):
		return feeTier1Flat
	case winningBid.LessThanOrEqual(feeTier2Ceiling):
		return winningBid.Mul(feeTier2Rate).RoundDown(0)
	case winningBid.LessThanOrEqual(feeTier3Ceiling):
		return winningBid.Mul(feeTier3Rate).RoundDown(0)
	default:
		return winningBid.Mul(feeTier4Rate).RoundDown(0)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Order
// ──────────────────────────────────────────────────────────────────────────────

// OrderStatus is the payment standing of a settlement order. Payment
// collection itself is owned by the checkout subsystem.
type OrderStatus string

const (
	OrderPendingPayment OrderStatus = "pending_payment"
	OrderPaid           OrderStatus = "paid"
	OrderExpired        OrderStatus = "expired"
	OrderCancelled      OrderStatus = "cancelled"
)

// Order is emitted by settlement when a lot closes sold. The checkout
// subsystem takes over from here.
type Order struct {
	ID               uuid.UUID       `json:"id"                db:"id"`
	OrderNumber      string          `json:"order_number"      db:"order_number"`
	LotID            uuid.UUID       `json:"lot_id"            db:"lot_id"`
	VehicleID        uuid.UUID       `json:"vehicle_id"        db:"vehicle_id"`
	WinnerID         uuid.UUID       `json:"winner_id"         db:"winner_id"`
	WinningBid       decimal.Decimal `json:"winning_bid"       db:"winning_bid"`
	ServiceFee       decimal.Decimal `json:"service_fee"       db:"service_fee"`
	DocumentationFee decimal.Decimal `json:"documentation_fee" db:"documentation_fee"`
	TotalDue         decimal.Decimal `json:"total_due"         db:"total_due"`
	Status           OrderStatus     `json:"status"            db:"status"`
	PaymentDeadline  time.Time       `json:"payment_deadline"  db:"payment_deadline"`
	CreatedAt        time.Time       `json:"created_at"        db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"        db:"updated_at"`
}

// NewOrder builds a pending order for a sold lot with computed fees and a
// payment deadline relative to now.
func NewOrder(lot *AuctionLot, winnerID uuid.UUID, winningBid decimal.Decimal, docFee decimal.Decimal, deadline time.Duration, now time.Time) *Order {
	serviceFee := ServiceFeeFor(winningBid)
	return &Order{
		ID:               uuid.New(),
		LotID:            lot.ID,
		VehicleID:        lot.VehicleID,
		WinnerID:         winnerID,
		WinningBid:       winningBid,
		ServiceFee:       serviceFee,
		DocumentationFee: docFee,
		TotalDue:         winningBid.Add(serviceFee).Add(docFee),
		Status:           OrderPendingPayment,
		PaymentDeadline:  now.Add(deadline),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
