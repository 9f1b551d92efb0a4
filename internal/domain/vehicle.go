package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListingStatus tracks where a vehicle stands in the sales pipeline.
// The catalog (make/model/photos/inspection) is owned by the vehicle
// subsystem; this core reads pricing and writes listing-status transitions.
type ListingStatus string

const (
	ListingScheduled ListingStatus = "scheduled"  // attached to an upcoming lot
	ListingInAuction ListingStatus = "in_auction" // its lot is live
	ListingSold      ListingStatus = "sold"
	ListingUnsold    ListingStatus = "unsold"
)

// Vehicle carries the pricing fields this core needs to seed a lot, plus the
// listing status it maintains as lifecycle side effects.
type Vehicle struct {
	ID           uuid.UUID        `json:"id"            db:"id"`
	SellerID     uuid.UUID        `json:"seller_id"     db:"seller_id"`
	Title        string           `json:"title"         db:"title"`
	StartingBid  decimal.Decimal  `json:"starting_bid"  db:"starting_bid"`
	ReservePrice *decimal.Decimal `json:"reserve_price" db:"reserve_price"` // confidential seller minimum
	BuyNowPrice  *decimal.Decimal `json:"buy_now_price" db:"buy_now_price"`
	Status       ListingStatus    `json:"status"        db:"status"`
	CreatedAt    time.Time        `json:"created_at"    db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"    db:"updated_at"`
}
