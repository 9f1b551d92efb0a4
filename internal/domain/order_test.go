package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestServiceFeeFor(t *testing.T) {
	cases := []struct {
		name       string
		winningBid int64
		want       int64
	}{
		{"small sale gets flat fee", 400_000, 75_000},
		{"flat fee boundary inclusive", 1_000_000, 75_000},
		{"just above flat tier", 1_000_001, 70_000}, // 7% of 1,000,001 rounded down
		{"seven percent tier", 2_000_000, 140_000},
		{"seven percent boundary inclusive", 5_000_000, 350_000},
		{"six percent tier", 10_000_000, 600_000},
		{"six percent boundary inclusive", 15_000_000, 900_000},
		{"five percent above top boundary", 20_000_000, 1_000_000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ServiceFeeFor(decimal.NewFromInt(tc.winningBid))
			assert.True(t, got.Equal(decimal.NewFromInt(tc.want)),
				"ServiceFeeFor(%d) = %s, want %d", tc.winningBid, got, tc.want)
		})
	}
}

func TestServiceFeeFor_RoundsDown(t *testing.T) {
	// 7% of 1,234,567 = 86,419.69 → 86,419
	got := ServiceFeeFor(decimal.NewFromInt(1_234_567))
	assert.True(t, got.Equal(decimal.NewFromInt(86_419)), "got %s", got)
}

func TestNewOrder_ComputesTotalsAndDeadline(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	lot := &AuctionLot{ID: uuid.New(), VehicleID: uuid.New()}
	winner := uuid.New()
	winningBid := decimal.NewFromInt(2_000_000)
	docFee := decimal.NewFromInt(4_500)

	o := NewOrder(lot, winner, winningBid, docFee, 72*time.Hour, now)

	assert.Equal(t, lot.ID, o.LotID)
	assert.Equal(t, lot.VehicleID, o.VehicleID)
	assert.Equal(t, winner, o.WinnerID)
	assert.Equal(t, OrderPendingPayment, o.Status)
	assert.True(t, o.ServiceFee.Equal(decimal.NewFromInt(140_000)))
	assert.True(t, o.TotalDue.Equal(decimal.NewFromInt(2_144_500)),
		"total = bid + service fee + doc fee, got %s", o.TotalDue)
	assert.Equal(t, now.Add(72*time.Hour), o.PaymentDeadline)
	assert.Empty(t, o.OrderNumber, "order number is assigned by settlement, not the constructor")
}
