package domain

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Proxy resolution — pure planning step
// ──────────────────────────────────────────────────────────────────────────────

// ProxyPlan describes one proxy counter-bid the engine has decided to place,
// together with the ceilings the new price knocks out.
type ProxyPlan struct {
	MaxBidID   uuid.UUID       // the ceiling placing the counter-bid
	BidderID   uuid.UUID       // its owner
	Amount     decimal.Decimal // the counter-bid amount
	Deactivate []uuid.UUID     // MaxBid IDs whose ceiling is strictly below Amount
}

// PlanProxyStep computes a single step of proxy resolution for a lot.
//
// Given the lot's current price and leader, the effective increment, and the
// active ceilings, it returns the proxy bid to place — or nil when the engine
// has nothing to do:
//   - no active ceilings
//   - the current leader already owns the highest ceiling
//   - the highest ceiling cannot beat the current price (the owner keeps
//     losing silently; no bid, no notification)
//
// When two ceilings are exactly equal the earliest-created one wins the sort.
// Callers iterate PlanProxyStep until it returns nil; every non-nil step
// installs the top ceiling's owner as leader, so the next iteration observes
// the leading ceiling and stops.
func PlanProxyStep(currentBid decimal.Decimal, currentBidderID *uuid.UUID, increment decimal.Decimal, ceilings []*MaxBid) *ProxyPlan {
	active := make([]*MaxBid, 0, len(ceilings))
	for _, mb := range ceilings {
		if mb.IsActive {
			active = append(active, mb)
		}
	}
	if len(active) == 0 {
		return nil
	}

	// Highest ceiling first; equal ceilings keep registration order.
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].MaxAmount.Equal(active[j].MaxAmount) {
			return active[i].CreatedAt.Before(active[j].CreatedAt)
		}
		return active[i].MaxAmount.GreaterThan(active[j].MaxAmount)
	})

	top := active[0]
	if currentBidderID != nil && *currentBidderID == top.UserID {
		// The leading proxy has nothing to defend against.
		return nil
	}

	// The candidate is capped at the top ceiling in both branches: a proxy
	// bid never exceeds its own MaxAmount.
	var candidate decimal.Decimal
	if len(active) > 1 {
		second := active[1]
		candidate = decimal.Min(second.MaxAmount.Add(increment), top.MaxAmount)
	} else {
		candidate = decimal.Min(currentBid.Add(increment), top.MaxAmount)
	}
	if candidate.LessThanOrEqual(currentBid) {
		return nil
	}

	plan := &ProxyPlan{
		MaxBidID: top.ID,
		BidderID: top.UserID,
		Amount:   candidate,
	}
	for _, mb := range active {
		if mb.MaxAmount.LessThan(candidate) {
			plan.Deactivate = append(plan.Deactivate, mb.ID)
		}
	}
	return plan
}

// ExhaustedCeilings returns the IDs of active ceilings strictly below price.
// The price never decreases, so once it passes a ceiling the owner can never
// retake the lead and the ceiling is spent. Ceilings exactly at the price are
// kept, consistent with the strictly-below rule in ProxyPlan.Deactivate.
func ExhaustedCeilings(price decimal.Decimal, ceilings []*MaxBid) []uuid.UUID {
	var spent []uuid.UUID
	for _, mb := range ceilings {
		if mb.IsActive && mb.MaxAmount.LessThan(price) {
			spent = append(spent, mb.ID)
		}
	}
	return spent
}

// MaxProxyIterations bounds the fixed-point loop. Each productive step either
// installs the top ceiling as leader or deactivates at least one ceiling, so
// the number of active ceilings plus one is always sufficient.
func MaxProxyIterations(activeCeilings int) int {
	return activeCeilings + 1
}
