package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func ceiling(userID uuid.UUID, max int64, createdAt time.Time) *MaxBid {
	return &MaxBid{
		ID:        uuid.New(),
		LotID:     uuid.New(),
		UserID:    userID,
		MaxAmount: dec(max),
		IsActive:  true,
		CreatedAt: createdAt,
	}
}

// resolve runs PlanProxyStep to its fixed point the way the bid service does,
// mirroring deactivations in memory between iterations.
func resolve(t *testing.T, currentBid decimal.Decimal, leader *uuid.UUID, inc decimal.Decimal, ceilings []*MaxBid) (decimal.Decimal, *uuid.UUID, int) {
	t.Helper()
	steps := 0
	for i := 0; i < MaxProxyIterations(len(ceilings)); i++ {
		plan := PlanProxyStep(currentBid, leader, inc, ceilings)
		if plan == nil {
			return currentBid, leader, steps
		}
		steps++
		require.True(t, plan.Amount.GreaterThan(currentBid), "proxy bid must raise the price")
		currentBid = plan.Amount
		leader = &plan.BidderID
		for _, id := range plan.Deactivate {
			for _, mb := range ceilings {
				if mb.ID == id {
					mb.IsActive = false
				}
			}
		}
	}
	t.Fatal("proxy resolution did not reach a fixed point within the iteration bound")
	return currentBid, leader, steps
}

func TestPlanProxyStep_NoCeilings(t *testing.T) {
	assert.Nil(t, PlanProxyStep(dec(1000), nil, dec(100), nil))
}

func TestPlanProxyStep_SingleCeilingAdvancesByOneIncrement(t *testing.T) {
	alice := uuid.New()
	mb := ceiling(alice, 5000, time.Now())

	plan := PlanProxyStep(dec(1000), nil, dec(100), []*MaxBid{mb})
	require.NotNil(t, plan)
	assert.Equal(t, alice, plan.BidderID)
	assert.True(t, plan.Amount.Equal(dec(1100)), "got %s", plan.Amount)
	assert.Empty(t, plan.Deactivate)
}

func TestPlanProxyStep_SingleCeilingCappedAtMax(t *testing.T) {
	alice := uuid.New()
	mb := ceiling(alice, 1050, time.Now())

	plan := PlanProxyStep(dec(1000), nil, dec(100), []*MaxBid{mb})
	require.NotNil(t, plan)
	assert.True(t, plan.Amount.Equal(dec(1050)), "bid capped at the ceiling, got %s", plan.Amount)
}

func TestPlanProxyStep_LeaderAlreadyOwnsTopCeiling(t *testing.T) {
	alice := uuid.New()
	mb := ceiling(alice, 5000, time.Now())

	assert.Nil(t, PlanProxyStep(dec(1100), &alice, dec(100), []*MaxBid{mb}))
}

// A ceiling below the current price loses silently: no counter-bid, no
// deactivation notification.
func TestPlanProxyStep_LosingCeilingStaysSilent(t *testing.T) {
	bob := uuid.New()
	leader := uuid.New()
	mb := ceiling(bob, 900, time.Now())

	assert.Nil(t, PlanProxyStep(dec(1000), &leader, dec(100), []*MaxBid{mb}))
}

func TestResolve_TwoCeilings_HigherWinsAtSecondPlusIncrement(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	now := time.Now()
	ceilings := []*MaxBid{
		ceiling(alice, 10_000, now),
		ceiling(bob, 6_000, now.Add(time.Second)),
	}

	finalBid, leader, _ := resolve(t, dec(1000), nil, dec(100), ceilings)

	require.NotNil(t, leader)
	assert.Equal(t, alice, *leader)
	// Alice's proxy only needs to beat Bob's ceiling by one increment.
	assert.True(t, finalBid.Equal(dec(6100)), "got %s", finalBid)
	assert.False(t, ceilings[1].IsActive, "bob's exceeded ceiling is deactivated")
	assert.True(t, ceilings[0].IsActive)
}

func TestResolve_SecondPlusIncrementCappedAtTopCeiling(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	now := time.Now()
	ceilings := []*MaxBid{
		ceiling(alice, 6_050, now),
		ceiling(bob, 6_000, now.Add(time.Second)),
	}

	finalBid, leader, _ := resolve(t, dec(1000), nil, dec(100), ceilings)

	require.NotNil(t, leader)
	assert.Equal(t, alice, *leader)
	// 6000+100 would exceed Alice's own ceiling; the proxy stops at 6050.
	assert.True(t, finalBid.Equal(dec(6050)), "got %s", finalBid)
}

// Equal ceilings: the one registered first wins the lot at its full amount.
func TestResolve_EqualCeilings_EarlierRegistrationWins(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	now := time.Now()
	ceilings := []*MaxBid{
		ceiling(bob, 5_000, now.Add(time.Second)), // registered second
		ceiling(alice, 5_000, now),                // registered first
	}

	finalBid, leader, _ := resolve(t, dec(1000), nil, dec(100), ceilings)

	require.NotNil(t, leader)
	assert.Equal(t, alice, *leader)
	assert.True(t, finalBid.Equal(dec(5000)), "price driven to the shared ceiling, got %s", finalBid)
}

func TestResolve_ManualBidTriggersProxyDefense(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	mb := ceiling(alice, 10_000, time.Now())

	// Bob bids 2000 manually; Alice's standing ceiling answers at 2100.
	finalBid, leader, steps := resolve(t, dec(2000), &bob, dec(100), []*MaxBid{mb})

	require.NotNil(t, leader)
	assert.Equal(t, alice, *leader)
	assert.True(t, finalBid.Equal(dec(2100)), "got %s", finalBid)
	assert.Equal(t, 1, steps)
}

func TestResolve_ThreeCeilingsReachFixedPoint(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()
	ceilings := []*MaxBid{
		ceiling(a, 3_000, now),
		ceiling(b, 7_000, now.Add(time.Second)),
		ceiling(c, 12_000, now.Add(2*time.Second)),
	}

	finalBid, leader, _ := resolve(t, dec(1000), nil, dec(500), ceilings)

	require.NotNil(t, leader)
	assert.Equal(t, c, *leader)
	assert.True(t, finalBid.Equal(dec(7500)), "second-highest ceiling plus one increment, got %s", finalBid)
	assert.False(t, ceilings[0].IsActive)
	assert.False(t, ceilings[1].IsActive)
	assert.True(t, ceilings[2].IsActive)
}

func TestResolve_InactiveCeilingsIgnored(t *testing.T) {
	alice := uuid.New()
	mb := ceiling(alice, 10_000, time.Now())
	mb.IsActive = false

	finalBid, leader, steps := resolve(t, dec(1000), nil, dec(100), []*MaxBid{mb})
	assert.Nil(t, leader)
	assert.True(t, finalBid.Equal(dec(1000)))
	assert.Zero(t, steps)
}

func TestMaxProxyIterations(t *testing.T) {
	assert.Equal(t, 1, MaxProxyIterations(0))
	assert.Equal(t, 4, MaxProxyIterations(3))
}

// ── Worked examples at catalogue prices ──────────────────────────────────────

func TestProxy_SingleCeilingDefendsAgainstManualBid(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	mb := ceiling(a, 22_000_000, time.Now())

	// B bids 20,100,000 manually on a lot with a 100,000 increment.
	finalBid, leader, _ := resolve(t, dec(20_100_000), &b, dec(100_000), []*MaxBid{mb})

	require.NotNil(t, leader)
	assert.Equal(t, a, *leader)
	assert.True(t, finalBid.Equal(dec(20_200_000)), "got %s", finalBid)
}

func TestProxy_HigherCeilingBeatsLowerAtLowerPlusIncrement(t *testing.T) {
	a, b, manual := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()
	ceilings := []*MaxBid{
		ceiling(a, 22_000_000, now),
		ceiling(b, 23_000_000, now.Add(time.Second)), // registered second, but higher
	}

	finalBid, leader, _ := resolve(t, dec(20_100_000), &manual, dec(100_000), ceilings)

	require.NotNil(t, leader)
	assert.Equal(t, b, *leader)
	assert.True(t, finalBid.Equal(dec(22_100_000)), "got %s", finalBid)
	assert.False(t, ceilings[0].IsActive, "the exceeded 22M ceiling is deactivated")
}

func TestExhaustedCeilings_RetiresThosePassedByThePrice(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()
	ceilings := []*MaxBid{
		ceiling(a, 22_000_000, now),
		ceiling(b, 23_000_000, now.Add(time.Second)),
		ceiling(c, 25_000_000, now.Add(2*time.Second)),
	}

	// A manual bid at 25,000,000 outran the two lower ceilings; the one
	// exactly at the price stays (it was outbid at, not beyond, its limit).
	spent := ExhaustedCeilings(dec(25_000_000), ceilings)

	require.Len(t, spent, 2)
	assert.Contains(t, spent, ceilings[0].ID)
	assert.Contains(t, spent, ceilings[1].ID)
	assert.NotContains(t, spent, ceilings[2].ID)
}

func TestExhaustedCeilings_SkipsAlreadyInactive(t *testing.T) {
	mb := ceiling(uuid.New(), 1_000_000, time.Now())
	mb.IsActive = false

	assert.Empty(t, ExhaustedCeilings(dec(2_000_000), []*MaxBid{mb}))
}

// A manual bid above every ceiling draws no counter-bid, and the passed
// ceilings are all spent afterwards.
func TestProxy_ManualBidAboveTopCeilingRetiresAllCeilings(t *testing.T) {
	a, b, manual := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()
	ceilings := []*MaxBid{
		ceiling(a, 22_000_000, now),
		ceiling(b, 23_000_000, now.Add(time.Second)),
	}

	finalBid, leader, steps := resolve(t, dec(24_000_000), &manual, dec(100_000), ceilings)

	assert.Zero(t, steps, "no ceiling can answer a bid above the highest")
	assert.Equal(t, manual, *leader)
	assert.True(t, finalBid.Equal(dec(24_000_000)))

	spent := ExhaustedCeilings(finalBid, ceilings)
	assert.Len(t, spent, 2, "both ceilings are below the price and spent")
}
