package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierPolicy_DailyLimits(t *testing.T) {
	assert.Equal(t, 0, TierGuest.Policy().DailyBidLimit)
	assert.Equal(t, 3, TierBasic.Policy().DailyBidLimit)
	assert.Equal(t, 10, TierPremier.Policy().DailyBidLimit)
	assert.Equal(t, UnlimitedBids, TierBusiness.Policy().DailyBidLimit)
}

func TestTier_AllowsBid(t *testing.T) {
	assert.False(t, TierGuest.AllowsBid(0), "guests cannot bid at all")

	assert.True(t, TierBasic.AllowsBid(2))
	assert.False(t, TierBasic.AllowsBid(3), "limit is exhausted at exactly the quota")

	assert.True(t, TierPremier.AllowsBid(9))
	assert.False(t, TierPremier.AllowsBid(10))

	assert.True(t, TierBusiness.AllowsBid(100_000), "business tier is unlimited")
}

func TestTier_BuyingPowerWaiver(t *testing.T) {
	assert.True(t, TierBusiness.Policy().WaivesBuyingPower)
	assert.False(t, TierBasic.Policy().WaivesBuyingPower)
	assert.False(t, TierPremier.Policy().WaivesBuyingPower)
}

func TestUnknownTier_FallsBackToGuest(t *testing.T) {
	unknown := MembershipTier("platinum")
	assert.Equal(t, TierGuest.Policy(), unknown.Policy())
	assert.False(t, unknown.AllowsBid(0))
}
