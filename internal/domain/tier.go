package domain

// ──────────────────────────────────────────────────────────────────────────────
// Membership tiers
// ──────────────────────────────────────────────────────────────────────────────

// MembershipTier is a user's subscription level, controlling the daily bid
// quota and whether the buying-power check is waived.
type MembershipTier string

const (
	TierGuest    MembershipTier = "guest"
	TierBasic    MembershipTier = "basic"
	TierPremier  MembershipTier = "premier"
	TierBusiness MembershipTier = "business"
)

// UnlimitedBids marks a tier with no daily quota.
const UnlimitedBids = -1

// TierPolicy holds the bidding entitlements of one membership tier.
type TierPolicy struct {
	DailyBidLimit     int  // UnlimitedBids means no quota
	WaivesBuyingPower bool // business accounts bid without a funds check
}

// tierPolicies is the platform's tier table.
var tierPolicies = map[MembershipTier]TierPolicy{
	TierGuest:    {DailyBidLimit: 0},
	TierBasic:    {DailyBidLimit: 3},
	TierPremier:  {DailyBidLimit: 10},
	TierBusiness: {DailyBidLimit: UnlimitedBids, WaivesBuyingPower: true},
}

// Policy returns the entitlements for the tier. Unknown tiers fall back to
// guest, which cannot bid at all.
func (t MembershipTier) Policy() TierPolicy {
	if p, ok := tierPolicies[t]; ok {
		return p
	}
	return tierPolicies[TierGuest]
}

// AllowsBid reports whether a user at this tier with used bids consumed today
// may place one more.
func (t MembershipTier) AllowsBid(used int) bool {
	p := t.Policy()
	if p.DailyBidLimit == UnlimitedBids {
		return true
	}
	return used < p.DailyBidLimit
}
