package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeaderStatus(t *testing.T) {
	assert.Equal(t, BidStatusWinning, LeaderStatus(true))
	assert.Equal(t, BidStatusActive, LeaderStatus(false))
}

func TestBid_IsLeading(t *testing.T) {
	tests := []struct {
		status BidStatus
		want   bool
	}{
		{BidStatusActive, true},
		{BidStatusWinning, true},
		{BidStatusOutbid, false},
		{BidStatusWon, false},
	}
	for _, tt := range tests {
		b := &Bid{Status: tt.status}
		assert.Equal(t, tt.want, b.IsLeading(), "status %s", tt.status)
	}
}
