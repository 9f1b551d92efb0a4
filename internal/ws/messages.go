// Package ws holds WebSocket message types and the Hub implementation.
// messages.go defines all message structs broadcast to connected clients.
package ws

import (
	"time"

	"github.com/autolot/auction/internal/domain"
	"github.com/google/uuid"
)

// MsgType identifies the kind of WS message so clients can switch on it.
type MsgType string

const (
	MsgTypeLotUpdate      MsgType = "lot_update"
	MsgTypeLotClosed      MsgType = "lot_closed"
	MsgTypeAuctionStarted MsgType = "auction_started"
	MsgTypeError          MsgType = "error"
)

// ──────────────────────────────────────────────────────────────────────────────
// LotUpdateMessage — sent whenever a lot's price state changes.
// ──────────────────────────────────────────────────────────────────────────────

// LotUpdateMessage carries the lot's current price, leader, and countdown
// after a bid lands, proxy resolution settles, or a lot comes on the block.
type LotUpdateMessage struct {
	Type      MsgType           `json:"type"`
	Lot       domain.LotSummary `json:"lot"`
	Timestamp time.Time         `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// LotClosedMessage — broadcast when a lot closes sold or no_sale.
// ──────────────────────────────────────────────────────────────────────────────

// LotClosedMessage tells clients where the hammer fell. The winner's order
// details are never broadcast; the winner fetches those over the REST API.
type LotClosedMessage struct {
	Type      MsgType           `json:"type"`
	Lot       domain.LotSummary `json:"lot"`
	Timestamp time.Time         `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// AuctionStartedMessage — broadcast when a scheduled auction goes live.
// ──────────────────────────────────────────────────────────────────────────────

// AuctionStartedMessage carries the identity of the freshly opened auction.
type AuctionStartedMessage struct {
	Type      MsgType   `json:"type"`
	AuctionID uuid.UUID `json:"auction_id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// ErrorMessage — sent to a single client on a non-fatal error.
// ──────────────────────────────────────────────────────────────────────────────

// ErrorMessage is sent directly to one client (not broadcast).
type ErrorMessage struct {
	Type    MsgType `json:"type"`
	Code    string  `json:"code"`
	Message string  `json:"message"`
}
