package handler

import (
	"errors"
	"net/http"

	"github.com/autolot/auction/internal/api/middleware"
	"github.com/autolot/auction/internal/domain"
	"github.com/autolot/auction/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BidHandler serves bid placement and proxy ceiling endpoints.
type BidHandler struct {
	bidSvc *service.BidService
}

// NewBidHandler creates a BidHandler.
func NewBidHandler(bidSvc *service.BidService) *BidHandler {
	return &BidHandler{bidSvc: bidSvc}
}

// PlaceBid godoc
// POST /api/lots/:id/bids [JWT]
// Body: {"amount":"125000.00"}
func (h *BidHandler) PlaceBid(c *gin.Context) {
	userID := middleware.GetUserID(c)

	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_LOT_ID", "invalid lot id")
		return
	}

	var body struct {
		Amount string `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	amount, err := decimal.NewFromString(body.Amount)
	if err != nil || !amount.IsPositive() {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", "amount must be a positive decimal string")
		return
	}

	result, err := h.bidSvc.PlaceBid(c.Request.Context(), domain.PlaceBidRequest{
		BidderID: userID,
		LotID:    lotID,
		Amount:   amount,
	})
	if err != nil {
		respondBidError(c, err, "could not place bid")
		return
	}
	respondSuccess(c, http.StatusCreated, result)
}

// SetMaxBid godoc
// PUT /api/lots/:id/max-bid [JWT]
// Body: {"max_amount":"250000.00"}
func (h *BidHandler) SetMaxBid(c *gin.Context) {
	userID := middleware.GetUserID(c)

	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_LOT_ID", "invalid lot id")
		return
	}

	var body struct {
		MaxAmount string `json:"max_amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	maxAmount, err := decimal.NewFromString(body.MaxAmount)
	if err != nil || !maxAmount.IsPositive() {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", "max_amount must be a positive decimal string")
		return
	}

	maxBid, lot, err := h.bidSvc.SetMaxBid(c.Request.Context(), lotID, userID, maxAmount)
	if err != nil {
		respondBidError(c, err, "could not set maximum bid")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"max_bid": maxBid,
		"lot":     lot.ToSummary(),
	})
}

// CancelMaxBid godoc
// DELETE /api/lots/:id/max-bid [JWT]
func (h *BidHandler) CancelMaxBid(c *gin.Context) {
	userID := middleware.GetUserID(c)

	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_LOT_ID", "invalid lot id")
		return
	}

	if err := h.bidSvc.CancelMaxBid(c.Request.Context(), lotID, userID); err != nil {
		if errors.Is(err, domain.ErrMaxBidNotFound) {
			respondError(c, http.StatusNotFound, "ERR_MAX_BID_NOT_FOUND", domain.ErrMaxBidNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not cancel maximum bid")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"cancelled": true})
}

// GetMyBids godoc
// GET /api/bids/my?page=1&limit=20 [JWT]
func (h *BidHandler) GetMyBids(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	bids, err := h.bidSvc.GetMyBids(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch bids")
		return
	}
	respondList(c, bids, len(bids), page, limit)
}

// GetMyMaxBids godoc
// GET /api/max-bids/my?page=1&limit=20 [JWT]
func (h *BidHandler) GetMyMaxBids(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	maxBids, err := h.bidSvc.GetMyMaxBids(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch maximum bids")
		return
	}
	respondList(c, maxBids, len(maxBids), page, limit)
}

// GetLotBids godoc
// GET /api/lots/:id/bids?page=1&limit=20 (public)
func (h *BidHandler) GetLotBids(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_LOT_ID", "invalid lot id")
		return
	}
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	bids, err := h.bidSvc.GetLotBids(c.Request.Context(), lotID, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch bid history")
		return
	}
	respondList(c, bids, len(bids), page, limit)
}

// respondBidError maps the bid precondition chain's domain errors onto HTTP
// statuses. Order mirrors the chain so clients see the first failure.
func respondBidError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrAccountInactive):
		respondError(c, http.StatusForbidden, "ERR_ACCOUNT_INACTIVE", domain.ErrAccountInactive.Error())
	case errors.Is(err, domain.ErrLotNotFound):
		respondError(c, http.StatusNotFound, "ERR_LOT_NOT_FOUND", domain.ErrLotNotFound.Error())
	case errors.Is(err, domain.ErrLotNotActive):
		respondError(c, http.StatusConflict, "ERR_LOT_NOT_ACTIVE", domain.ErrLotNotActive.Error())
	case errors.Is(err, domain.ErrLotEnded):
		respondError(c, http.StatusConflict, "ERR_LOT_ENDED", domain.ErrLotEnded.Error())
	case errors.Is(err, domain.ErrAuctionNotLive):
		respondError(c, http.StatusConflict, "ERR_AUCTION_NOT_LIVE", domain.ErrAuctionNotLive.Error())
	case errors.Is(err, domain.ErrBidTooLow):
		respondError(c, http.StatusBadRequest, "ERR_BID_TOO_LOW", domain.ErrBidTooLow.Error())
	case errors.Is(err, domain.ErrMaxBidTooLow):
		respondError(c, http.StatusBadRequest, "ERR_MAX_BID_TOO_LOW", domain.ErrMaxBidTooLow.Error())
	case errors.Is(err, domain.ErrInsufficientBuyingPower):
		respondError(c, http.StatusPaymentRequired, "ERR_INSUFFICIENT_BUYING_POWER", domain.ErrInsufficientBuyingPower.Error())
	case errors.Is(err, domain.ErrDailyBidLimit):
		respondError(c, http.StatusTooManyRequests, "ERR_DAILY_BID_LIMIT", domain.ErrDailyBidLimit.Error())
	default:
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", fallback)
	}
}
