package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/autolot/auction/internal/config"
	"github.com/autolot/auction/internal/domain"
	"github.com/autolot/auction/internal/service"
)

// AuctionAdminHandler serves /admin/auctions endpoints.
type AuctionAdminHandler struct {
	auctionSvc *service.AuctionService
	cfg        *config.Config
}

// NewAuctionAdminHandler creates an AuctionAdminHandler.
func NewAuctionAdminHandler(auctionSvc *service.AuctionService, cfg *config.Config) *AuctionAdminHandler {
	return &AuctionAdminHandler{auctionSvc: auctionSvc, cfg: cfg}
}

// List godoc
// GET /admin/auctions?page=1&limit=50&status=live
func (h *AuctionAdminHandler) List(c *gin.Context) {
	page, limit := adminPagination(c)
	offset := (page - 1) * limit

	auctions, total, err := h.auctionSvc.ListAuctions(c.Request.Context(), limit, offset, c.Query("status"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondList(c, auctions, total, page, limit)
}

// Detail godoc
// GET /admin/auctions/:id
// Returns the auction with its full lot list, reserve prices included.
func (h *AuctionAdminHandler) Detail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	auction, lots, err := h.auctionSvc.GetAuction(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrAuctionNotFound) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"auction": auction,
		"lots":    lots,
	})
}

// Create godoc
// POST /admin/auctions
// Body: {"name": "...", "type": "live", "scheduled_start": "...", ...}
func (h *AuctionAdminHandler) Create(c *gin.Context) {
	var req service.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	auction, err := h.auctionSvc.CreateAuction(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingSchedule), errors.Is(err, domain.ErrInvalidAuctionType):
			respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		}
		return
	}
	respondSuccess(c, http.StatusCreated, auction)
}

// AddLot godoc
// POST /admin/auctions/:id/lots
// Body: {"vehicle_id": "...", "bid_increment": "250", "duration_sec": 300}
func (h *AuctionAdminHandler) AddLot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	var req service.AddLotRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	lot, err := h.auctionSvc.AddLot(c.Request.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAuctionNotFound), errors.Is(err, domain.ErrVehicleNotFound):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
		case errors.Is(err, domain.ErrAuctionNotLive):
			respondError(c, http.StatusConflict, "ERR_AUCTION_ENDED", err.Error())
		case errors.Is(err, domain.ErrVehicleAlreadyListed):
			respondError(c, http.StatusConflict, "ERR_VEHICLE_LISTED", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		}
		return
	}
	respondSuccess(c, http.StatusCreated, lot)
}

// Start godoc
// POST /admin/auctions/:id/start
// Manually opens a scheduled auction ahead of its scheduled time.
func (h *AuctionAdminHandler) Start(c *gin.Context) {
	h.transition(c, h.auctionSvc.StartAuction, "live")
}

// Pause godoc
// POST /admin/auctions/:id/pause
func (h *AuctionAdminHandler) Pause(c *gin.Context) {
	h.transition(c, h.auctionSvc.PauseAuction, "paused")
}

// Resume godoc
// POST /admin/auctions/:id/resume
// The interrupted lot gets a fresh full bidding window.
func (h *AuctionAdminHandler) Resume(c *gin.Context) {
	h.transition(c, h.auctionSvc.ResumeAuction, "live")
}

// AdvanceLot godoc
// POST /admin/auctions/:id/advance
// Hammers the current lot: settles it and activates the next pending lot.
func (h *AuctionAdminHandler) AdvanceLot(c *gin.Context) {
	h.transition(c, h.auctionSvc.AdvanceLot, "advanced")
}

// transition parses the auction id, applies the state change, and maps
// service errors onto admin API responses.
func (h *AuctionAdminHandler) transition(c *gin.Context, fn func(ctx context.Context, auctionID uuid.UUID) error, status string) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	if err = fn(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, domain.ErrAuctionNotFound):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
		case errors.Is(err, domain.ErrAuctionNotScheduled),
			errors.Is(err, domain.ErrAuctionNotLive),
			errors.Is(err, domain.ErrAuctionNotPaused),
			errors.Is(err, domain.ErrNoPendingLots),
			errors.Is(err, domain.ErrLotNotActive):
			respondError(c, http.StatusConflict, "ERR_INVALID_STATE", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		}
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"auction_id": id, "status": status})
}
