package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/autolot/auction/internal/domain"
	"github.com/autolot/auction/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuctionHandler serves the public auction and lot read endpoints.
type AuctionHandler struct {
	auctionSvc *service.AuctionService
}

// NewAuctionHandler creates an AuctionHandler.
func NewAuctionHandler(auctionSvc *service.AuctionService) *AuctionHandler {
	return &AuctionHandler{auctionSvc: auctionSvc}
}

// ListAuctions godoc
// GET /api/auctions?page=1&limit=20&status=live
func (h *AuctionHandler) ListAuctions(c *gin.Context) {
	page, limit := parsePagination(c)
	offset := (page - 1) * limit
	status := c.Query("status")

	auctions, total, err := h.auctionSvc.ListAuctions(c.Request.Context(), limit, offset, status)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch auctions")
		return
	}
	respondList(c, auctions, total, page, limit)
}

// GetAuction godoc
// GET /api/auctions/:id
func (h *AuctionHandler) GetAuction(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AUCTION_ID", "invalid auction id")
		return
	}

	auction, lots, err := h.auctionSvc.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		if errors.Is(err, domain.ErrAuctionNotFound) {
			respondError(c, http.StatusNotFound, "ERR_AUCTION_NOT_FOUND", domain.ErrAuctionNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch auction")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"auction": auction,
		"lots":    lots,
	})
}

// GetActiveLots godoc
// GET /api/lots/active
func (h *AuctionHandler) GetActiveLots(c *gin.Context) {
	lots, err := h.auctionSvc.GetActiveLots(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch active lots")
		return
	}

	summaries := make([]domain.LotSummary, 0, len(lots))
	for _, lot := range lots {
		summaries = append(summaries, lot.ToSummary())
	}
	respondSuccess(c, http.StatusOK, summaries)
}

// GetLot godoc
// GET /api/lots/:id
func (h *AuctionHandler) GetLot(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_LOT_ID", "invalid lot id")
		return
	}

	lot, err := h.auctionSvc.GetLot(c.Request.Context(), lotID)
	if err != nil {
		if errors.Is(err, domain.ErrLotNotFound) {
			respondError(c, http.StatusNotFound, "ERR_LOT_NOT_FOUND", domain.ErrLotNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch lot")
		return
	}

	// The reserve price itself is confidential; the summary only exposes
	// whether it is met.
	respondSuccess(c, http.StatusOK, lot.ToSummary())
}

// ── Shared pagination helper ──────────────────────────────────────────────────

// parsePagination extracts ?page and ?limit with sane bounds.
func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return
}
