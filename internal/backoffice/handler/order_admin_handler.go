package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/autolot/auction/internal/config"
	"github.com/autolot/auction/internal/domain"
	"github.com/autolot/auction/internal/repository"
)

// OrderAdminHandler serves /admin/orders endpoints.
type OrderAdminHandler struct {
	orderRepo *repository.OrderRepository
	cfg       *config.Config
}

// NewOrderAdminHandler creates an OrderAdminHandler.
func NewOrderAdminHandler(orderRepo *repository.OrderRepository, cfg *config.Config) *OrderAdminHandler {
	return &OrderAdminHandler{orderRepo: orderRepo, cfg: cfg}
}

// List godoc
// GET /admin/orders?page=1&limit=50&status=pending_payment
func (h *OrderAdminHandler) List(c *gin.Context) {
	page, limit := adminPagination(c)
	offset := (page - 1) * limit

	orders, total, err := h.orderRepo.List(c.Request.Context(), limit, offset, c.Query("status"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondList(c, orders, total, page, limit)
}

// Detail godoc
// GET /admin/orders/:id
func (h *OrderAdminHandler) Detail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid order id")
		return
	}

	order, err := h.orderRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, order)
}
