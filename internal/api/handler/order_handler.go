package handler

import (
	"errors"
	"net/http"

	"github.com/autolot/auction/internal/api/middleware"
	"github.com/autolot/auction/internal/domain"
	"github.com/autolot/auction/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler lets winners retrieve the orders settlement created for them.
type OrderHandler struct {
	orderRepo *repository.OrderRepository
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(orderRepo *repository.OrderRepository) *OrderHandler {
	return &OrderHandler{orderRepo: orderRepo}
}

// GetMyOrders godoc
// GET /api/orders/my?page=1&limit=20 [JWT]
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	orders, err := h.orderRepo.GetByWinner(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch orders")
		return
	}
	respondList(c, orders, len(orders), page, limit)
}

// GetOrder godoc
// GET /api/orders/:id [JWT]
// Only the winner may view their own order.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID := middleware.GetUserID(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ORDER_ID", "invalid order id")
		return
	}

	order, err := h.orderRepo.GetByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			respondError(c, http.StatusNotFound, "ERR_ORDER_NOT_FOUND", domain.ErrOrderNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch order")
		return
	}
	if order.WinnerID != userID {
		respondError(c, http.StatusForbidden, "ERR_FORBIDDEN", "this order does not belong to you")
		return
	}
	respondSuccess(c, http.StatusOK, order)
}
