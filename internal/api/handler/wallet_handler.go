package handler

import (
	"errors"
	"net/http"

	"github.com/autolot/auction/internal/api/middleware"
	"github.com/autolot/auction/internal/domain"
	"github.com/autolot/auction/internal/repository"
	"github.com/gin-gonic/gin"
)

// WalletHandler exposes the read-only wallet view this core needs. Deposits,
// withdrawals, and escrow are owned by the wallet subsystem.
type WalletHandler struct {
	walletRepo *repository.WalletRepository
}

// NewWalletHandler creates a WalletHandler.
func NewWalletHandler(walletRepo *repository.WalletRepository) *WalletHandler {
	return &WalletHandler{walletRepo: walletRepo}
}

// GetBalance godoc
// GET /api/wallet/balance [JWT]
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)

	wallet, err := h.walletRepo.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrWalletNotFound) {
			respondError(c, http.StatusNotFound, "ERR_WALLET_NOT_FOUND", domain.ErrWalletNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch wallet")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"balance":      wallet.Balance,
		"locked":       wallet.Locked,
		"buying_power": wallet.BuyingPower(),
	})
}
