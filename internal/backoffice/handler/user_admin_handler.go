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

// UserAdminHandler serves /admin/users endpoints.
type UserAdminHandler struct {
	userRepo   *repository.UserRepository
	walletRepo *repository.WalletRepository
	cfg        *config.Config
}

// NewUserAdminHandler creates a UserAdminHandler.
func NewUserAdminHandler(
	userRepo *repository.UserRepository,
	walletRepo *repository.WalletRepository,
	cfg *config.Config,
) *UserAdminHandler {
	return &UserAdminHandler{userRepo: userRepo, walletRepo: walletRepo, cfg: cfg}
}

// List godoc
// GET /admin/users?page=1&limit=50
func (h *UserAdminHandler) List(c *gin.Context) {
	page, limit := adminPagination(c)
	offset := (page - 1) * limit

	users, total, err := h.userRepo.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondList(c, users, total, page, limit)
}

// Detail godoc
// GET /admin/users/:id
func (h *UserAdminHandler) Detail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid user id")
		return
	}

	ctx := c.Request.Context()
	user, err := h.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	wallet, _ := h.walletRepo.GetByUserID(ctx, id)

	respondSuccess(c, http.StatusOK, gin.H{
		"user":   user,
		"wallet": wallet,
	})
}

// Suspend godoc
// POST /admin/users/:id/suspend
// A suspended account fails every bid precondition until reactivated.
func (h *UserAdminHandler) Suspend(c *gin.Context) {
	h.setStatus(c, domain.AccountSuspended)
}

// Activate godoc
// POST /admin/users/:id/activate
func (h *UserAdminHandler) Activate(c *gin.Context) {
	h.setStatus(c, domain.AccountActive)
}

// Ban godoc
// POST /admin/users/:id/ban
func (h *UserAdminHandler) Ban(c *gin.Context) {
	h.setStatus(c, domain.AccountBanned)
}

func (h *UserAdminHandler) setStatus(c *gin.Context, status domain.AccountStatus) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid user id")
		return
	}
	if err = h.userRepo.SetStatus(c.Request.Context(), id, status); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user_id": id, "status": status})
}

// SetTier godoc
// POST /admin/users/:id/tier
// Body: {"tier": "premier"}
func (h *UserAdminHandler) SetTier(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid user id")
		return
	}
	var body struct {
		Tier string `json:"tier" binding:"required"`
	}
	if err = c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	tier := domain.MembershipTier(body.Tier)
	switch tier {
	case domain.TierGuest, domain.TierBasic, domain.TierPremier, domain.TierBusiness:
	default:
		respondError(c, http.StatusBadRequest, "ERR_INVALID_TIER", "tier must be one of: guest, basic, premier, business")
		return
	}

	if err = h.userRepo.SetTier(c.Request.Context(), id, tier); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user_id": id, "tier": tier})
}

// SetRole godoc
// POST /admin/users/:id/role
// Body: {"role": "admin"}
func (h *UserAdminHandler) SetRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid user id")
		return
	}
	var body struct {
		Role string `json:"role" binding:"required"`
	}
	if err = c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	role := domain.UserRole(body.Role)
	switch role {
	case domain.RoleUser, domain.RoleAdmin, domain.RoleSuperAdmin:
	default:
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ROLE", "role must be one of: user, admin, superadmin")
		return
	}

	// Only a superadmin may grant or revoke admin roles.
	if c.GetString("role") != string(domain.RoleSuperAdmin) {
		respondError(c, http.StatusForbidden, "ERR_FORBIDDEN", "superadmin role required")
		return
	}

	if err = h.userRepo.SetRole(c.Request.Context(), id, role); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user_id": id, "role": role})
}
