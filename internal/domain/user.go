package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// UserRole
// ──────────────────────────────────────────────────────────────────────────────

// UserRole controls access to the admin mutation surface.
type UserRole string

const (
	RoleUser       UserRole = "user"       // standard bidder
	RoleAdmin      UserRole = "admin"      // auction management
	RoleSuperAdmin UserRole = "superadmin" // full back-office access
)

// IsAdmin returns true for roles allowed to call admin operations.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// ──────────────────────────────────────────────────────────────────────────────
// AccountStatus
// ──────────────────────────────────────────────────────────────────────────────

// AccountStatus is the standing of a user's account.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountPending   AccountStatus = "pending" // awaiting identity verification
	AccountSuspended AccountStatus = "suspended"
	AccountBanned    AccountStatus = "banned"
)

// CanBid returns true only for accounts in good standing.
func (s AccountStatus) CanBid() bool {
	return s == AccountActive
}

// ──────────────────────────────────────────────────────────────────────────────
// User
// ──────────────────────────────────────────────────────────────────────────────

// User is the domain entity for registered accounts. The identity/KYC
// workflow itself lives outside this core; only the fields bidding depends on
// are modelled here.
type User struct {
	ID               uuid.UUID      `json:"id"                  db:"id"`
	Email            string         `json:"email"               db:"email"`
	Username         string         `json:"username"            db:"username"`
	PasswordHash     string         `json:"-"                   db:"password_hash"` // never serialised
	Role             UserRole       `json:"role"                db:"role"`
	Status           AccountStatus  `json:"status"              db:"status"`
	Tier             MembershipTier `json:"tier"                db:"tier"`
	DailyBidsUsed    int            `json:"daily_bids_used"     db:"daily_bids_used"`
	DailyBidsResetAt time.Time      `json:"daily_bids_reset_at" db:"daily_bids_reset_at"`
	CreatedAt        time.Time      `json:"created_at"          db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"          db:"updated_at"`
}

// PublicProfile returns a user view safe to expose via API.
type PublicProfile struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	Username  string         `json:"username"`
	Role      UserRole       `json:"role"`
	Status    AccountStatus  `json:"status"`
	Tier      MembershipTier `json:"tier"`
	CreatedAt time.Time      `json:"created_at"`
}

// ToPublicProfile converts a User to its public-safe representation.
func (u *User) ToPublicProfile() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role,
		Status:    u.Status,
		Tier:      u.Tier,
		CreatedAt: u.CreatedAt,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Wallet
// ──────────────────────────────────────────────────────────────────────────────

// Wallet holds a user's funds. Deposits, escrow and payment processing are
// owned by the wallet subsystem; this core only reads buying power.
type Wallet struct {
	ID        uuid.UUID       `json:"id"         db:"id"`
	UserID    uuid.UUID       `json:"user_id"    db:"user_id"`
	Balance   decimal.Decimal `json:"balance"    db:"balance"`
	Locked    decimal.Decimal `json:"locked"     db:"locked"` // reserved by the wallet subsystem
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// BuyingPower returns the amount the wallet can currently support bidding.
func (w *Wallet) BuyingPower() decimal.Decimal {
	return w.Balance.Sub(w.Locked)
}
