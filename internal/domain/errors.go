package domain

import (
	"errors"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sentinel errors — compare with errors.Is()
// ──────────────────────────────────────────────────────────────────────────────

// Auction / lot errors
var (
	// ErrAuctionNotFound is returned when no auction matches the given criteria.
	ErrAuctionNotFound = errors.New("auction not found")

	// ErrAuctionNotScheduled is returned when starting an auction that is not
	// in AuctionScheduled.
	ErrAuctionNotScheduled = errors.New("auction is not in scheduled state")

	// ErrAuctionNotLive is returned when pausing or advancing an auction that
	// is not currently live.
	ErrAuctionNotLive = errors.New("auction is not live")

	// ErrAuctionNotPaused is returned when resuming an auction that is not paused.
	ErrAuctionNotPaused = errors.New("auction is not paused")

	// ErrLotNotFound is returned when no lot matches the given criteria.
	ErrLotNotFound = errors.New("lot not found")

	// ErrLotNotActive is returned when an operation requires a lot in
	// LotActive (bidding, closing) and it is not.
	ErrLotNotActive = errors.New("lot is not open for bidding")

	// ErrLotEnded is returned when a bid arrives after the lot's bidding
	// window has elapsed.
	ErrLotEnded = errors.New("lot bidding window has ended")

	// ErrNoPendingLots is returned when advancing an auction with no pending
	// lot remaining.
	ErrNoPendingLots = errors.New("auction has no pending lots")

	// ErrVehicleNotFound is returned when the referenced vehicle does not exist.
	ErrVehicleNotFound = errors.New("vehicle not found")

	// ErrVehicleAlreadyListed is returned when attaching a vehicle that
	// already has a non-terminal lot.
	ErrVehicleAlreadyListed = errors.New("vehicle is already listed in an auction")
)

// Bid errors
var (
	// ErrBidTooLow is returned when a bid does not clear currentBid + increment.
	ErrBidTooLow = errors.New("bid amount is below the minimum increment")

	// ErrMaxBidTooLow is returned when a proxy ceiling does not clear the
	// minimum next bid.
	ErrMaxBidTooLow = errors.New("maximum bid is below the minimum increment")

	// ErrMaxBidNotFound is returned when cancelling a ceiling that does not exist.
	ErrMaxBidNotFound = errors.New("no active maximum bid for this lot")

	// ErrDailyBidLimit is returned when the bidder's tier quota for the
	// rolling 24h window is exhausted.
	ErrDailyBidLimit = errors.New("daily bid limit reached for your membership tier")

	// ErrInsufficientBuyingPower is returned when the bid exceeds the funds
	// the bidder's wallet can support.
	ErrInsufficientBuyingPower = errors.New("bid exceeds your available buying power")
)

// Settlement errors
var (
	// ErrOrderNumberExhausted is returned when order-number generation runs
	// out of attempts; the settlement must be retried by an admin.
	ErrOrderNumberExhausted = errors.New("could not generate a unique order number")

	// ErrOrderNotFound is returned when no order matches the given criteria.
	ErrOrderNotFound = errors.New("order not found")
)

// User errors
var (
	// ErrUserNotFound is returned when no user matches the given criteria.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned on registration when the email already exists.
	ErrEmailTaken = errors.New("email address is already registered")

	// ErrUsernameTaken is returned on registration when the username already exists.
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrInvalidCredentials is returned when login credentials are wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountInactive is returned when a pending/suspended/banned account
	// attempts a bidding operation.
	ErrAccountInactive = errors.New("account is not in active standing")

	// ErrWalletNotFound is returned when no wallet exists for the requested user.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrMissingSchedule is returned when creating an auction without a
	// scheduled start time.
	ErrMissingSchedule = errors.New("scheduled start time is required")

	// ErrInvalidAuctionType is returned when creating an auction with an
	// unknown sale type.
	ErrInvalidAuctionType = errors.New("invalid auction type")
)

// Auth errors
var (
	// ErrUnauthorized is returned when a valid token is not present.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAdminRequired is returned when a non-admin calls an admin operation.
	ErrAdminRequired = errors.New("admin privileges required")

	// ErrTokenExpired is returned when a JWT has passed its TTL.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenInvalid is returned when a token cannot be parsed or its
	// signature does not match.
	ErrTokenInvalid = errors.New("token is invalid")
)

// ──────────────────────────────────────────────────────────────────────────────
// Helper predicates
// ──────────────────────────────────────────────────────────────────────────────

// notFoundErrors collects all "entity not found" sentinel errors so that
// IsNotFound stays in sync automatically.
var notFoundErrors = []error{
	ErrAuctionNotFound,
	ErrLotNotFound,
	ErrVehicleNotFound,
	ErrUserNotFound,
	ErrWalletNotFound,
	ErrOrderNotFound,
	ErrMaxBidNotFound,
}

// IsNotFound returns true when err (or any error in its chain) is one of the
// domain "not found" errors.
func IsNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsInvalidState returns true for errors caused by an operation against an
// auction or lot that is not in the required status.
func IsInvalidState(err error) bool {
	stateErrors := []error{
		ErrAuctionNotScheduled,
		ErrAuctionNotLive,
		ErrAuctionNotPaused,
		ErrLotNotActive,
		ErrLotEnded,
		ErrNoPendingLots,
		ErrVehicleAlreadyListed,
	}
	for _, target := range stateErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsValidation returns true for bad-input failures the caller can correct
// and resubmit.
func IsValidation(err error) bool {
	validationErrors := []error{
		ErrBidTooLow,
		ErrMaxBidTooLow,
		ErrMissingSchedule,
		ErrInvalidAuctionType,
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsLimit returns true for quota / funds limit failures.
func IsLimit(err error) bool {
	limitErrors := []error{
		ErrDailyBidLimit,
		ErrInsufficientBuyingPower,
	}
	for _, target := range limitErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsAuthError returns true for authentication/authorisation errors.
func IsAuthError(err error) bool {
	authErrors := []error{
		ErrUnauthorized,
		ErrAdminRequired,
		ErrAccountInactive,
		ErrTokenExpired,
		ErrTokenInvalid,
		ErrInvalidCredentials,
	}
	for _, target := range authErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
