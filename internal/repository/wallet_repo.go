package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/autolot/auction/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// WalletRepository reads buying power from the wallet subsystem's tables.
// Debits, deposits and escrow are owned by that subsystem; this core only
// checks that a bid is covered.
type WalletRepository struct {
	db *sqlx.DB
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetByUserID fetches the wallet belonging to a specific user.
func (r *WalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	var w domain.Wallet
	err := r.db.GetContext(ctx, &w, `SELECT * FROM wallets WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, fmt.Errorf("wallet_repo.GetByUserID: %w", err)
	}
	return &w, nil
}

// GetBuyingPower returns the amount the user's wallet can currently support,
// read inside the bid acceptance transaction. A missing wallet reads as zero
// buying power rather than an error: the bid simply fails the funds check.
func (r *WalletRepository) GetBuyingPower(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (decimal.Decimal, error) {
	var available decimal.Decimal
	err := tx.GetContext(ctx, &available,
		`SELECT (balance - locked) FROM wallets WHERE user_id = $1`,
		userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("wallet_repo.GetBuyingPower: %w", err)
	}
	return available, nil
}
