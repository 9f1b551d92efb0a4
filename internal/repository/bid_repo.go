package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/autolot/auction/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// BidRepository handles all database operations for the bid ledger and the
// proxy ceiling registry.
type BidRepository struct {
	db *sqlx.DB
}

// NewBidRepository creates a new BidRepository.
func NewBidRepository(db *sqlx.DB) *BidRepository {
	return &BidRepository{db: db}
}

// ──────────────────────────────────────────────────────────────────────────────
// Bid ledger
// ──────────────────────────────────────────────────────────────────────────────

// Create appends a bid to the ledger inside an existing transaction.
func (r *BidRepository) Create(ctx context.Context, tx *sqlx.Tx, b *domain.Bid) error {
	query := `
		INSERT INTO bids (id, lot_id, bidder_id, amount, kind, status, created_at)
		VALUES (:id, :lot_id, :bidder_id, :amount, :kind, :status, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, b); err != nil {
		return fmt.Errorf("bid_repo.Create: %w", err)
	}
	return nil
}

// OutbidActive transitions every currently leading bid on the lot to outbid,
// inside the acceptance transaction. Called immediately before the new
// leader is inserted so exactly one bid stays active per lot.
func (r *BidRepository) OutbidActive(ctx context.Context, tx *sqlx.Tx, lotID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE bids
		SET status = 'outbid'
		WHERE lot_id = $1 AND status IN ('active','winning')`,
		lotID)
	if err != nil {
		return fmt.Errorf("bid_repo.OutbidActive: %w", err)
	}
	return nil
}

// MarkLeaderWon promotes the lot's leading bid to won at settlement.
func (r *BidRepository) MarkLeaderWon(ctx context.Context, tx *sqlx.Tx, lotID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE bids
		SET status = 'won'
		WHERE lot_id = $1 AND status IN ('active','winning')`,
		lotID)
	if err != nil {
		return fmt.Errorf("bid_repo.MarkLeaderWon: %w", err)
	}
	return nil
}

// GetByLot returns the lot's full bid history, newest first.
func (r *BidRepository) GetByLot(ctx context.Context, lotID uuid.UUID, limit, offset int) ([]*domain.Bid, error) {
	var bids []*domain.Bid
	err := r.db.SelectContext(ctx, &bids,
		`SELECT * FROM bids WHERE lot_id = $1 ORDER BY created_at DESC, amount DESC LIMIT $2 OFFSET $3`,
		lotID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("bid_repo.GetByLot: %w", err)
	}
	return bids, nil
}

// GetByBidder returns a user's bid history, paginated.
func (r *BidRepository) GetByBidder(ctx context.Context, bidderID uuid.UUID, limit, offset int) ([]*domain.Bid, error) {
	var bids []*domain.Bid
	err := r.db.SelectContext(ctx, &bids,
		`SELECT * FROM bids WHERE bidder_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		bidderID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("bid_repo.GetByBidder: %w", err)
	}
	return bids, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Proxy ceiling registry
// ──────────────────────────────────────────────────────────────────────────────

// UpsertMaxBid creates or updates the one ceiling row per (lot, user).
// A re-set ceiling is reactivated and keeps its original creation time, which
// also preserves its position in the equal-ceiling tie-break.
func (r *BidRepository) UpsertMaxBid(ctx context.Context, tx *sqlx.Tx, mb *domain.MaxBid) error {
	query := `
		INSERT INTO max_bids (id, lot_id, user_id, max_amount, is_active, created_at, updated_at)
		VALUES (:id, :lot_id, :user_id, :max_amount, :is_active, :created_at, :updated_at)
		ON CONFLICT (lot_id, user_id) DO UPDATE
		SET max_amount = EXCLUDED.max_amount,
		    is_active  = true,
		    updated_at = EXCLUDED.updated_at`
	if _, err := tx.NamedExecContext(ctx, query, mb); err != nil {
		return fmt.Errorf("bid_repo.UpsertMaxBid: %w", err)
	}
	return nil
}

// GetActiveMaxBids returns the lot's active ceilings, locked for the
// transaction so concurrent resolutions cannot interleave.
func (r *BidRepository) GetActiveMaxBids(ctx context.Context, tx *sqlx.Tx, lotID uuid.UUID) ([]*domain.MaxBid, error) {
	var mbs []*domain.MaxBid
	err := tx.SelectContext(ctx, &mbs,
		`SELECT * FROM max_bids WHERE lot_id = $1 AND is_active = true ORDER BY created_at ASC FOR UPDATE`,
		lotID)
	if err != nil {
		return nil, fmt.Errorf("bid_repo.GetActiveMaxBids: %w", err)
	}
	return mbs, nil
}

// GetMaxBid returns the (lot, user) ceiling regardless of active flag.
func (r *BidRepository) GetMaxBid(ctx context.Context, lotID, userID uuid.UUID) (*domain.MaxBid, error) {
	var mb domain.MaxBid
	err := r.db.GetContext(ctx, &mb,
		`SELECT * FROM max_bids WHERE lot_id = $1 AND user_id = $2`,
		lotID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMaxBidNotFound
		}
		return nil, fmt.Errorf("bid_repo.GetMaxBid: %w", err)
	}
	return &mb, nil
}

// GetMaxBidsByUser returns a user's ceilings across lots, newest first.
func (r *BidRepository) GetMaxBidsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.MaxBid, error) {
	var mbs []*domain.MaxBid
	err := r.db.SelectContext(ctx, &mbs,
		`SELECT * FROM max_bids WHERE user_id = $1 ORDER BY updated_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("bid_repo.GetMaxBidsByUser: %w", err)
	}
	return mbs, nil
}

// DeactivateMaxBids flips is_active off for the given ceiling IDs inside the
// resolution transaction. Rows are kept for audit; never deleted.
func (r *BidRepository) DeactivateMaxBids(ctx context.Context, tx *sqlx.Tx, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(
		`UPDATE max_bids SET is_active = false, updated_at = now() WHERE id IN (?)`, ids)
	if err != nil {
		return fmt.Errorf("bid_repo.DeactivateMaxBids: %w", err)
	}
	query = tx.Rebind(query)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("bid_repo.DeactivateMaxBids: %w", err)
	}
	return nil
}

// CancelMaxBid deactivates a user's own ceiling on a lot. Returns
// ErrMaxBidNotFound when no active ceiling exists.
func (r *BidRepository) CancelMaxBid(ctx context.Context, lotID, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE max_bids
		SET is_active = false, updated_at = now()
		WHERE lot_id = $1 AND user_id = $2 AND is_active = true`,
		lotID, userID)
	if err != nil {
		return fmt.Errorf("bid_repo.CancelMaxBid: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrMaxBidNotFound
	}
	return nil
}

// RecordProxyAmount stores the last amount the engine bid for a ceiling.
func (r *BidRepository) RecordProxyAmount(ctx context.Context, tx *sqlx.Tx, maxBidID uuid.UUID, amount decimal.Decimal, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE max_bids
		SET last_proxy_amount = $1, updated_at = $2
		WHERE id = $3`,
		amount, at, maxBidID)
	if err != nil {
		return fmt.Errorf("bid_repo.RecordProxyAmount: %w", err)
	}
	return nil
}
