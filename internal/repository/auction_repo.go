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
)

// AuctionRepository handles all database operations for Auctions.
type AuctionRepository struct {
	db *sqlx.DB
}

// NewAuctionRepository creates a new AuctionRepository.
func NewAuctionRepository(db *sqlx.DB) *AuctionRepository {
	return &AuctionRepository{db: db}
}

// Create inserts a new auction row.
func (r *AuctionRepository) Create(ctx context.Context, a *domain.Auction) error {
	query := `
		INSERT INTO auctions
			(id, name, type, status, bid_increment, lot_duration_sec, scheduled_start, scheduled_end,
			 total_lots, sold_lots, total_bids, created_at, updated_at)
		VALUES
			(:id, :name, :type, :status, :bid_increment, :lot_duration_sec, :scheduled_start, :scheduled_end,
			 :total_lots, :sold_lots, :total_bids, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("auction_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches an auction by its primary key.
func (r *AuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	var a domain.Auction
	err := r.db.GetContext(ctx, &a, `SELECT * FROM auctions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("auction_repo.GetByID: %w", err)
	}
	return &a, nil
}

// GetByIDTx fetches an auction through an existing transaction, so callers
// already holding a lot lock read the auction from the same snapshot.
func (r *AuctionRepository) GetByIDTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*domain.Auction, error) {
	var a domain.Auction
	err := tx.GetContext(ctx, &a, `SELECT * FROM auctions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("auction_repo.GetByIDTx: %w", err)
	}
	return &a, nil
}

// GetDueScheduled returns auctions still in AuctionScheduled whose scheduled
// start has passed (i.e. due to go live).
func (r *AuctionRepository) GetDueScheduled(ctx context.Context, now time.Time) ([]*domain.Auction, error) {
	var auctions []*domain.Auction
	err := r.db.SelectContext(ctx, &auctions,
		`SELECT * FROM auctions WHERE status = 'scheduled' AND scheduled_start <= $1 ORDER BY scheduled_start ASC`,
		now)
	if err != nil {
		return nil, fmt.Errorf("auction_repo.GetDueScheduled: %w", err)
	}
	return auctions, nil
}

// MarkLive transitions a scheduled auction to live and records actual_start.
// Guarded by the status precondition so overlapping sweeps cannot double-start.
func (r *AuctionRepository) MarkLive(ctx context.Context, tx *sqlx.Tx, auctionID uuid.UUID, now time.Time) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE auctions
		SET status       = 'live',
		    actual_start = $1,
		    updated_at   = now()
		WHERE id = $2 AND status = 'scheduled'`,
		now, auctionID)
	if err != nil {
		return fmt.Errorf("auction_repo.MarkLive: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAuctionNotScheduled
	}
	return nil
}

// MarkEnded transitions a live auction to ended and records actual_end.
func (r *AuctionRepository) MarkEnded(ctx context.Context, tx *sqlx.Tx, auctionID uuid.UUID, now time.Time) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE auctions
		SET status     = 'ended',
		    actual_end = $1,
		    updated_at = now()
		WHERE id = $2 AND status IN ('live','paused')`,
		now, auctionID)
	if err != nil {
		return fmt.Errorf("auction_repo.MarkEnded: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAuctionNotLive
	}
	return nil
}

// SetPaused toggles live ⇄ paused. paused=true requires the auction to be
// live; paused=false requires it to be paused.
func (r *AuctionRepository) SetPaused(ctx context.Context, auctionID uuid.UUID, paused bool) error {
	var query string
	var guardErr error
	if paused {
		query = `UPDATE auctions SET status = 'paused', updated_at = now() WHERE id = $1 AND status = 'live'`
		guardErr = domain.ErrAuctionNotLive
	} else {
		query = `UPDATE auctions SET status = 'live', updated_at = now() WHERE id = $1 AND status = 'paused'`
		guardErr = domain.ErrAuctionNotPaused
	}
	res, err := r.db.ExecContext(ctx, query, auctionID)
	if err != nil {
		return fmt.Errorf("auction_repo.SetPaused: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return guardErr
	}
	return nil
}

// IncrementTotalBids bumps the auction's aggregate bid counter inside an
// existing transaction.
func (r *AuctionRepository) IncrementTotalBids(ctx context.Context, tx *sqlx.Tx, auctionID uuid.UUID, by int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE auctions SET total_bids = total_bids + $1, updated_at = now() WHERE id = $2`,
		by, auctionID)
	if err != nil {
		return fmt.Errorf("auction_repo.IncrementTotalBids: %w", err)
	}
	return nil
}

// RecordLotAttached bumps total_lots when an admin attaches a vehicle.
func (r *AuctionRepository) RecordLotAttached(ctx context.Context, tx *sqlx.Tx, auctionID uuid.UUID) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE auctions SET total_lots = total_lots + 1, updated_at = now() WHERE id = $1`,
		auctionID)
	if err != nil {
		return fmt.Errorf("auction_repo.RecordLotAttached: %w", err)
	}
	return nil
}

// RecordLotSold bumps sold_lots when settlement closes a lot as sold.
func (r *AuctionRepository) RecordLotSold(ctx context.Context, tx *sqlx.Tx, auctionID uuid.UUID) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE auctions SET sold_lots = sold_lots + 1, updated_at = now() WHERE id = $1`,
		auctionID)
	if err != nil {
		return fmt.Errorf("auction_repo.RecordLotSold: %w", err)
	}
	return nil
}

// List returns a paginated slice of auctions filtered by optional status.
// status="" returns all statuses. Returns (auctions, totalCount, error).
func (r *AuctionRepository) List(ctx context.Context, limit, offset int, status string) ([]*domain.Auction, int, error) {
	var auctions []*domain.Auction
	var total int

	if status != "" {
		if err := r.db.GetContext(ctx, &total,
			`SELECT COUNT(*) FROM auctions WHERE status = $1`, status); err != nil {
			return nil, 0, fmt.Errorf("auction_repo.List count: %w", err)
		}
		if err := r.db.SelectContext(ctx, &auctions,
			`SELECT * FROM auctions WHERE status = $1 ORDER BY scheduled_start DESC LIMIT $2 OFFSET $3`,
			status, limit, offset); err != nil {
			return nil, 0, fmt.Errorf("auction_repo.List select: %w", err)
		}
	} else {
		if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM auctions`); err != nil {
			return nil, 0, fmt.Errorf("auction_repo.List count: %w", err)
		}
		if err := r.db.SelectContext(ctx, &auctions,
			`SELECT * FROM auctions ORDER BY scheduled_start DESC LIMIT $1 OFFSET $2`,
			limit, offset); err != nil {
			return nil, 0, fmt.Errorf("auction_repo.List select: %w", err)
		}
	}
	return auctions, total, nil
}

// GetLiveAuctions returns every auction currently live, oldest first.
func (r *AuctionRepository) GetLiveAuctions(ctx context.Context) ([]*domain.Auction, error) {
	var auctions []*domain.Auction
	err := r.db.SelectContext(ctx, &auctions,
		`SELECT * FROM auctions WHERE status = 'live' ORDER BY actual_start ASC`)
	if err != nil {
		return nil, fmt.Errorf("auction_repo.GetLiveAuctions: %w", err)
	}
	return auctions, nil
}
