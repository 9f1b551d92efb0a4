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

// LotRepository handles all database operations for AuctionLots.
type LotRepository struct {
	db *sqlx.DB
}

// NewLotRepository creates a new LotRepository.
func NewLotRepository(db *sqlx.DB) *LotRepository {
	return &LotRepository{db: db}
}

// Create inserts a new lot row inside an existing transaction.
func (r *LotRepository) Create(ctx context.Context, tx *sqlx.Tx, l *domain.AuctionLot) error {
	query := `
		INSERT INTO auction_lots
			(id, auction_id, vehicle_id, lot_order, status, current_bid, bid_count, reserve_met,
			 starting_bid, reserve_price, buy_now_price, bid_increment, duration_sec, created_at, updated_at)
		VALUES
			(:id, :auction_id, :vehicle_id, :lot_order, :status, :current_bid, :bid_count, :reserve_met,
			 :starting_bid, :reserve_price, :buy_now_price, :bid_increment, :duration_sec, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, l); err != nil {
		return fmt.Errorf("lot_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches a lot by its primary key.
func (r *LotRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AuctionLot, error) {
	var l domain.AuctionLot
	err := r.db.GetContext(ctx, &l, `SELECT * FROM auction_lots WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLotNotFound
		}
		return nil, fmt.Errorf("lot_repo.GetByID: %w", err)
	}
	return &l, nil
}

// GetForUpdate locks the lot row for the duration of the transaction and
// returns its current state. Every bid acceptance and every lifecycle
// transition funnels through this lock, serializing work per lot.
func (r *LotRepository) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*domain.AuctionLot, error) {
	var l domain.AuctionLot
	err := tx.GetContext(ctx, &l, `SELECT * FROM auction_lots WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLotNotFound
		}
		return nil, fmt.Errorf("lot_repo.GetForUpdate: %w", err)
	}
	return &l, nil
}

// GetByAuction returns all lots of an auction in sale order.
func (r *LotRepository) GetByAuction(ctx context.Context, auctionID uuid.UUID) ([]*domain.AuctionLot, error) {
	var lots []*domain.AuctionLot
	err := r.db.SelectContext(ctx, &lots,
		`SELECT * FROM auction_lots WHERE auction_id = $1 ORDER BY lot_order ASC`,
		auctionID)
	if err != nil {
		return nil, fmt.Errorf("lot_repo.GetByAuction: %w", err)
	}
	return lots, nil
}

// GetActiveLots returns every lot currently accepting bids, across auctions.
func (r *LotRepository) GetActiveLots(ctx context.Context) ([]*domain.AuctionLot, error) {
	var lots []*domain.AuctionLot
	err := r.db.SelectContext(ctx, &lots,
		`SELECT * FROM auction_lots WHERE status = 'active' ORDER BY ends_at ASC NULLS LAST`)
	if err != nil {
		return nil, fmt.Errorf("lot_repo.GetActiveLots: %w", err)
	}
	return lots, nil
}

// GetExpiredActive returns active lots whose bidding window has elapsed
// (i.e. due for closure by the sweep).
func (r *LotRepository) GetExpiredActive(ctx context.Context, now time.Time) ([]*domain.AuctionLot, error) {
	var lots []*domain.AuctionLot
	err := r.db.SelectContext(ctx, &lots,
		`SELECT * FROM auction_lots WHERE status = 'active' AND ends_at IS NOT NULL AND ends_at <= $1 ORDER BY ends_at ASC`,
		now)
	if err != nil {
		return nil, fmt.Errorf("lot_repo.GetExpiredActive: %w", err)
	}
	return lots, nil
}

// NextPending returns the lowest-ordered pending lot of an auction, locked
// for the transaction. Returns ErrNoPendingLots when none remains.
func (r *LotRepository) NextPending(ctx context.Context, tx *sqlx.Tx, auctionID uuid.UUID) (*domain.AuctionLot, error) {
	var l domain.AuctionLot
	err := tx.GetContext(ctx, &l, `
		SELECT * FROM auction_lots
		WHERE auction_id = $1 AND status = 'pending'
		ORDER BY lot_order ASC
		LIMIT 1
		FOR UPDATE`,
		auctionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoPendingLots
		}
		return nil, fmt.Errorf("lot_repo.NextPending: %w", err)
	}
	return &l, nil
}

// CountPending returns how many pending lots remain in an auction. Read
// inside the close transaction so the end-of-auction decision sees the same
// snapshot as the rotation.
func (r *LotRepository) CountPending(ctx context.Context, tx *sqlx.Tx, auctionID uuid.UUID) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM auction_lots WHERE auction_id = $1 AND status = 'pending'`,
		auctionID)
	if err != nil {
		return 0, fmt.Errorf("lot_repo.CountPending: %w", err)
	}
	return count, nil
}

// NextLotOrder returns the next free lot_order for an auction.
func (r *LotRepository) NextLotOrder(ctx context.Context, tx *sqlx.Tx, auctionID uuid.UUID) (int, error) {
	var next int
	err := tx.GetContext(ctx, &next,
		`SELECT COALESCE(MAX(lot_order), 0) + 1 FROM auction_lots WHERE auction_id = $1`,
		auctionID)
	if err != nil {
		return 0, fmt.Errorf("lot_repo.NextLotOrder: %w", err)
	}
	return next, nil
}

// Activate transitions a pending lot to active and stamps its bidding window.
// The status precondition makes overlapping sweep ticks and admin calls safe:
// at most one caller performs the activation.
func (r *LotRepository) Activate(ctx context.Context, tx *sqlx.Tx, lotID uuid.UUID, startsAt, endsAt time.Time) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE auction_lots
		SET status     = 'active',
		    starts_at  = $1,
		    ends_at    = $2,
		    updated_at = now()
		WHERE id = $3 AND status = 'pending'`,
		startsAt, endsAt, lotID)
	if err != nil {
		return fmt.Errorf("lot_repo.Activate: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrLotNotActive
	}
	return nil
}

// ResetWindow gives an active lot a fresh closing time. Used when a paused
// auction resumes so the interrupted lot gets its clock back.
func (r *LotRepository) ResetWindow(ctx context.Context, tx *sqlx.Tx, lotID uuid.UUID, endsAt time.Time) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE auction_lots
		SET ends_at    = $1,
		    updated_at = now()
		WHERE id = $2 AND status = 'active'`,
		endsAt, lotID)
	if err != nil {
		return fmt.Errorf("lot_repo.ResetWindow: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrLotNotActive
	}
	return nil
}

// ApplyBid updates the lot's price, leader, bid count and reserve flag after
// a bid is accepted, inside the acceptance transaction. currentBid never
// decreases: the caller has already validated amount against the locked row.
func (r *LotRepository) ApplyBid(ctx context.Context, tx *sqlx.Tx, lotID uuid.UUID, bidderID uuid.UUID, amount decimal.Decimal, reserveMet bool) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE auction_lots
		SET current_bid       = $1,
		    current_bidder_id = $2,
		    bid_count         = bid_count + 1,
		    reserve_met       = $3,
		    updated_at        = now()
		WHERE id = $4 AND status = 'active' AND current_bid <= $1`,
		amount, bidderID, reserveMet, lotID)
	if err != nil {
		return fmt.Errorf("lot_repo.ApplyBid: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrLotNotActive
	}
	return nil
}

// CloseSold terminalizes an active lot as sold, recording the winner.
func (r *LotRepository) CloseSold(ctx context.Context, tx *sqlx.Tx, lotID uuid.UUID, winnerID uuid.UUID, winningBid decimal.Decimal, soldAt time.Time) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE auction_lots
		SET status      = 'sold',
		    winning_bid = $1,
		    winner_id   = $2,
		    sold_at     = $3,
		    updated_at  = now()
		WHERE id = $4 AND status = 'active'`,
		winningBid, winnerID, soldAt, lotID)
	if err != nil {
		return fmt.Errorf("lot_repo.CloseSold: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrLotNotActive
	}
	return nil
}

// CloseNoSale terminalizes an active lot without a sale.
func (r *LotRepository) CloseNoSale(ctx context.Context, tx *sqlx.Tx, lotID uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE auction_lots
		SET status     = 'no_sale',
		    updated_at = now()
		WHERE id = $1 AND status = 'active'`,
		lotID)
	if err != nil {
		return fmt.Errorf("lot_repo.CloseNoSale: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrLotNotActive
	}
	return nil
}

// HasNonTerminalForVehicle reports whether the vehicle already sits in a
// pending or active lot. Enforced at the admin attachment boundary.
func (r *LotRepository) HasNonTerminalForVehicle(ctx context.Context, tx *sqlx.Tx, vehicleID uuid.UUID) (bool, error) {
	var count int
	err := tx.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM auction_lots WHERE vehicle_id = $1 AND status IN ('pending','active')`,
		vehicleID)
	if err != nil {
		return false, fmt.Errorf("lot_repo.HasNonTerminalForVehicle: %w", err)
	}
	return count > 0, nil
}
