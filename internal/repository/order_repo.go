package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/autolot/auction/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// OrderRepository persists settlement orders handed off to checkout.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// ErrDuplicateOrderNumber signals an order-number collision; the caller
// regenerates and retries a bounded number of times.
var ErrDuplicateOrderNumber = errors.New("order number already exists")

// Create inserts a settlement order inside the closing transaction.
// Returns ErrDuplicateOrderNumber on an order_number collision.
func (r *OrderRepository) Create(ctx context.Context, tx *sqlx.Tx, o *domain.Order) error {
	query := `
		INSERT INTO orders
			(id, order_number, lot_id, vehicle_id, winner_id, winning_bid,
			 service_fee, documentation_fee, total_due, status, payment_deadline,
			 created_at, updated_at)
		VALUES
			(:id, :order_number, :lot_id, :vehicle_id, :winner_id, :winning_bid,
			 :service_fee, :documentation_fee, :total_due, :status, :payment_deadline,
			 :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, o); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "orders_order_number_key" {
			return ErrDuplicateOrderNumber
		}
		return fmt.Errorf("order_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches an order by primary key.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var o domain.Order
	err := r.db.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("order_repo.GetByID: %w", err)
	}
	return &o, nil
}

// GetByLot fetches the order created for a lot, if any.
func (r *OrderRepository) GetByLot(ctx context.Context, lotID uuid.UUID) (*domain.Order, error) {
	var o domain.Order
	err := r.db.GetContext(ctx, &o, `SELECT * FROM orders WHERE lot_id = $1`, lotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("order_repo.GetByLot: %w", err)
	}
	return &o, nil
}

// List returns paginated orders filtered by optional status, with a total
// count. status="" returns all statuses.
func (r *OrderRepository) List(ctx context.Context, limit, offset int, status string) ([]*domain.Order, int, error) {
	var orders []*domain.Order
	var total int

	if status != "" {
		if err := r.db.GetContext(ctx, &total,
			`SELECT COUNT(*) FROM orders WHERE status = $1`, status); err != nil {
			return nil, 0, fmt.Errorf("order_repo.List count: %w", err)
		}
		if err := r.db.SelectContext(ctx, &orders,
			`SELECT * FROM orders WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			status, limit, offset); err != nil {
			return nil, 0, fmt.Errorf("order_repo.List select: %w", err)
		}
	} else {
		if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM orders`); err != nil {
			return nil, 0, fmt.Errorf("order_repo.List count: %w", err)
		}
		if err := r.db.SelectContext(ctx, &orders,
			`SELECT * FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			limit, offset); err != nil {
			return nil, 0, fmt.Errorf("order_repo.List select: %w", err)
		}
	}
	return orders, total, nil
}

// GetByWinner returns a user's orders, newest first.
func (r *OrderRepository) GetByWinner(ctx context.Context, winnerID uuid.UUID, limit, offset int) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := r.db.SelectContext(ctx, &orders,
		`SELECT * FROM orders WHERE winner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		winnerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("order_repo.GetByWinner: %w", err)
	}
	return orders, nil
}
