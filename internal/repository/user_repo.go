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
	"github.com/lib/pq"
)

// UserRepository handles all database operations for Users, including the
// per-bidder daily quota counter.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user row.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users
			(id, email, username, password_hash, role, status, tier,
			 daily_bids_used, daily_bids_reset_at, created_at, updated_at)
		VALUES
			(:id, :email, :username, :password_hash, :role, :status, :tier,
			 :daily_bids_used, :daily_bids_reset_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, u); err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return domain.ErrEmailTaken
		}
		if isUniqueViolation(err, "users_username_key") {
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("user_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches a user by primary key.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("user_repo.GetByID: %w", err)
	}
	return &u, nil
}

// GetByEmail fetches a user by email address (used for login).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("user_repo.GetByEmail: %w", err)
	}
	return &u, nil
}

// TryConsumeDailyBid atomically takes one bid out of the user's daily quota
// inside an existing transaction. The user row is locked so concurrent bids
// cannot both consume the last token. The window rolls: once 24h have
// elapsed since the last reset, the counter restarts before the check.
// Returns ErrDailyBidLimit when the tier's quota is exhausted.
func (r *UserRepository) TryConsumeDailyBid(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, now time.Time) error {
	var u domain.User
	err := tx.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1 FOR UPDATE`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("user_repo.TryConsumeDailyBid lock: %w", err)
	}

	used := u.DailyBidsUsed
	resetAt := u.DailyBidsResetAt
	if !resetAt.After(now) {
		used = 0
		resetAt = now.Add(24 * time.Hour)
	}

	if !u.Tier.AllowsBid(used) {
		return domain.ErrDailyBidLimit
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET daily_bids_used     = $1,
		    daily_bids_reset_at = $2,
		    updated_at          = now()
		WHERE id = $3`,
		used+1, resetAt, userID)
	if err != nil {
		return fmt.Errorf("user_repo.TryConsumeDailyBid update: %w", err)
	}
	return nil
}

// SetStatus updates a user's account standing (admin action).
func (r *UserRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.AccountStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET status = $1, updated_at = now() WHERE id = $2`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("user_repo.SetStatus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SetTier updates a user's membership tier (admin action).
func (r *UserRepository) SetTier(ctx context.Context, id uuid.UUID, tier domain.MembershipTier) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET tier = $1, updated_at = now() WHERE id = $2`,
		string(tier), id)
	if err != nil {
		return fmt.Errorf("user_repo.SetTier: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SetRole updates a user's role (superadmin action).
func (r *UserRepository) SetRole(ctx context.Context, id uuid.UUID, role domain.UserRole) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = $1, updated_at = now() WHERE id = $2`,
		string(role), id)
	if err != nil {
		return fmt.Errorf("user_repo.SetRole: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// List returns paginated users with a total count.
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, int, error) {
	var users []*domain.User
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, 0, fmt.Errorf("user_repo.List count: %w", err)
	}
	err := r.db.SelectContext(ctx, &users,
		`SELECT * FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("user_repo.List select: %w", err)
	}
	return users, total, nil
}

// isUniqueViolation detects a Postgres unique-constraint error on the given
// constraint name.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && pqErr.Constraint == constraint
	}
	return false
}
