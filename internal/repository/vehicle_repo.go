package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/autolot/auction/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// VehicleRepository reads pricing from the vehicle catalog and writes the
// listing-status transitions the lifecycle produces.
type VehicleRepository struct {
	db *sqlx.DB
}

// NewVehicleRepository creates a new VehicleRepository.
func NewVehicleRepository(db *sqlx.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// GetByID fetches a vehicle by primary key.
func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Vehicle, error) {
	var v domain.Vehicle
	err := r.db.GetContext(ctx, &v, `SELECT * FROM vehicles WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVehicleNotFound
		}
		return nil, fmt.Errorf("vehicle_repo.GetByID: %w", err)
	}
	return &v, nil
}

// SetStatus updates the vehicle's listing status inside an existing
// transaction (lifecycle side effect).
func (r *VehicleRepository) SetStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status domain.ListingStatus) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE vehicles SET status = $1, updated_at = now() WHERE id = $2`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("vehicle_repo.SetStatus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrVehicleNotFound
	}
	return nil
}
