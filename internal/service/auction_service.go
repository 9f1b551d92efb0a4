package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/autolot/auction/internal/domain"
	"github.com/autolot/auction/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// AuctionService
// ──────────────────────────────────────────────────────────────────────────────

// AuctionService handles auction administration: creating sale events,
// attaching vehicles as lots, and the manual live controls (start, pause,
// resume, advance). The time-driven side lives in LifecycleService; the
// manual controls delegate to it so both paths share one settlement.
type AuctionService struct {
	db          *sqlx.DB
	auctionRepo *repository.AuctionRepository
	lotRepo     *repository.LotRepository
	vehicleRepo *repository.VehicleRepository
	lifecycle   *LifecycleService
}

// NewAuctionService creates an AuctionService.
func NewAuctionService(
	db *sqlx.DB,
	auctionRepo *repository.AuctionRepository,
	lotRepo *repository.LotRepository,
	vehicleRepo *repository.VehicleRepository,
	lifecycle *LifecycleService,
) *AuctionService {
	return &AuctionService{
		db:          db,
		auctionRepo: auctionRepo,
		lotRepo:     lotRepo,
		vehicleRepo: vehicleRepo,
		lifecycle:   lifecycle,
	}
}

// CreateAuctionRequest carries the admin inputs for a new sale event.
type CreateAuctionRequest struct {
	Name           string             `json:"name" binding:"required"`
	Type           domain.AuctionType `json:"type"`
	ScheduledStart time.Time          `json:"scheduled_start"`
	ScheduledEnd   *time.Time         `json:"scheduled_end"`
	BidIncrement   *decimal.Decimal   `json:"bid_increment"`
	LotDurationSec int64              `json:"lot_duration_sec"`
}

// CreateAuction registers a new auction in AuctionScheduled. A scheduled
// start is mandatory; the scheduler will not pick up an auction without one.
func (s *AuctionService) CreateAuction(ctx context.Context, req CreateAuctionRequest) (*domain.Auction, error) {
	if req.ScheduledStart.IsZero() {
		return nil, domain.ErrMissingSchedule
	}
	if req.Type == "" {
		req.Type = domain.AuctionTypeLive
	}
	if !req.Type.IsValid() {
		return nil, domain.ErrInvalidAuctionType
	}

	now := time.Now().UTC()
	auction := &domain.Auction{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(req.Name),
		Type:           req.Type,
		Status:         domain.AuctionScheduled,
		BidIncrement:   req.BidIncrement,
		LotDurationSec: req.LotDurationSec,
		ScheduledStart: req.ScheduledStart.UTC(),
		ScheduledEnd:   req.ScheduledEnd,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.auctionRepo.Create(ctx, auction); err != nil {
		return nil, fmt.Errorf("auction_service.CreateAuction: %w", err)
	}
	return auction, nil
}

// AddLotRequest carries per-lot overrides when attaching a vehicle.
// Unset fields inherit from the vehicle and the auction.
type AddLotRequest struct {
	VehicleID    uuid.UUID        `json:"vehicle_id" binding:"required"`
	BidIncrement *decimal.Decimal `json:"bid_increment"`
	DurationSec  int64            `json:"duration_sec"`
}

// AddLot attaches a vehicle to an auction as its next lot, seeding the
// pricing fields from the listing. A vehicle can sit in at most one
// non-terminal lot across all auctions.
func (s *AuctionService) AddLot(ctx context.Context, auctionID uuid.UUID, req AddLotRequest) (*domain.AuctionLot, error) {
	auction, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("auction_service.AddLot: get auction: %w", err)
	}
	if auction.IsTerminal() {
		return nil, domain.ErrAuctionNotLive
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, req.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("auction_service.AddLot: get vehicle: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("auction_service.AddLot: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var listed bool
	listed, err = s.lotRepo.HasNonTerminalForVehicle(ctx, tx, vehicle.ID)
	if err != nil {
		return nil, fmt.Errorf("auction_service.AddLot: check listed: %w", err)
	}
	if listed {
		err = domain.ErrVehicleAlreadyListed
		return nil, err
	}

	var order int
	order, err = s.lotRepo.NextLotOrder(ctx, tx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("auction_service.AddLot: lot order: %w", err)
	}

	now := time.Now().UTC()
	lot := &domain.AuctionLot{
		ID:           uuid.New(),
		AuctionID:    auctionID,
		VehicleID:    vehicle.ID,
		LotOrder:     order,
		Status:       domain.LotPending,
		CurrentBid:   vehicle.StartingBid,
		StartingBid:  vehicle.StartingBid,
		ReservePrice: vehicle.ReservePrice,
		BuyNowPrice:  vehicle.BuyNowPrice,
		BidIncrement: req.BidIncrement,
		DurationSec:  req.DurationSec,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err = s.lotRepo.Create(ctx, tx, lot); err != nil {
		return nil, fmt.Errorf("auction_service.AddLot: create lot: %w", err)
	}
	if err = s.vehicleRepo.SetStatus(ctx, tx, vehicle.ID, domain.ListingScheduled); err != nil {
		return nil, fmt.Errorf("auction_service.AddLot: mark vehicle scheduled: %w", err)
	}
	if err = s.auctionRepo.RecordLotAttached(ctx, tx, auctionID); err != nil {
		return nil, fmt.Errorf("auction_service.AddLot: bump lot count: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("auction_service.AddLot: commit: %w", err)
	}
	return lot, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Live controls
// ──────────────────────────────────────────────────────────────────────────────

// StartAuction opens a scheduled auction ahead of (or at) its scheduled time.
func (s *AuctionService) StartAuction(ctx context.Context, auctionID uuid.UUID) error {
	if err := s.lifecycle.StartAuction(ctx, auctionID); err != nil {
		return fmt.Errorf("auction_service.StartAuction: %w", err)
	}
	return nil
}

// PauseAuction freezes a live auction. Bidding stops (bids see
// ErrAuctionNotLive) and the closing sweep skips its lots.
func (s *AuctionService) PauseAuction(ctx context.Context, auctionID uuid.UUID) error {
	if err := s.auctionRepo.SetPaused(ctx, auctionID, true); err != nil {
		return fmt.Errorf("auction_service.PauseAuction: %w", err)
	}
	return nil
}

// ResumeAuction unfreezes a paused auction and gives the interrupted lot a
// fresh bidding window, since its deadline kept ticking during the pause.
func (s *AuctionService) ResumeAuction(ctx context.Context, auctionID uuid.UUID) error {
	auction, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("auction_service.ResumeAuction: get auction: %w", err)
	}

	if err := s.auctionRepo.SetPaused(ctx, auctionID, false); err != nil {
		return fmt.Errorf("auction_service.ResumeAuction: %w", err)
	}

	tx, txErr := s.db.BeginTxx(ctx, nil)
	if txErr != nil {
		return fmt.Errorf("auction_service.ResumeAuction: begin tx: %w", txErr)
	}
	defer func() {
		if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	lots, lErr := s.lotRepo.GetByAuction(ctx, auctionID)
	if lErr != nil {
		txErr = lErr
		return fmt.Errorf("auction_service.ResumeAuction: list lots: %w", lErr)
	}
	now := time.Now().UTC()
	window := auction.LotRunDuration(s.lifecycle.cfg.Auction.DefaultLotDuration)
	for _, l := range lots {
		if !l.IsActive() {
			continue
		}
		if txErr = s.lotRepo.ResetWindow(ctx, tx, l.ID, now.Add(window)); txErr != nil {
			return fmt.Errorf("auction_service.ResumeAuction: reset window: %w", txErr)
		}
	}

	if txErr = tx.Commit(); txErr != nil {
		return fmt.Errorf("auction_service.ResumeAuction: commit: %w", txErr)
	}
	return nil
}

// AdvanceLot closes the auction's current lot immediately (hammer down) and
// promotes the next pending lot. Settlement is identical to a timed close.
func (s *AuctionService) AdvanceLot(ctx context.Context, auctionID uuid.UUID) error {
	auction, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("auction_service.AdvanceLot: get auction: %w", err)
	}
	if !auction.IsLive() {
		return domain.ErrAuctionNotLive
	}

	lots, err := s.lotRepo.GetByAuction(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("auction_service.AdvanceLot: list lots: %w", err)
	}
	for _, l := range lots {
		if l.IsActive() {
			if err := s.lifecycle.CloseAndAdvance(ctx, l.ID); err != nil {
				return fmt.Errorf("auction_service.AdvanceLot: %w", err)
			}
			return nil
		}
	}
	return domain.ErrLotNotActive
}

// ──────────────────────────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────────────────────────

// ListAuctions returns paginated auctions with a total count, optionally
// filtered by status.
func (s *AuctionService) ListAuctions(ctx context.Context, limit, offset int, status string) ([]*domain.Auction, int, error) {
	auctions, total, err := s.auctionRepo.List(ctx, limit, offset, status)
	if err != nil {
		return nil, 0, fmt.Errorf("auction_service.ListAuctions: %w", err)
	}
	return auctions, total, nil
}

// GetAuction returns an auction with its full lot list in sale order.
func (s *AuctionService) GetAuction(ctx context.Context, auctionID uuid.UUID) (*domain.Auction, []*domain.AuctionLot, error) {
	auction, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, nil, fmt.Errorf("auction_service.GetAuction: %w", err)
	}
	lots, err := s.lotRepo.GetByAuction(ctx, auctionID)
	if err != nil {
		return nil, nil, fmt.Errorf("auction_service.GetAuction: lots: %w", err)
	}
	return auction, lots, nil
}

// GetActiveLots returns every lot currently on the block across all live
// auctions.
func (s *AuctionService) GetActiveLots(ctx context.Context) ([]*domain.AuctionLot, error) {
	lots, err := s.lotRepo.GetActiveLots(ctx)
	if err != nil {
		return nil, fmt.Errorf("auction_service.GetActiveLots: %w", err)
	}
	return lots, nil
}

// GetLot returns a single lot.
func (s *AuctionService) GetLot(ctx context.Context, lotID uuid.UUID) (*domain.AuctionLot, error) {
	lot, err := s.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("auction_service.GetLot: %w", err)
	}
	return lot, nil
}
