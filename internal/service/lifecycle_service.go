package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/autolot/auction/internal/config"
	"github.com/autolot/auction/internal/domain"
	"github.com/autolot/auction/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// LifecycleService drives the time-based side of an auction: opening due
// auctions, closing expired lots, settling sold lots into orders, and
// rotating the next pending lot into the active slot.
//
// Every close runs under the lot's row lock, so it serializes against
// in-flight bids the same way bids serialize against each other.
type LifecycleService struct {
	db          *sqlx.DB
	auctionRepo *repository.AuctionRepository
	lotRepo     *repository.LotRepository
	bidRepo     *repository.BidRepository
	orderRepo   *repository.OrderRepository
	vehicleRepo *repository.VehicleRepository
	cfg         *config.Config
	broadcaster Broadcaster
}

// NewLifecycleService builds a LifecycleService.
func NewLifecycleService(
	db *sqlx.DB,
	auctionRepo *repository.AuctionRepository,
	lotRepo *repository.LotRepository,
	bidRepo *repository.BidRepository,
	orderRepo *repository.OrderRepository,
	vehicleRepo *repository.VehicleRepository,
	cfg *config.Config,
) *LifecycleService {
	return &LifecycleService{
		db:          db,
		auctionRepo: auctionRepo,
		lotRepo:     lotRepo,
		bidRepo:     bidRepo,
		orderRepo:   orderRepo,
		vehicleRepo: vehicleRepo,
		cfg:         cfg,
	}
}

// SetBroadcaster injects the WS hub dependency post-construction.
func (s *LifecycleService) SetBroadcaster(b Broadcaster) { s.broadcaster = b }

// ──────────────────────────────────────────────────────────────────────────────
// StartScheduledAuctions — called by the Scheduler every tick
// ──────────────────────────────────────────────────────────────────────────────

// StartScheduledAuctions opens every auction whose scheduled start has passed
// but is still in StatusScheduled. A single failing auction does NOT abort
// the others.
func (s *LifecycleService) StartScheduledAuctions(ctx context.Context) error {
	auctions, err := s.auctionRepo.GetDueScheduled(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("lifecycle_service.StartScheduledAuctions: fetch: %w", err)
	}

	for _, a := range auctions {
		if err := s.StartAuction(ctx, a.ID); err != nil {
			log.Printf("[lifecycle] ERROR starting auction %s: %v", a.ID, err)
			// Continue: do not block other auctions because one failed.
		}
	}
	return nil
}

// StartAuction flips a scheduled auction live and activates its first pending
// lot. Idempotent: a second call observes the guarded status transition fail
// and returns ErrAuctionNotScheduled.
func (s *LifecycleService) StartAuction(ctx context.Context, auctionID uuid.UUID) error {
	auction, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("lifecycle_service.StartAuction: get auction: %w", err)
	}

	tx, txErr := s.db.BeginTxx(ctx, nil)
	if txErr != nil {
		return fmt.Errorf("lifecycle_service.StartAuction: begin tx: %w", txErr)
	}
	defer func() {
		if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	if txErr = s.auctionRepo.MarkLive(ctx, tx, auctionID, now); txErr != nil {
		return fmt.Errorf("lifecycle_service.StartAuction: mark live: %w", txErr)
	}

	first, actErr := s.activateNextLot(ctx, tx, auction, now)
	if actErr != nil {
		txErr = actErr
		return fmt.Errorf("lifecycle_service.StartAuction: activate first lot: %w", actErr)
	}

	if txErr = tx.Commit(); txErr != nil {
		return fmt.Errorf("lifecycle_service.StartAuction: commit: %w", txErr)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastAuctionStarted(auctionID, auction.Name)
	}
	if first != nil {
		log.Printf("[lifecycle] auction %s live, lot %d (%s) on the block until %s",
			auctionID, first.LotOrder, first.ID, first.EndsAt.Format(time.RFC3339))
		s.broadcastUpdate(ctx, first.ID)
	} else {
		log.Printf("[lifecycle] auction %s live with no pending lots", auctionID)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// EndExpiredLots — called by the Scheduler every tick
// ──────────────────────────────────────────────────────────────────────────────

// EndExpiredLots closes every active lot whose bidding window has elapsed.
// Each lot is closed in its own transaction; one failure does not block the
// rest of the sweep.
func (s *LifecycleService) EndExpiredLots(ctx context.Context) error {
	lots, err := s.lotRepo.GetExpiredActive(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("lifecycle_service.EndExpiredLots: fetch: %w", err)
	}

	for _, l := range lots {
		if err := s.CloseAndAdvance(ctx, l.ID); err != nil {
			log.Printf("[lifecycle] ERROR closing lot %s: %v", l.ID, err)
		}
	}
	return nil
}

// CloseAndAdvance settles one lot and rotates the auction forward: the lot
// closes sold or no_sale, the next pending lot activates, and when none
// remains the auction ends. Safe to call concurrently with bids and with a
// second sweep: the lot row lock plus the active-status check make repeat
// closes a no-op.
func (s *LifecycleService) CloseAndAdvance(ctx context.Context, lotID uuid.UUID) error {
	tx, txErr := s.db.BeginTxx(ctx, nil)
	if txErr != nil {
		return fmt.Errorf("lifecycle_service.CloseAndAdvance: begin tx: %w", txErr)
	}
	defer func() {
		if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	lot, lockErr := s.lotRepo.GetForUpdate(ctx, tx, lotID)
	if lockErr != nil {
		txErr = lockErr
		return fmt.Errorf("lifecycle_service.CloseAndAdvance: lock lot: %w", lockErr)
	}
	auction, aErr := s.auctionRepo.GetByIDTx(ctx, tx, lot.AuctionID)
	if aErr != nil {
		txErr = aErr
		return fmt.Errorf("lifecycle_service.CloseAndAdvance: get auction: %w", aErr)
	}
	pending, pErr := s.lotRepo.CountPending(ctx, tx, auction.ID)
	if pErr != nil {
		txErr = pErr
		return fmt.Errorf("lifecycle_service.CloseAndAdvance: count pending: %w", pErr)
	}

	plan := domain.PlanLotClose(lot, auction.Status, pending)
	if plan == nil {
		// Another sweep got here first, or the auction is paused and the
		// clock is frozen; leave everything as is.
		txErr = errCloseSkipped
		return nil
	}

	now := time.Now().UTC()
	order, settleErr := s.settleLot(ctx, tx, lot, plan, now)
	if settleErr != nil {
		txErr = settleErr
		return fmt.Errorf("lifecycle_service.CloseAndAdvance: settle: %w", settleErr)
	}

	var next *domain.AuctionLot
	if plan.EndAuction {
		if txErr = s.auctionRepo.MarkEnded(ctx, tx, auction.ID, now); txErr != nil {
			return fmt.Errorf("lifecycle_service.CloseAndAdvance: end auction: %w", txErr)
		}
	} else {
		next, txErr = s.activateNextLot(ctx, tx, auction, now)
		if txErr != nil {
			return fmt.Errorf("lifecycle_service.CloseAndAdvance: activate next: %w", txErr)
		}
	}

	if txErr = tx.Commit(); txErr != nil {
		return fmt.Errorf("lifecycle_service.CloseAndAdvance: commit: %w", txErr)
	}

	if order != nil {
		log.Printf("[lifecycle] lot %s sold for %s, order %s due %s",
			lot.ID, order.WinningBid.StringFixed(2), order.OrderNumber,
			order.PaymentDeadline.Format(time.RFC3339))
	} else {
		log.Printf("[lifecycle] lot %s closed no_sale (bids=%d reserve_met=%v)",
			lot.ID, lot.BidCount, lot.ReserveMet)
	}

	s.broadcastClosed(ctx, lot.ID)
	if next != nil {
		s.broadcastUpdate(ctx, next.ID)
	}
	return nil
}

// sentinel used only to drive the deferred rollback on no-op closes
var errCloseSkipped = errors.New("lot close skipped")

// ──────────────────────────────────────────────────────────────────────────────
// settleLot — core settlement for a single lot
// ──────────────────────────────────────────────────────────────────────────────

// settleLot applies a ClosePlan inside the caller's transaction. A sale marks
// the leading bid won, emits a pending-payment order, and flips the vehicle
// to sold; a no_sale releases the leading bid and marks the vehicle unsold.
func (s *LifecycleService) settleLot(ctx context.Context, tx *sqlx.Tx, lot *domain.AuctionLot, plan *domain.ClosePlan, now time.Time) (*domain.Order, error) {
	// Standing ceilings die with the lot either way.
	ceilings, err := s.bidRepo.GetActiveMaxBids(ctx, tx, lot.ID)
	if err != nil {
		return nil, fmt.Errorf("settleLot: load ceilings: %w", err)
	}
	if len(ceilings) > 0 {
		ids := make([]uuid.UUID, 0, len(ceilings))
		for _, mb := range ceilings {
			ids = append(ids, mb.ID)
		}
		if err := s.bidRepo.DeactivateMaxBids(ctx, tx, ids); err != nil {
			return nil, fmt.Errorf("settleLot: deactivate ceilings: %w", err)
		}
	}

	if plan.Outcome == domain.CloseNoSale {
		if err := s.bidRepo.OutbidActive(ctx, tx, lot.ID); err != nil {
			return nil, fmt.Errorf("settleLot: release leading bid: %w", err)
		}
		if err := s.lotRepo.CloseNoSale(ctx, tx, lot.ID); err != nil {
			return nil, fmt.Errorf("settleLot: close no_sale: %w", err)
		}
		if err := s.vehicleRepo.SetStatus(ctx, tx, lot.VehicleID, domain.ListingUnsold); err != nil {
			return nil, fmt.Errorf("settleLot: mark vehicle unsold: %w", err)
		}
		return nil, nil
	}

	winnerID := plan.WinnerID
	winningBid := plan.HammerPrice

	if err := s.lotRepo.CloseSold(ctx, tx, lot.ID, winnerID, winningBid, now); err != nil {
		return nil, fmt.Errorf("settleLot: close sold: %w", err)
	}
	if err := s.bidRepo.MarkLeaderWon(ctx, tx, lot.ID); err != nil {
		return nil, fmt.Errorf("settleLot: mark bid won: %w", err)
	}

	order := domain.NewOrder(
		lot, winnerID, winningBid,
		decimal.NewFromFloat(s.cfg.Settlement.DocumentationFee),
		s.cfg.Settlement.PaymentDeadline,
		now,
	)
	if err := s.createOrderWithNumber(ctx, tx, order, now); err != nil {
		return nil, fmt.Errorf("settleLot: create order: %w", err)
	}

	if err := s.vehicleRepo.SetStatus(ctx, tx, lot.VehicleID, domain.ListingSold); err != nil {
		return nil, fmt.Errorf("settleLot: mark vehicle sold: %w", err)
	}
	if err := s.auctionRepo.RecordLotSold(ctx, tx, lot.AuctionID); err != nil {
		return nil, fmt.Errorf("settleLot: bump auction sold count: %w", err)
	}
	return order, nil
}

// orderNumberAttempts bounds regeneration on order-number collisions.
const orderNumberAttempts = 5

// createOrderWithNumber assigns a fresh order number and inserts, retrying on
// unique-constraint collisions up to orderNumberAttempts times.
func (s *LifecycleService) createOrderWithNumber(ctx context.Context, tx *sqlx.Tx, order *domain.Order, now time.Time) error {
	for i := 0; i < orderNumberAttempts; i++ {
		order.OrderNumber = generateOrderNumber(now)
		err := s.orderRepo.Create(ctx, tx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateOrderNumber) {
			return err
		}
	}
	return domain.ErrOrderNumberExhausted
}

// generateOrderNumber produces a human-quotable order number like
// "AL-20260830-3F9C1A". Uniqueness is enforced by the database; the random
// suffix just makes collisions rare.
func generateOrderNumber(now time.Time) string {
	b := make([]byte, 3)
	_, _ = rand.Read(b)
	return fmt.Sprintf("AL-%s-%X", now.Format("20060102"), b)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lot rotation
// ──────────────────────────────────────────────────────────────────────────────

// activateNextLot promotes the lowest-ordered pending lot to the block with a
// fresh bidding window. Returns (nil, nil) when the auction has no pending
// lots left.
func (s *LifecycleService) activateNextLot(ctx context.Context, tx *sqlx.Tx, auction *domain.Auction, now time.Time) (*domain.AuctionLot, error) {
	next, err := s.lotRepo.NextPending(ctx, tx, auction.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNoPendingLots) {
			return nil, nil
		}
		return nil, fmt.Errorf("activateNextLot: next pending: %w", err)
	}

	window := next.DurationSec
	var endsAt time.Time
	if window > 0 {
		endsAt = now.Add(time.Duration(window) * time.Second)
	} else {
		endsAt = now.Add(auction.LotRunDuration(s.cfg.Auction.DefaultLotDuration))
	}

	if err := s.lotRepo.Activate(ctx, tx, next.ID, now, endsAt); err != nil {
		return nil, fmt.Errorf("activateNextLot: activate: %w", err)
	}
	if err := s.vehicleRepo.SetStatus(ctx, tx, next.VehicleID, domain.ListingInAuction); err != nil {
		return nil, fmt.Errorf("activateNextLot: mark vehicle in_auction: %w", err)
	}

	next.Status = domain.LotActive
	next.StartsAt = &now
	next.EndsAt = &endsAt
	return next, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// WS helpers
// ──────────────────────────────────────────────────────────────────────────────

func (s *LifecycleService) broadcastUpdate(ctx context.Context, lotID uuid.UUID) {
	if s.broadcaster == nil {
		return
	}
	lot, err := s.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return
	}
	summary := lot.ToSummary()
	s.broadcaster.BroadcastLotUpdate(&summary)
}

func (s *LifecycleService) broadcastClosed(ctx context.Context, lotID uuid.UUID) {
	if s.broadcaster == nil {
		return
	}
	lot, err := s.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return
	}
	summary := lot.ToSummary()
	s.broadcaster.BroadcastLotClosed(&summary)
}
