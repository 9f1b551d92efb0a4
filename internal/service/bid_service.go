package service

import (
	"context"
	"fmt"
	"time"

	"github.com/autolot/auction/internal/domain"
	"github.com/autolot/auction/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Interfaces injected into BidService to avoid import cycles
// ──────────────────────────────────────────────────────────────────────────────

// Broadcaster is the minimal interface services need from the WS hub.
// Implemented by ws.Hub.
type Broadcaster interface {
	BroadcastLotUpdate(summary *domain.LotSummary)
	BroadcastLotClosed(summary *domain.LotSummary)
	BroadcastAuctionStarted(auctionID uuid.UUID, name string)
}

// ──────────────────────────────────────────────────────────────────────────────
// BidService
// ──────────────────────────────────────────────────────────────────────────────

// BidService orchestrates manual bid acceptance, proxy ceilings, and the
// proxy resolution engine. Every mutation of a lot's price happens inside a
// single PostgreSQL transaction holding the lot row lock, so bids on the
// same lot are strictly serialized.
type BidService struct {
	db          *sqlx.DB
	bidRepo     *repository.BidRepository
	lotRepo     *repository.LotRepository
	auctionRepo *repository.AuctionRepository
	userRepo    *repository.UserRepository
	walletRepo  *repository.WalletRepository
	broadcaster Broadcaster // injected after the WS hub is built
}

// NewBidService creates a BidService.
func NewBidService(
	db *sqlx.DB,
	bidRepo *repository.BidRepository,
	lotRepo *repository.LotRepository,
	auctionRepo *repository.AuctionRepository,
	userRepo *repository.UserRepository,
	walletRepo *repository.WalletRepository,
) *BidService {
	return &BidService{
		db:          db,
		bidRepo:     bidRepo,
		lotRepo:     lotRepo,
		auctionRepo: auctionRepo,
		userRepo:    userRepo,
		walletRepo:  walletRepo,
	}
}

// SetBroadcaster injects the WS hub dependency post-construction.
func (s *BidService) SetBroadcaster(b Broadcaster) { s.broadcaster = b }

// ──────────────────────────────────────────────────────────────────────────────
// PlaceBid
// ──────────────────────────────────────────────────────────────────────────────

// PlaceBid validates a manual bid against the full precondition chain, records
// it, and then runs proxy resolution to a fixed point — all inside a single
// PostgreSQL transaction. The lot row is locked FOR UPDATE for the duration,
// so concurrent bids on the same lot apply one at a time.
//
// Precondition order is fixed: account status, lot state, bidding window,
// amount floor, buying power, daily quota. The first failure wins, so a
// suspended bidder sees ErrAccountInactive even when the bid is also too low.
func (s *BidService) PlaceBid(ctx context.Context, req domain.PlaceBidRequest) (*domain.PlaceBidResult, error) {
	// ── 1. Input validation ──────────────────────────────────────────────────
	if !req.Amount.IsPositive() {
		return nil, domain.ErrBidTooLow
	}

	// ── 2. Account status ────────────────────────────────────────────────────
	user, err := s.userRepo.GetByID(ctx, req.BidderID)
	if err != nil {
		return nil, fmt.Errorf("bid_service.PlaceBid: get user: %w", err)
	}
	if !user.Status.CanBid() {
		return nil, domain.ErrAccountInactive
	}

	// ── 3. Begin transaction ─────────────────────────────────────────────────
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("bid_service.PlaceBid: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// ── 4. Lock the lot row (per-lot serialization point) ────────────────────
	lot, err := s.lotRepo.GetForUpdate(ctx, tx, req.LotID)
	if err != nil {
		return nil, fmt.Errorf("bid_service.PlaceBid: lock lot: %w", err)
	}
	now := time.Now().UTC()
	if !lot.IsActive() {
		err = domain.ErrLotNotActive
		return nil, err
	}
	if lot.HasEnded(now) {
		// The closing sweep has not swept this lot yet; late bids still bounce.
		err = domain.ErrLotEnded
		return nil, err
	}

	auction, err := s.auctionRepo.GetByIDTx(ctx, tx, lot.AuctionID)
	if err != nil {
		return nil, fmt.Errorf("bid_service.PlaceBid: get auction: %w", err)
	}
	if !auction.IsLive() {
		err = domain.ErrAuctionNotLive
		return nil, err
	}

	// ── 5. Amount floor ──────────────────────────────────────────────────────
	increment := lot.Increment(auction.DefaultIncrement())
	if req.Amount.LessThan(lot.MinNextBid(auction.DefaultIncrement())) {
		err = domain.ErrBidTooLow
		return nil, err
	}

	// ── 6. Buying power (waived for business-tier accounts) ──────────────────
	if !user.Tier.Policy().WaivesBuyingPower {
		var power decimal.Decimal
		power, err = s.walletRepo.GetBuyingPower(ctx, tx, req.BidderID)
		if err != nil {
			return nil, fmt.Errorf("bid_service.PlaceBid: buying power: %w", err)
		}
		if power.LessThan(req.Amount) {
			err = domain.ErrInsufficientBuyingPower
			return nil, err
		}
	}

	// ── 7. Daily bid quota (locks the user row, resets lapsed windows) ───────
	if err = s.userRepo.TryConsumeDailyBid(ctx, tx, req.BidderID, now); err != nil {
		return nil, fmt.Errorf("bid_service.PlaceBid: quota: %w", err)
	}

	// ── 8. Record the bid and install the new leader ─────────────────────────
	if err = s.bidRepo.OutbidActive(ctx, tx, lot.ID); err != nil {
		return nil, fmt.Errorf("bid_service.PlaceBid: outbid previous: %w", err)
	}
	reserveMet := lot.ReserveSatisfied(req.Amount)
	bid := &domain.Bid{
		ID:        uuid.New(),
		LotID:     lot.ID,
		BidderID:  req.BidderID,
		Amount:    req.Amount,
		Kind:      domain.BidKindLive,
		Status:    domain.LeaderStatus(reserveMet),
		CreatedAt: now,
	}
	if err = s.bidRepo.Create(ctx, tx, bid); err != nil {
		return nil, fmt.Errorf("bid_service.PlaceBid: create bid: %w", err)
	}
	if err = s.lotRepo.ApplyBid(ctx, tx, lot.ID, req.BidderID, req.Amount, reserveMet); err != nil {
		return nil, fmt.Errorf("bid_service.PlaceBid: apply bid: %w", err)
	}
	if err = s.auctionRepo.IncrementTotalBids(ctx, tx, lot.AuctionID, 1); err != nil {
		return nil, fmt.Errorf("bid_service.PlaceBid: bump auction: %w", err)
	}

	// ── 9. Proxy resolution to fixed point ───────────────────────────────────
	finalBid, finalLeader, err := s.resolveProxies(ctx, tx, lot, req.Amount, req.BidderID, increment, now)
	if err != nil {
		return nil, fmt.Errorf("bid_service.PlaceBid: resolve proxies: %w", err)
	}

	// ── 10. Commit ───────────────────────────────────────────────────────────
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("bid_service.PlaceBid: commit: %w", err)
	}

	go s.broadcastLot(lot.ID)

	return &domain.PlaceBidResult{
		Bid:           bid,
		NewCurrentBid: finalBid,
		LeaderID:      finalLeader,
		Outbid:        finalLeader != req.BidderID,
	}, nil
}

// resolveProxies iterates the proxy planner until no ceiling wants to act,
// applying each planned counter-bid inside the caller's transaction. The
// caller already holds the lot row lock. seedBid/seedLeader describe the
// price state just written; the returned pair is the settled state.
func (s *BidService) resolveProxies(
	ctx context.Context,
	tx *sqlx.Tx,
	lot *domain.AuctionLot,
	seedBid decimal.Decimal,
	seedLeader uuid.UUID,
	increment decimal.Decimal,
	now time.Time,
) (decimal.Decimal, uuid.UUID, error) {
	ceilings, err := s.bidRepo.GetActiveMaxBids(ctx, tx, lot.ID)
	if err != nil {
		return decimal.Zero, uuid.Nil, fmt.Errorf("load ceilings: %w", err)
	}

	currentBid := seedBid
	currentLeader := seedLeader
	placed := 0

	for i := 0; i < domain.MaxProxyIterations(len(ceilings)); i++ {
		plan := domain.PlanProxyStep(currentBid, &currentLeader, increment, ceilings)
		if plan == nil {
			break
		}

		if err := s.bidRepo.OutbidActive(ctx, tx, lot.ID); err != nil {
			return decimal.Zero, uuid.Nil, fmt.Errorf("outbid previous: %w", err)
		}
		reserveMet := lot.ReserveSatisfied(plan.Amount)
		proxyBid := &domain.Bid{
			ID:        uuid.New(),
			LotID:     lot.ID,
			BidderID:  plan.BidderID,
			Amount:    plan.Amount,
			Kind:      domain.BidKindProxy,
			Status:    domain.LeaderStatus(reserveMet),
			CreatedAt: now,
		}
		if err := s.bidRepo.Create(ctx, tx, proxyBid); err != nil {
			return decimal.Zero, uuid.Nil, fmt.Errorf("create proxy bid: %w", err)
		}
		if err := s.lotRepo.ApplyBid(ctx, tx, lot.ID, plan.BidderID, plan.Amount, reserveMet); err != nil {
			return decimal.Zero, uuid.Nil, fmt.Errorf("apply proxy bid: %w", err)
		}
		if err := s.bidRepo.RecordProxyAmount(ctx, tx, plan.MaxBidID, plan.Amount, now); err != nil {
			return decimal.Zero, uuid.Nil, fmt.Errorf("record proxy amount: %w", err)
		}
		if len(plan.Deactivate) > 0 {
			if err := s.bidRepo.DeactivateMaxBids(ctx, tx, plan.Deactivate); err != nil {
				return decimal.Zero, uuid.Nil, fmt.Errorf("deactivate ceilings: %w", err)
			}
			// Mirror the deactivations in memory so the next plan sees them.
			dead := make(map[uuid.UUID]bool, len(plan.Deactivate))
			for _, id := range plan.Deactivate {
				dead[id] = true
			}
			for _, mb := range ceilings {
				if dead[mb.ID] {
					mb.IsActive = false
				}
			}
		}

		currentBid = plan.Amount
		currentLeader = plan.BidderID
		placed++
	}

	if placed > 0 {
		if err := s.auctionRepo.IncrementTotalBids(ctx, tx, lot.AuctionID, placed); err != nil {
			return decimal.Zero, uuid.Nil, fmt.Errorf("bump auction: %w", err)
		}
	}

	// Ceilings the settled price has passed can never act again; retire them
	// now rather than at lot close.
	if spent := domain.ExhaustedCeilings(currentBid, ceilings); len(spent) > 0 {
		if err := s.bidRepo.DeactivateMaxBids(ctx, tx, spent); err != nil {
			return decimal.Zero, uuid.Nil, fmt.Errorf("deactivate exhausted ceilings: %w", err)
		}
	}
	return currentBid, currentLeader, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Max bids (proxy ceilings)
// ──────────────────────────────────────────────────────────────────────────────

// SetMaxBid registers or raises a user's proxy ceiling on a lot and
// immediately runs proxy resolution, so the caller may take the lead (or be
// counter-bid) before the call returns. Setting a ceiling does not consume
// the daily bid quota; the quota governs manual bids only.
func (s *BidService) SetMaxBid(ctx context.Context, lotID, userID uuid.UUID, maxAmount decimal.Decimal) (*domain.MaxBid, *domain.AuctionLot, error) {
	if !maxAmount.IsPositive() {
		return nil, nil, domain.ErrMaxBidTooLow
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("bid_service.SetMaxBid: get user: %w", err)
	}
	if !user.Status.CanBid() {
		return nil, nil, domain.ErrAccountInactive
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("bid_service.SetMaxBid: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	lot, err := s.lotRepo.GetForUpdate(ctx, tx, lotID)
	if err != nil {
		return nil, nil, fmt.Errorf("bid_service.SetMaxBid: lock lot: %w", err)
	}
	now := time.Now().UTC()
	if !lot.IsActive() {
		err = domain.ErrLotNotActive
		return nil, nil, err
	}
	if lot.HasEnded(now) {
		err = domain.ErrLotEnded
		return nil, nil, err
	}

	auction, err := s.auctionRepo.GetByIDTx(ctx, tx, lot.AuctionID)
	if err != nil {
		return nil, nil, fmt.Errorf("bid_service.SetMaxBid: get auction: %w", err)
	}
	if !auction.IsLive() {
		err = domain.ErrAuctionNotLive
		return nil, nil, err
	}

	// A ceiling below the next callable price can never act.
	if maxAmount.LessThan(lot.MinNextBid(auction.DefaultIncrement())) {
		err = domain.ErrMaxBidTooLow
		return nil, nil, err
	}

	// The ceiling must be affordable in full, not just the first step.
	if !user.Tier.Policy().WaivesBuyingPower {
		var power decimal.Decimal
		power, err = s.walletRepo.GetBuyingPower(ctx, tx, userID)
		if err != nil {
			return nil, nil, fmt.Errorf("bid_service.SetMaxBid: buying power: %w", err)
		}
		if power.LessThan(maxAmount) {
			err = domain.ErrInsufficientBuyingPower
			return nil, nil, err
		}
	}

	mb := &domain.MaxBid{
		ID:        uuid.New(),
		LotID:     lotID,
		UserID:    userID,
		MaxAmount: maxAmount,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = s.bidRepo.UpsertMaxBid(ctx, tx, mb); err != nil {
		return nil, nil, fmt.Errorf("bid_service.SetMaxBid: upsert: %w", err)
	}

	increment := lot.Increment(auction.DefaultIncrement())
	seedLeader := uuid.Nil
	if lot.CurrentBidderID != nil {
		seedLeader = *lot.CurrentBidderID
	}
	if _, _, err = s.resolveProxies(ctx, tx, lot, lot.CurrentBid, seedLeader, increment, now); err != nil {
		return nil, nil, fmt.Errorf("bid_service.SetMaxBid: resolve proxies: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("bid_service.SetMaxBid: commit: %w", err)
	}

	go s.broadcastLot(lotID)

	// Reload stored ceiling and settled lot for the response.
	stored, loadErr := s.bidRepo.GetMaxBid(ctx, lotID, userID)
	if loadErr != nil {
		stored = mb
	}
	settled, loadErr := s.lotRepo.GetByID(ctx, lotID)
	if loadErr != nil {
		settled = lot
	}
	return stored, settled, nil
}

// CancelMaxBid deactivates a user's ceiling on a lot. Proxy bids it already
// placed stand; the engine simply stops defending.
func (s *BidService) CancelMaxBid(ctx context.Context, lotID, userID uuid.UUID) error {
	if err := s.bidRepo.CancelMaxBid(ctx, lotID, userID); err != nil {
		return fmt.Errorf("bid_service.CancelMaxBid: %w", err)
	}
	return nil
}

// GetMyMaxBids returns a user's ceilings, newest first.
func (s *BidService) GetMyMaxBids(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.MaxBid, error) {
	maxBids, err := s.bidRepo.GetMaxBidsByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("bid_service.GetMyMaxBids: %w", err)
	}
	return maxBids, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Query helpers
// ──────────────────────────────────────────────────────────────────────────────

// GetMyBids returns paginated bids for a user.
func (s *BidService) GetMyBids(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Bid, error) {
	bids, err := s.bidRepo.GetByBidder(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("bid_service.GetMyBids: %w", err)
	}
	return bids, nil
}

// GetLotBids returns the public bid history of a lot, newest first.
func (s *BidService) GetLotBids(ctx context.Context, lotID uuid.UUID, limit, offset int) ([]*domain.Bid, error) {
	bids, err := s.bidRepo.GetByLot(ctx, lotID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("bid_service.GetLotBids: %w", err)
	}
	return bids, nil
}

// broadcastLot pushes the lot's refreshed summary to WS subscribers.
// Runs in a goroutine after commit; errors are swallowed.
func (s *BidService) broadcastLot(lotID uuid.UUID) {
	if s.broadcaster == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	lot, err := s.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return
	}
	summary := lot.ToSummary()
	s.broadcaster.BroadcastLotUpdate(&summary)
}
