// Package scheduler manages the three background goroutines that run the
// auction lifecycle:
//  1. auctionStartLoop – opens scheduled auctions whose start time has passed.
//  2. lotCloseLoop     – closes active lots whose bidding window has elapsed.
//  3. countdownLoop    – pushes live lot countdowns to WS clients every second.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/autolot/auction/internal/config"
	"github.com/autolot/auction/internal/domain"
	"github.com/autolot/auction/internal/service"
)

// ──────────────────────────────────────────────────────────────────────────────
// WsHub interface — minimally required from the Hub
// ──────────────────────────────────────────────────────────────────────────────

// WsHub defines the broadcast operations the Scheduler needs from the WebSocket
// hub. Declared here so the scheduler package does not import the ws/hub.go
// implementation and cause a circular dependency.
type WsHub interface {
	BroadcastLotUpdate(summary *domain.LotSummary)
}

// ──────────────────────────────────────────────────────────────────────────────
// Scheduler
// ──────────────────────────────────────────────────────────────────────────────

// Scheduler wires together the services and runs the three auction lifecycle
// goroutines. Call Start(ctx) once from main(); cancel the context to shut it
// down gracefully.
type Scheduler struct {
	lifecycleSvc *service.LifecycleService
	auctionSvc   *service.AuctionService
	hub          WsHub
	cfg          *config.Config
	logger       *slog.Logger
}

// NewScheduler creates a Scheduler.
func NewScheduler(
	lifecycleSvc *service.LifecycleService,
	auctionSvc *service.AuctionService,
	hub WsHub,
	cfg *config.Config,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		lifecycleSvc: lifecycleSvc,
		auctionSvc:   auctionSvc,
		hub:          hub,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start launches the three background goroutines. It returns immediately;
// all loops run until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.auctionStartLoop(ctx)
	go s.lotCloseLoop(ctx)
	go s.countdownLoop(ctx)
	s.logger.Info("scheduler started", "sweep_interval", s.cfg.Auction.SweepInterval)
}

// ──────────────────────────────────────────────────────────────────────────────
// auctionStartLoop
// ──────────────────────────────────────────────────────────────────────────────

// auctionStartLoop sweeps for scheduled auctions whose start time has passed
// and flips them live. Failures on one auction never block the others; the
// sweep itself is retried on the next tick.
func (s *Scheduler) auctionStartLoop(ctx context.Context) {
	defer s.recoverAndLog("auctionStartLoop")

	ticker := time.NewTicker(s.cfg.Auction.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("auctionStartLoop: shutting down")
			return
		case <-ticker.C:
			if err := s.lifecycleSvc.StartScheduledAuctions(ctx); err != nil {
				s.logger.Error("auctionStartLoop: StartScheduledAuctions", "err", err)
			}
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// lotCloseLoop
// ──────────────────────────────────────────────────────────────────────────────

// lotCloseLoop sweeps for active lots whose bidding window has elapsed and
// closes them. An in-flight bid holding the lot's row lock simply delays the
// close to the next tick; the guarded status transition keeps repeat closes
// harmless.
func (s *Scheduler) lotCloseLoop(ctx context.Context) {
	defer s.recoverAndLog("lotCloseLoop")

	ticker := time.NewTicker(s.cfg.Auction.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("lotCloseLoop: shutting down")
			return
		case <-ticker.C:
			if err := s.lifecycleSvc.EndExpiredLots(ctx); err != nil {
				s.logger.Error("lotCloseLoop: EndExpiredLots", "err", err)
			}
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// countdownLoop
// ──────────────────────────────────────────────────────────────────────────────

// countdownLoop broadcasts the live countdown for every lot on the block once
// a second, so clients can render the clock without polling.
func (s *Scheduler) countdownLoop(ctx context.Context) {
	defer s.recoverAndLog("countdownLoop")

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("countdownLoop: shutting down")
			return
		case <-ticker.C:
			s.broadcastCountdowns(ctx)
		}
	}
}

// broadcastCountdowns is the inner body of countdownLoop, extracted so that
// the defer/recover in the loop catches panics correctly.
func (s *Scheduler) broadcastCountdowns(ctx context.Context) {
	if s.hub == nil {
		return
	}
	lots, err := s.auctionSvc.GetActiveLots(ctx)
	if err != nil {
		s.logger.Warn("countdownLoop: fetch active lots failed", "err", err)
		return
	}
	for _, lot := range lots {
		summary := lot.ToSummary()
		s.hub.BroadcastLotUpdate(&summary)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Panic recovery
// ──────────────────────────────────────────────────────────────────────────────

// recoverAndLog is deferred inside each goroutine to catch unexpected panics,
// log them, and allow the scheduler to continue running.
func (s *Scheduler) recoverAndLog(loop string) {
	if r := recover(); r != nil {
		s.logger.Error("PANIC recovered in scheduler loop",
			"loop", loop, "panic", r)
	}
}
