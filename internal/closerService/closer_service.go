package closer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/clock"
	"auction-marketplace/internal/events"
	"auction-marketplace/internal/metrics"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/utils"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// SweepReport summarizes one sweep
type SweepReport struct {
	Activated int
	Settled   int // ended with a winner
	NoWinner  int // ended without bids
	Skipped   int // already handled by a concurrent sweep
	Failed    int // left for the next sweep
}

// CloserService activates auctions whose start time has come and settles
// auctions whose end time has passed
type CloserService struct {
	auctions  repository.AuctionStore
	ledger    repository.BidLedger
	settler   repository.Settler
	clock     clock.Clock
	rate      decimal.Decimal
	publisher events.Publisher
	cron      *cron.Cron
}

// NewCloserService creates a CloserService charging rate commission on every sale
func NewCloserService(auctions repository.AuctionStore, ledger repository.BidLedger, settler repository.Settler,
	clk clock.Clock, rate decimal.Decimal, publisher events.Publisher) *CloserService {
	return &CloserService{
		auctions:  auctions,
		ledger:    ledger,
		settler:   settler,
		clock:     clk,
		rate:      rate,
		publisher: publisher,
	}
}

// Commission returns the commission owed on a sale at price
func (s *CloserService) Commission(price decimal.Decimal) decimal.Decimal {
	return s.rate.Mul(price).Round(2)
}

// Start runs Sweep on schedule (standard cron syntax or descriptors such as
// "@every 1m") until Stop is called. A sweep still running when the next one
// is due causes that tick to be skipped.
func (s *CloserService) Start(ctx context.Context, schedule string) error {
	logger := cron.PrintfLogger(utils.StandardLogger())
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(schedule, func() { s.Sweep(ctx) }); err != nil {
		return fmt.Errorf("closer: invalid schedule %q: %w", schedule, err)
	}
	s.cron = c
	c.Start()
	utils.Info("closer: scheduled", map[string]any{"schedule": schedule})
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish or ctx to expire
func (s *CloserService) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		utils.Warn("closer: stop timed out with a sweep in progress", nil)
	}
}

// Sweep activates due Pending auctions, then settles every Active auction
// whose end time has passed. Each auction is handled independently; a failure
// is logged and the auction is retried on the next sweep.
func (s *CloserService) Sweep(ctx context.Context) SweepReport {
	start := time.Now()
	now := s.clock.Now()
	var report SweepReport

	s.activateDue(ctx, now, &report)
	s.settleDue(ctx, now, &report)

	metrics.RecordSweepResult(metrics.SweepActivated, report.Activated)
	metrics.RecordSweepResult(metrics.SweepSettled, report.Settled)
	metrics.RecordSweepResult(metrics.SweepNoWinner, report.NoWinner)
	metrics.RecordSweepResult(metrics.SweepSkipped, report.Skipped)
	metrics.RecordSweepResult(metrics.SweepFailed, report.Failed)
	metrics.ObserveSweep(time.Since(start))

	if report != (SweepReport{}) {
		utils.Info("closer: sweep finished", map[string]any{
			"activated": report.Activated,
			"settled":   report.Settled,
			"no_winner": report.NoWinner,
			"skipped":   report.Skipped,
			"failed":    report.Failed,
		})
	}
	return report
}

func (s *CloserService) activateDue(ctx context.Context, now time.Time, report *SweepReport) {
	due, err := s.auctions.ListDueForActivation(ctx, now)
	if err != nil {
		report.Failed++
		utils.Error("closer: failed to list auctions due for activation", map[string]any{"error": err.Error()})
		return
	}

	for _, a := range due {
		activated, err := s.auctions.ActivateAuction(ctx, a.ID, now)
		switch {
		case errors.Is(err, auctionerrors.ErrInvalidStateTransition), errors.Is(err, auctionerrors.ErrAuctionNotFound):
			report.Skipped++
			continue
		case err != nil:
			report.Failed++
			utils.Error("closer: failed to activate auction", map[string]any{"auction_id": a.ID, "error": err.Error()})
			continue
		}

		report.Activated++
		s.publish(ctx, events.Event{
			Type:         events.AuctionStarted,
			AuctionID:    activated.ID,
			AuctioneerID: activated.CreatedBy,
			OccurredAt:   now,
		})
	}
}

func (s *CloserService) settleDue(ctx context.Context, now time.Time, report *SweepReport) {
	due, err := s.auctions.ListDueForSettlement(ctx, now)
	if err != nil {
		report.Failed++
		utils.Error("closer: failed to list auctions due for settlement", map[string]any{"error": err.Error()})
		return
	}

	for _, a := range due {
		settlement, err := s.Settle(ctx, a, now)
		switch {
		case errors.Is(err, auctionerrors.ErrInvalidStateTransition), errors.Is(err, auctionerrors.ErrAuctionNotFound):
			report.Skipped++
		case err != nil:
			report.Failed++
			utils.Error("closer: failed to settle auction", map[string]any{"auction_id": a.ID, "error": err.Error()})
		case settlement.WinnerID == "":
			report.NoWinner++
		default:
			report.Settled++
		}
	}
}

// Settle ends one expired auction. The winner is the bidder of the highest
// bid; when there is one the winner's spend and the auctioneer's commission
// are updated and an Unpaid obligation is created in the same store operation.
// Auctions that are no longer Active are rejected with ErrInvalidStateTransition.
func (s *CloserService) Settle(ctx context.Context, a model.Auction, now time.Time) (model.Settlement, error) {
	if a.Status != model.AuctionActive {
		return model.Settlement{}, fmt.Errorf("service: %w - auction %s is %s", auctionerrors.ErrInvalidStateTransition, a.ID, a.Status)
	}

	settlement := model.Settlement{
		AuctionID:   a.ID,
		ExpectedBid: a.CurrentBid,
		EndedAt:     now,
	}

	winning, err := s.ledger.GetWinningBid(ctx, a.ID)
	switch {
	case errors.Is(err, auctionerrors.ErrNoBids):
	case err != nil:
		return model.Settlement{}, fmt.Errorf("service: failed to determine winner of auction %s: %w", a.ID, err)
	default:
		commission := s.Commission(winning.Amount)
		settlement.ExpectedBid = winning.Amount
		settlement.WinnerID = winning.BidderID
		settlement.FinalPrice = winning.Amount
		settlement.Obligation = &model.CommissionObligation{
			ID:           utils.GenerateID(),
			AuctionID:    a.ID,
			AuctioneerID: a.CreatedBy,
			AmountOwed:   commission,
			Status:       model.ObligationUnpaid,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	if _, err := s.settler.SettleAuction(ctx, settlement); err != nil {
		return model.Settlement{}, fmt.Errorf("service: failed to settle auction %s: %w", a.ID, err)
	}

	event := events.Event{
		Type:         events.AuctionEnded,
		AuctionID:    a.ID,
		AuctioneerID: a.CreatedBy,
		WinnerID:     settlement.WinnerID,
		OccurredAt:   now,
	}
	if settlement.Obligation != nil {
		event.FinalPrice = &settlement.FinalPrice
		event.Commission = &settlement.Obligation.AmountOwed
	}
	s.publish(ctx, event)

	return settlement, nil
}

// publish failures never undo a state change; they are logged only
func (s *CloserService) publish(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		utils.Warn("closer: failed to publish event", map[string]any{
			"type":       e.Type,
			"auction_id": e.AuctionID,
			"error":      err.Error(),
		})
	}
}
