package repository

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

import (
	"context"
	"fmt"
	"time"

	"auction-marketplace/internal/auctionerrors"
	model "auction-marketplace/internal/models"

	"github.com/shopspring/decimal"
)

// AccountStore holds registered accounts. Accounts are never deleted.
type AccountStore interface {
	CreateAccount(ctx context.Context, acct model.Account) error
	GetAccount(ctx context.Context, id string) (model.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (model.Account, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
}

// AuctionStore holds auction records
type AuctionStore interface {
	CreateAuction(ctx context.Context, auction model.Auction) error
	GetAuction(ctx context.Context, id string) (model.Auction, error)
	ListAuctions(ctx context.Context, filter model.AuctionFilter) ([]model.Auction, error)
	DeleteAuction(ctx context.Context, id string) error
	ListDueForActivation(ctx context.Context, now time.Time) ([]model.Auction, error)
	ActivateAuction(ctx context.Context, id string, now time.Time) (model.Auction, error)
	ListDueForSettlement(ctx context.Context, now time.Time) ([]model.Auction, error)
}

// BidLedger is the append-only record of accepted bids
type BidLedger interface {
	// PlaceBid appends bid and raises the auction's current bid in one atomic
	// step. It fails without mutating anything unless the auction is Active,
	// now is before its end time and bid.Amount exceeds the current bid.
	PlaceBid(ctx context.Context, bid model.Bid, now time.Time) (model.Auction, error)
	GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error)
	GetWinningBid(ctx context.Context, auctionID string) (model.Bid, error)
	GetAuctionsByBidder(ctx context.Context, bidderID string) ([]model.Auction, error)
}

// CommissionLedger tracks commission obligations and their review
type CommissionLedger interface {
	GetObligation(ctx context.Context, id string) (model.CommissionObligation, error)
	ListObligations(ctx context.Context, filter model.ObligationFilter) ([]model.CommissionObligation, error)
	// TransitionObligation moves an obligation from one status to another.
	// mutate may set extra fields on the updated record; it must not change Status.
	TransitionObligation(ctx context.Context, id string, from, to model.ObligationStatus, mutate func(*model.CommissionObligation)) (model.CommissionObligation, error)
	// ApplyReview settles a ProofSubmitted obligation as Verified or Rejected.
	// Verification reduces the auctioneer's unpaid commission by amount, floored at zero.
	ApplyReview(ctx context.Context, id string, to model.ObligationStatus, amount decimal.Decimal, at time.Time) (model.CommissionObligation, error)
}

// Settler applies auction settlements
type Settler interface {
	// SettleAuction ends an Active auction and applies all financial side
	// effects as one unit. It returns ErrInvalidStateTransition when the
	// auction is no longer Active and ErrConflict when its current bid moved.
	SettleAuction(ctx context.Context, s model.Settlement) (model.Auction, error)
}

// Store is the full persistence surface of the marketplace
type Store interface {
	AccountStore
	AuctionStore
	BidLedger
	CommissionLedger
	Settler
}

// ClassifyBidRejection explains why a bid for amount cannot land on a
func ClassifyBidRejection(a model.Auction, amount decimal.Decimal, now time.Time) error {
	switch {
	case a.Status != model.AuctionActive:
		return fmt.Errorf("auction %s is %s: %w", a.ID, a.Status, auctionerrors.ErrAuctionNotActive)
	case !now.Before(a.EndTime):
		return fmt.Errorf("auction %s ended at %s: %w", a.ID, a.EndTime.Format(time.RFC3339), auctionerrors.ErrAuctionExpired)
	case amount.LessThanOrEqual(a.CurrentBid):
		return fmt.Errorf("%w - current highest bid is %s", auctionerrors.ErrInvalidBid, a.CurrentBid.StringFixed(2))
	}
	return nil
}

// ClassifySettlementRejection explains why s cannot be applied to a
func ClassifySettlementRejection(a model.Auction, s model.Settlement) error {
	switch {
	case a.Status != model.AuctionActive:
		return fmt.Errorf("settle auction %s in status %s: %w", a.ID, a.Status, auctionerrors.ErrInvalidStateTransition)
	case a.EndTime.After(s.EndedAt):
		return fmt.Errorf("settle auction %s before its end time: %w", a.ID, auctionerrors.ErrInvalidStateTransition)
	case !a.CurrentBid.Equal(s.ExpectedBid):
		return fmt.Errorf("settle auction %s: current bid %s, expected %s: %w", a.ID, a.CurrentBid, s.ExpectedBid, auctionerrors.ErrConflict)
	}
	return nil
}
