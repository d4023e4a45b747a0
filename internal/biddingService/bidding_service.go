package bidding

import (
	"context"
	"errors"
	"fmt"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/clock"
	"auction-marketplace/internal/metrics"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/utils"

	"github.com/shopspring/decimal"
)

// BiddingService defines the business logic for auction bidding
type BiddingService struct {
	accounts repository.AccountStore
	ledger   repository.BidLedger
	clock    clock.Clock
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(accounts repository.AccountStore, ledger repository.BidLedger, clk clock.Clock) *BiddingService {
	return &BiddingService{
		accounts: accounts,
		ledger:   ledger,
		clock:    clk,
	}
}

// PlaceBid validates and records a bidder's bid on an auction. On success it
// returns the recorded bid and the auction as updated by it.
func (s *BiddingService) PlaceBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal) (model.Bid, model.Auction, error) {
	bidder, err := s.validateBid(ctx, auctionID, bidderID, amount)
	if err != nil {
		metrics.RecordBid(outcomeOf(err))
		return model.Bid{}, model.Auction{}, err
	}

	now := s.clock.Now()
	bid := model.Bid{
		BidID:      utils.GenerateID(),
		AuctionID:  auctionID,
		BidderID:   bidder.ID,
		BidderName: bidder.UserName,
		Amount:     amount,
		CreatedAt:  now,
	}

	auction, err := s.ledger.PlaceBid(ctx, bid, now)
	if err != nil {
		metrics.RecordBid(outcomeOf(err))
		return model.Bid{}, model.Auction{}, fmt.Errorf("service: failed to place bid on auction %s by %s: %w", auctionID, bidderID, err)
	}

	metrics.RecordBid(metrics.BidAccepted)
	return bid, auction, nil
}

// validateBid checks input and that the caller is allowed to bid. Auction
// state is checked by the ledger in the same step that records the bid.
func (s *BiddingService) validateBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal) (model.Account, error) {
	if auctionID == "" || bidderID == "" {
		return model.Account{}, fmt.Errorf("service: %w - missing auctionID or bidderID", auctionerrors.ErrInvalidBid)
	}
	if !amount.IsPositive() {
		return model.Account{}, fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}
	if !amount.Equal(amount.Round(2)) {
		return model.Account{}, fmt.Errorf("service: %w - bid amount %s has more than 2 decimal places", auctionerrors.ErrInvalidInput, amount)
	}

	bidder, err := s.accounts.GetAccount(ctx, bidderID)
	if err != nil {
		return model.Account{}, fmt.Errorf("service: failed to load bidder %s: %w", bidderID, err)
	}
	if bidder.Role != model.RoleBidder {
		return model.Account{}, fmt.Errorf("service: %w - only bidders can place bids", auctionerrors.ErrForbidden)
	}
	return bidder, nil
}

// GetBidsForAuction returns all bids for an auction, highest first
func (s *BiddingService) GetBidsForAuction(ctx context.Context, auctionID string) ([]model.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidInput)
	}

	bids, err := s.ledger.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}

	return bids, nil
}

// GetWinningBid returns the highest bid for an auction
func (s *BiddingService) GetWinningBid(ctx context.Context, auctionID string) (model.Bid, error) {
	if auctionID == "" {
		return model.Bid{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidInput)
	}

	winningBid, err := s.ledger.GetWinningBid(ctx, auctionID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to get winning bid for auction %s: %w", auctionID, err)
	}

	return winningBid, nil
}

// GetAuctionsByBidder returns all auctions a bidder has placed bids on
func (s *BiddingService) GetAuctionsByBidder(ctx context.Context, bidderID string) ([]model.Auction, error) {
	if bidderID == "" {
		return nil, fmt.Errorf("service: %w - empty bidder ID", auctionerrors.ErrInvalidInput)
	}

	auctions, err := s.ledger.GetAuctionsByBidder(ctx, bidderID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get auctions for bidder %s: %w", bidderID, err)
	}

	return auctions, nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, auctionerrors.ErrInvalidBid),
		errors.Is(err, auctionerrors.ErrAuctionNotActive),
		errors.Is(err, auctionerrors.ErrAuctionExpired),
		errors.Is(err, auctionerrors.ErrInvalidInput),
		errors.Is(err, auctionerrors.ErrForbidden),
		errors.Is(err, auctionerrors.ErrNotFound):
		return metrics.BidRejected
	}
	return metrics.BidFailed
}
