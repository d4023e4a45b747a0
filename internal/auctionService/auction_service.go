package auction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/clock"
	"auction-marketplace/internal/media"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/utils"

	"github.com/shopspring/decimal"
)

// NewAuction is what an auctioneer supplies when listing an item
type NewAuction struct {
	Title       string
	Description string
	Category    string
	Condition   string
	StartingBid decimal.Decimal
	StartTime   time.Time
	EndTime     time.Time
	Image       model.Image
}

// AuctionService manages auction listings
type AuctionService struct {
	accounts repository.AccountStore
	auctions repository.AuctionStore
	ledger   repository.BidLedger
	images   media.Uploader
	clock    clock.Clock
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(accounts repository.AccountStore, auctions repository.AuctionStore, ledger repository.BidLedger,
	images media.Uploader, clk clock.Clock) *AuctionService {
	return &AuctionService{
		accounts: accounts,
		auctions: auctions,
		ledger:   ledger,
		images:   images,
		clock:    clk,
	}
}

// CreateAuction lists a new item for auctioneerID. The auction opens
// immediately when its start time has already come, otherwise it stays
// Pending until the closer activates it.
func (s *AuctionService) CreateAuction(ctx context.Context, auctioneerID string, in NewAuction) (model.Auction, error) {
	now := s.clock.Now()
	if err := validateNewAuction(in, now); err != nil {
		return model.Auction{}, err
	}

	owner, err := s.accounts.GetAccount(ctx, auctioneerID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to load auctioneer %s: %w", auctioneerID, err)
	}
	if owner.Role != model.RoleAuctioneer {
		return model.Auction{}, fmt.Errorf("service: %w - only auctioneers can list items", auctionerrors.ErrForbidden)
	}
	if owner.UnpaidCommission.IsPositive() {
		return model.Auction{}, fmt.Errorf("service: %w - %s outstanding", auctionerrors.ErrUnpaidCommission, owner.UnpaidCommission.StringFixed(2))
	}

	a := model.Auction{
		ID:          utils.GenerateID(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Condition:   in.Condition,
		Image:       in.Image,
		StartingBid: in.StartingBid,
		CurrentBid:  in.StartingBid,
		StartTime:   in.StartTime.UTC(),
		EndTime:     in.EndTime.UTC(),
		Status:      model.InitialStatus(in.StartTime, now),
		CreatedBy:   owner.ID,
		CreatedAt:   now,
	}

	if err := s.auctions.CreateAuction(ctx, a); err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to create auction %q: %w", a.Title, err)
	}
	return a, nil
}

var conditions = map[string]bool{"New": true, "Used": true}

func validateNewAuction(in NewAuction, now time.Time) error {
	switch {
	case strings.TrimSpace(in.Title) == "",
		strings.TrimSpace(in.Description) == "",
		strings.TrimSpace(in.Category) == "":
		return fmt.Errorf("service: %w - please provide all details", auctionerrors.ErrInvalidInput)
	case !conditions[in.Condition]:
		return fmt.Errorf("service: %w - condition must be New or Used", auctionerrors.ErrInvalidInput)
	case !in.StartingBid.IsPositive():
		return fmt.Errorf("service: %w - starting bid must be positive", auctionerrors.ErrInvalidInput)
	case !in.StartingBid.Equal(in.StartingBid.Round(2)):
		return fmt.Errorf("service: %w - starting bid cannot have more than 2 decimal places", auctionerrors.ErrInvalidInput)
	case in.StartTime.IsZero() || in.EndTime.IsZero():
		return fmt.Errorf("service: %w - start and end time are required", auctionerrors.ErrInvalidInput)
	case !in.StartTime.Before(in.EndTime):
		return fmt.Errorf("service: %w - auction starting time must be less than ending time", auctionerrors.ErrInvalidInput)
	case !in.EndTime.After(now):
		return fmt.Errorf("service: %w - auction ending time must be in the future", auctionerrors.ErrInvalidInput)
	}
	return nil
}

// GetAuctionDetails returns an auction and its bids, highest first
func (s *AuctionService) GetAuctionDetails(ctx context.Context, id string) (model.Auction, []model.Bid, error) {
	if id == "" {
		return model.Auction{}, nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidInput)
	}

	a, err := s.auctions.GetAuction(ctx, id)
	if err != nil {
		return model.Auction{}, nil, fmt.Errorf("service: failed to get auction %s: %w", id, err)
	}

	bids, err := s.ledger.GetBidsByAuction(ctx, id)
	if err != nil && !errors.Is(err, auctionerrors.ErrNoBids) {
		return model.Auction{}, nil, fmt.Errorf("service: failed to get bids for auction %s: %w", id, err)
	}
	if bids == nil {
		bids = []model.Bid{}
	}
	return a, bids, nil
}

// ListAuctions returns every auction, optionally narrowed to one status
func (s *AuctionService) ListAuctions(ctx context.Context, status model.AuctionStatus) ([]model.Auction, error) {
	switch status {
	case "", model.AuctionPending, model.AuctionActive, model.AuctionEnded:
	default:
		return nil, fmt.Errorf("service: %w - unknown auction status %q", auctionerrors.ErrInvalidInput, status)
	}

	auctions, err := s.auctions.ListAuctions(ctx, model.AuctionFilter{Status: status})
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions: %w", err)
	}
	return auctions, nil
}

// ListMyAuctions returns the auctions created by auctioneerID
func (s *AuctionService) ListMyAuctions(ctx context.Context, auctioneerID string) ([]model.Auction, error) {
	if auctioneerID == "" {
		return nil, fmt.Errorf("service: %w - empty auctioneer ID", auctionerrors.ErrInvalidInput)
	}

	auctions, err := s.auctions.ListAuctions(ctx, model.AuctionFilter{CreatedBy: auctioneerID})
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions of %s: %w", auctioneerID, err)
	}
	return auctions, nil
}

// DeleteAuction removes an auction. Its owner may delete it only while it has
// no bids; a super admin may delete any auction.
func (s *AuctionService) DeleteAuction(ctx context.Context, actor model.Account, id string) error {
	if id == "" {
		return fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidInput)
	}

	a, err := s.auctions.GetAuction(ctx, id)
	if err != nil {
		return fmt.Errorf("service: failed to get auction %s: %w", id, err)
	}

	switch {
	case actor.Role == model.RoleSuperAdmin:
	case actor.Role == model.RoleAuctioneer && a.CreatedBy == actor.ID:
		if a.BidCount > 0 {
			return fmt.Errorf("service: %w - auction %s already has bids", auctionerrors.ErrConflict, id)
		}
	default:
		return fmt.Errorf("service: %w - auction %s belongs to another account", auctionerrors.ErrForbidden, id)
	}

	if err := s.auctions.DeleteAuction(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete auction %s: %w", id, err)
	}

	if s.images != nil && a.Image.PublicID != "" {
		if err := s.images.Delete(ctx, a.Image.PublicID); err != nil {
			utils.Warn("service: failed to delete auction image", map[string]any{
				"auction_id": id,
				"public_id":  a.Image.PublicID,
				"error":      err.Error(),
			})
		}
	}
	return nil
}
