package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"auction-marketplace/internal/auctionerrors"
	model "auction-marketplace/internal/models"

	"github.com/shopspring/decimal"
)

// MemoryRepo is a concurrency-safe in-memory implementation of Store.
// Every mutation happens under a single write lock, which makes each
// check-and-update atomic.
type MemoryRepo struct {
	mu             sync.RWMutex
	accounts       map[string]model.Account // key: accountID
	emails         map[string]string        // key: lower-cased email -> accountID
	accountOrder   []string
	auctions       map[string]model.Auction // key: auctionID
	auctionOrder   []string
	bids           map[string][]model.Bid // key: auctionID -> bids in placement order
	bidderAuctions map[string][]string    // key: bidderID -> auctionIDs bid on
	obligations    map[string]model.CommissionObligation
	obligationIDs  []string
}

var _ Store = (*MemoryRepo)(nil)

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		accounts:       make(map[string]model.Account),
		emails:         make(map[string]string),
		auctions:       make(map[string]model.Auction),
		bids:           make(map[string][]model.Bid),
		bidderAuctions: make(map[string][]string),
		obligations:    make(map[string]model.CommissionObligation),
	}
}

// --- AccountStore -----------------------------------------------------------

func (r *MemoryRepo) CreateAccount(_ context.Context, acct model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(acct.Email)
	if _, exists := r.emails[key]; exists {
		return fmt.Errorf("create account %s: %w", acct.Email, auctionerrors.ErrAlreadyRegistered)
	}
	if _, exists := r.accounts[acct.ID]; exists {
		return fmt.Errorf("create account %s: %w", acct.ID, auctionerrors.ErrAlreadyRegistered)
	}

	r.accounts[acct.ID] = acct
	r.emails[key] = acct.ID
	r.accountOrder = append(r.accountOrder, acct.ID)
	return nil
}

func (r *MemoryRepo) GetAccount(_ context.Context, id string) (model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acct, ok := r.accounts[id]
	if !ok {
		return model.Account{}, fmt.Errorf("get account %s: %w", id, auctionerrors.ErrAccountNotFound)
	}
	return acct, nil
}

func (r *MemoryRepo) GetAccountByEmail(_ context.Context, email string) (model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emails[strings.ToLower(email)]
	if !ok {
		return model.Account{}, fmt.Errorf("get account by email %s: %w", email, auctionerrors.ErrAccountNotFound)
	}
	return r.accounts[id], nil
}

func (r *MemoryRepo) ListAccounts(_ context.Context) ([]model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]model.Account, 0, len(r.accountOrder))
	for _, id := range r.accountOrder {
		accounts = append(accounts, r.accounts[id])
	}
	return accounts, nil
}

// --- AuctionStore -----------------------------------------------------------

func (r *MemoryRepo) CreateAuction(_ context.Context, auction model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.auctions[auction.ID]; exists {
		return fmt.Errorf("create auction %s: %w", auction.ID, auctionerrors.ErrConflict)
	}
	r.auctions[auction.ID] = auction
	r.auctionOrder = append(r.auctionOrder, auction.ID)
	return nil
}

func (r *MemoryRepo) GetAuction(_ context.Context, id string) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auction, ok := r.auctions[id]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", id, auctionerrors.ErrAuctionNotFound)
	}
	return auction, nil
}

func (r *MemoryRepo) ListAuctions(_ context.Context, filter model.AuctionFilter) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collectAuctions(filter.Matches), nil
}

func (r *MemoryRepo) DeleteAuction(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[id]; !ok {
		return fmt.Errorf("delete auction %s: %w", id, auctionerrors.ErrAuctionNotFound)
	}
	delete(r.auctions, id)
	for i, existing := range r.auctionOrder {
		if existing == id {
			r.auctionOrder = append(r.auctionOrder[:i], r.auctionOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryRepo) ListDueForActivation(_ context.Context, now time.Time) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collectAuctions(func(a model.Auction) bool {
		return a.Status == model.AuctionPending && !a.StartTime.After(now)
	}), nil
}

func (r *MemoryRepo) ActivateAuction(_ context.Context, id string, now time.Time) (model.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	auction, ok := r.auctions[id]
	if !ok {
		return model.Auction{}, fmt.Errorf("activate auction %s: %w", id, auctionerrors.ErrAuctionNotFound)
	}
	if auction.Status != model.AuctionPending || auction.StartTime.After(now) {
		return model.Auction{}, fmt.Errorf("activate auction %s in status %s: %w", id, auction.Status, auctionerrors.ErrInvalidStateTransition)
	}
	auction.Status = model.AuctionActive
	r.auctions[id] = auction
	return auction, nil
}

func (r *MemoryRepo) ListDueForSettlement(_ context.Context, now time.Time) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collectAuctions(func(a model.Auction) bool {
		return a.Status == model.AuctionActive && !a.EndTime.After(now)
	}), nil
}

// collectAuctions returns matching auctions in creation order. Callers hold the lock.
func (r *MemoryRepo) collectAuctions(match func(model.Auction) bool) []model.Auction {
	auctions := make([]model.Auction, 0)
	for _, id := range r.auctionOrder {
		if a := r.auctions[id]; match(a) {
			auctions = append(auctions, a)
		}
	}
	return auctions
}

// --- BidLedger --------------------------------------------------------------

func (r *MemoryRepo) PlaceBid(_ context.Context, bid model.Bid, now time.Time) (model.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	auction, ok := r.auctions[bid.AuctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("place bid on auction %s: %w", bid.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	if err := ClassifyBidRejection(auction, bid.Amount, now); err != nil {
		return model.Auction{}, err
	}

	auction.CurrentBid = bid.Amount
	auction.HighestBidderID = bid.BidderID
	auction.BidCount++
	r.auctions[auction.ID] = auction
	r.bids[auction.ID] = append(r.bids[auction.ID], bid)

	for _, id := range r.bidderAuctions[bid.BidderID] {
		if id == auction.ID {
			return auction, nil
		}
	}
	r.bidderAuctions[bid.BidderID] = append(r.bidderAuctions[bid.BidderID], auction.ID)

	return auction, nil
}

// GetBidsByAuction returns all bids for an auction, highest first
func (r *MemoryRepo) GetBidsByAuction(_ context.Context, auctionID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	bids, ok := r.bids[auctionID]
	if !ok || len(bids) == 0 {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}

	sorted := append([]model.Bid(nil), bids...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.GreaterThan(sorted[j].Amount)
	})
	return sorted, nil
}

// GetWinningBid returns the highest bid for an auction
func (r *MemoryRepo) GetWinningBid(_ context.Context, auctionID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids, ok := r.bids[auctionID]
	if !ok || len(bids) == 0 {
		return model.Bid{}, fmt.Errorf("get winning bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}

	// PlaceBid only appends strictly higher amounts
	return bids[len(bids)-1], nil
}

// GetAuctionsByBidder returns all auctions a bidder has bid on
func (r *MemoryRepo) GetAuctionsByBidder(_ context.Context, bidderID string) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids, ok := r.bidderAuctions[bidderID]
	if !ok || len(ids) == 0 {
		return nil, fmt.Errorf("get auctions for bidder %s: %w", bidderID, auctionerrors.ErrNoBids)
	}

	auctions := make([]model.Auction, 0, len(ids))
	for _, id := range ids {
		if a, exists := r.auctions[id]; exists {
			auctions = append(auctions, a)
		}
	}
	return auctions, nil
}

// --- CommissionLedger -------------------------------------------------------

func (r *MemoryRepo) GetObligation(_ context.Context, id string) (model.CommissionObligation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.obligations[id]
	if !ok {
		return model.CommissionObligation{}, fmt.Errorf("get obligation %s: %w", id, auctionerrors.ErrObligationNotFound)
	}
	return o, nil
}

func (r *MemoryRepo) ListObligations(_ context.Context, filter model.ObligationFilter) ([]model.CommissionObligation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]model.CommissionObligation, 0)
	for _, id := range r.obligationIDs {
		if o := r.obligations[id]; filter.Matches(o) {
			result = append(result, o)
		}
	}
	return result, nil
}

func (r *MemoryRepo) TransitionObligation(_ context.Context, id string, from, to model.ObligationStatus, mutate func(*model.CommissionObligation)) (model.CommissionObligation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.obligations[id]
	if !ok {
		return model.CommissionObligation{}, fmt.Errorf("transition obligation %s: %w", id, auctionerrors.ErrObligationNotFound)
	}
	if o.Status != from || !from.CanTransitionTo(to) {
		return model.CommissionObligation{}, fmt.Errorf("transition obligation %s from %s to %s (is %s): %w", id, from, to, o.Status, auctionerrors.ErrInvalidStateTransition)
	}

	if mutate != nil {
		mutate(&o)
	}
	o.Status = to
	r.obligations[id] = o
	return o, nil
}

func (r *MemoryRepo) ApplyReview(_ context.Context, id string, to model.ObligationStatus, amount decimal.Decimal, at time.Time) (model.CommissionObligation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.obligations[id]
	if !ok {
		return model.CommissionObligation{}, fmt.Errorf("review obligation %s: %w", id, auctionerrors.ErrObligationNotFound)
	}
	if o.Status != model.ObligationProofSubmitted || !o.Status.CanTransitionTo(to) {
		return model.CommissionObligation{}, fmt.Errorf("review obligation %s from %s to %s: %w", id, o.Status, to, auctionerrors.ErrInvalidStateTransition)
	}

	if to == model.ObligationVerified {
		acct, ok := r.accounts[o.AuctioneerID]
		if !ok {
			return model.CommissionObligation{}, fmt.Errorf("review obligation %s: auctioneer %s: %w", id, o.AuctioneerID, auctionerrors.ErrAccountNotFound)
		}
		acct.UnpaidCommission = decimal.Max(acct.UnpaidCommission.Sub(amount), decimal.Zero)
		r.accounts[acct.ID] = acct
		o.VerifiedAmount = amount
	}

	reviewedAt := at
	o.Status = to
	o.ReviewedAt = &reviewedAt
	o.UpdatedAt = at
	r.obligations[id] = o
	return o, nil
}

// --- Settler ----------------------------------------------------------------

func (r *MemoryRepo) SettleAuction(_ context.Context, s model.Settlement) (model.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	auction, ok := r.auctions[s.AuctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("settle auction %s: %w", s.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	if err := ClassifySettlementRejection(auction, s); err != nil {
		return model.Auction{}, err
	}

	// validate every record before touching any of them
	var winner, auctioneer model.Account
	if s.WinnerID != "" {
		if winner, ok = r.accounts[s.WinnerID]; !ok {
			return model.Auction{}, fmt.Errorf("settle auction %s: winner %s: %w", s.AuctionID, s.WinnerID, auctionerrors.ErrAccountNotFound)
		}
		if s.Obligation != nil {
			if auctioneer, ok = r.accounts[s.Obligation.AuctioneerID]; !ok {
				return model.Auction{}, fmt.Errorf("settle auction %s: auctioneer %s: %w", s.AuctionID, s.Obligation.AuctioneerID, auctionerrors.ErrAccountNotFound)
			}
			if _, exists := r.obligations[s.Obligation.ID]; exists {
				return model.Auction{}, fmt.Errorf("settle auction %s: obligation %s: %w", s.AuctionID, s.Obligation.ID, auctionerrors.ErrConflict)
			}
		}
	}

	endedAt := s.EndedAt
	auction.Status = model.AuctionEnded
	auction.WinnerID = s.WinnerID
	auction.EndedAt = &endedAt
	r.auctions[auction.ID] = auction

	if s.WinnerID == "" {
		return auction, nil
	}

	winner.MoneySpent = winner.MoneySpent.Add(s.FinalPrice)
	winner.AuctionsWon++
	r.accounts[winner.ID] = winner

	if s.Obligation != nil {
		// winner and auctioneer may share a record
		auctioneer = r.accounts[auctioneer.ID]
		auctioneer.UnpaidCommission = auctioneer.UnpaidCommission.Add(s.Obligation.AmountOwed)
		r.accounts[auctioneer.ID] = auctioneer

		r.obligations[s.Obligation.ID] = *s.Obligation
		r.obligationIDs = append(r.obligationIDs, s.Obligation.ID)
	}

	return auction, nil
}

// AddObligation stores an obligation directly. This method is intended for tests only.
func (r *MemoryRepo) AddObligation(o model.CommissionObligation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.obligations[o.ID]; !exists {
		r.obligationIDs = append(r.obligationIDs, o.ID)
	}
	r.obligations[o.ID] = o
}
