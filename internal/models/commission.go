package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ObligationStatus tracks a commission obligation through review
type ObligationStatus string

const (
	ObligationUnpaid         ObligationStatus = "Unpaid"
	ObligationProofSubmitted ObligationStatus = "ProofSubmitted"
	ObligationVerified       ObligationStatus = "Verified"
	ObligationRejected       ObligationStatus = "Rejected"
)

var obligationTransitions = map[ObligationStatus][]ObligationStatus{
	ObligationUnpaid:         {ObligationProofSubmitted},
	ObligationProofSubmitted: {ObligationVerified, ObligationRejected},
	ObligationRejected:       {ObligationUnpaid},
}

// Valid reports whether s is a known status
func (s ObligationStatus) Valid() bool {
	switch s {
	case ObligationUnpaid, ObligationProofSubmitted, ObligationVerified, ObligationRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is reachable from s in one step.
// Rejected -> Unpaid is the only backward edge; Verified is terminal.
func (s ObligationStatus) CanTransitionTo(next ObligationStatus) bool {
	for _, allowed := range obligationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CommissionObligation is the commission an auctioneer owes for one sold auction
type CommissionObligation struct {
	ID             string           `json:"id"`
	AuctionID      string           `json:"auction_id"`
	AuctioneerID   string           `json:"auctioneer_id"`
	AmountOwed     decimal.Decimal  `json:"amount_owed"`
	VerifiedAmount decimal.Decimal  `json:"verified_amount"`
	Status         ObligationStatus `json:"status"`
	Proof          *Image           `json:"proof,omitempty"`
	Comment        string           `json:"comment,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	ReviewedAt     *time.Time       `json:"reviewed_at,omitempty"`
}

// ObligationFilter narrows obligation listings. Zero values match everything.
type ObligationFilter struct {
	Status       ObligationStatus
	AuctioneerID string
}

// Matches reports whether o satisfies the filter
func (f ObligationFilter) Matches(o CommissionObligation) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.AuctioneerID != "" && o.AuctioneerID != f.AuctioneerID {
		return false
	}
	return true
}

// Settlement is everything that changes when one expired auction is closed.
// Stores apply it as a single unit.
type Settlement struct {
	AuctionID   string
	ExpectedBid decimal.Decimal // CurrentBid observed when the winner was chosen
	WinnerID    string          // empty when the auction had no bids
	FinalPrice  decimal.Decimal
	Obligation  *CommissionObligation
	EndedAt     time.Time
}
