package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuctionStatus is the lifecycle stage of an auction
type AuctionStatus string

const (
	AuctionPending AuctionStatus = "Pending"
	AuctionActive  AuctionStatus = "Active"
	AuctionEnded   AuctionStatus = "Ended"
)

// CanTransitionTo reports whether moving from s to next is a forward step.
// Ended is terminal.
func (s AuctionStatus) CanTransitionTo(next AuctionStatus) bool {
	switch s {
	case AuctionPending:
		return next == AuctionActive
	case AuctionActive:
		return next == AuctionEnded
	}
	return false
}

// Auction represents an item listed by an auctioneer
type Auction struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	Condition       string          `json:"condition"`
	Image           Image           `json:"image"`
	StartingBid     decimal.Decimal `json:"starting_bid"`
	CurrentBid      decimal.Decimal `json:"current_bid"`
	HighestBidderID string          `json:"highest_bidder_id,omitempty"`
	WinnerID        string          `json:"winner_id,omitempty"`
	BidCount        int             `json:"bid_count"`
	StartTime       time.Time       `json:"start_time"`
	EndTime         time.Time       `json:"end_time"`
	Status          AuctionStatus   `json:"status"`
	CreatedBy       string          `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	EndedAt         *time.Time      `json:"ended_at,omitempty"`
}

// InitialStatus returns the status a new auction should start in
func InitialStatus(start, now time.Time) AuctionStatus {
	if start.After(now) {
		return AuctionPending
	}
	return AuctionActive
}

// AuctionFilter narrows auction listings. Zero values match everything.
type AuctionFilter struct {
	Status    AuctionStatus
	CreatedBy string
}

// Matches reports whether a satisfies the filter
func (f AuctionFilter) Matches(a Auction) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.CreatedBy != "" && a.CreatedBy != f.CreatedBy {
		return false
	}
	return true
}
