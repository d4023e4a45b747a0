package events

//go:generate mockgen -source=events.go -destination=mock_events.go -package=events

import (
	"context"
	"time"

	"auction-marketplace/utils"

	"github.com/shopspring/decimal"
)

// Event types emitted by the auction closer
const (
	AuctionStarted = "auction.started"
	AuctionEnded   = "auction.ended"
)

// Event is a lifecycle notification about one auction
type Event struct {
	Type         string           `json:"type"`
	AuctionID    string           `json:"auction_id"`
	AuctioneerID string           `json:"auctioneer_id"`
	WinnerID     string           `json:"winner_id,omitempty"`
	FinalPrice   *decimal.Decimal `json:"final_price,omitempty"`
	Commission   *decimal.Decimal `json:"commission,omitempty"`
	OccurredAt   time.Time        `json:"occurred_at"`
}

// Publisher delivers lifecycle events to interested consumers
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// LogPublisher writes events to the application log. It is used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, e Event) error {
	fields := map[string]any{
		"type":          e.Type,
		"auction_id":    e.AuctionID,
		"auctioneer_id": e.AuctioneerID,
		"occurred_at":   e.OccurredAt.Format(time.RFC3339),
	}
	if e.WinnerID != "" {
		fields["winner_id"] = e.WinnerID
	}
	if e.FinalPrice != nil {
		fields["final_price"] = e.FinalPrice.StringFixed(2)
	}
	utils.Info("event published", fields)
	return nil
}

func (LogPublisher) Close() error { return nil }
