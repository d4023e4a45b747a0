package perftests

import (
	"context"
	"fmt"
	"time"

	bidding "auction-marketplace/internal/biddingService"
	"auction-marketplace/internal/clock"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"

	"github.com/shopspring/decimal"
)

var baseTime = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

// bench holds a memory store whose auctions stay open for the whole run
type bench struct {
	repo  *repository.MemoryRepo
	clock *clock.Manual
	svc   *bidding.BiddingService
}

func newBench() *bench {
	repo := repository.NewMemoryRepo()
	clk := clock.NewManual(baseTime)
	_ = repo.CreateAccount(context.Background(), model.Account{
		ID: "seller", UserName: "seller", Email: "seller@bench.local", Role: model.RoleAuctioneer, CreatedAt: baseTime,
	})
	return &bench{repo: repo, clock: clk, svc: bidding.NewBiddingService(repo, repo, clk)}
}

func bidderID(i int) string { return fmt.Sprintf("user_%d", i) }

func auctionID(i int) string { return fmt.Sprintf("auction_%d", i) }

func (b *bench) seedBidders(n int) {
	for i := 0; i < n; i++ {
		_ = b.repo.CreateAccount(context.Background(), model.Account{
			ID:        bidderID(i),
			UserName:  bidderID(i),
			Email:     bidderID(i) + "@bench.local",
			Role:      model.RoleBidder,
			CreatedAt: baseTime,
		})
	}
}

func (b *bench) seedAuctions(n int, startingBid int64) {
	for i := 0; i < n; i++ {
		_ = b.repo.CreateAuction(context.Background(), model.Auction{
			ID:          auctionID(i),
			Title:       fmt.Sprintf("title_%d", i),
			Description: "Load test item",
			StartingBid: decimal.NewFromInt(startingBid),
			CurrentBid:  decimal.NewFromInt(startingBid),
			StartTime:   baseTime,
			EndTime:     baseTime.Add(24 * time.Hour),
			Status:      model.AuctionActive,
			CreatedBy:   "seller",
			CreatedAt:   baseTime,
		})
	}
}
