package integrationtests

import (
	"context"
	"net/http"
	"testing"
	"time"

	closer "auction-marketplace/internal/closerService"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type auctionView struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	CurrentBid      string `json:"current_bid"`
	HighestBidderID string `json:"highest_bidder_id"`
	WinnerID        string `json:"winner_id"`
	BidCount        int    `json:"bid_count"`
}

type accountView struct {
	ID               string `json:"id"`
	UnpaidCommission string `json:"unpaid_commission"`
	MoneySpent       string `json:"money_spent"`
	AuctionsWon      int    `json:"auctions_won"`
}

func requireAmount(t *testing.T, want, got string) {
	t.Helper()
	require.True(t, decimal.RequireFromString(want).Equal(decimal.RequireFromString(got)), "want %s, got %s", want, got)
}

func (e *TestEnv) Me(t *testing.T, token string) accountView {
	t.Helper()
	resp, w := e.JSON(t, http.MethodGet, "/api/v1/user/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code, resp.Error)
	var me accountView
	resp.Decode(t, &me)
	return me
}

func (e *TestEnv) Auction(t *testing.T, id string) auctionView {
	t.Helper()
	resp, w := e.JSON(t, http.MethodGet, "/api/v1/auctionitem/auction/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code, resp.Error)
	var details struct {
		Auction auctionView `json:"auction"`
	}
	resp.Decode(t, &details)
	return details.Auction
}

func (e *TestEnv) Bid(t *testing.T, token, auctionID string, amount float64) (Response, int) {
	t.Helper()
	resp, w := e.JSON(t, http.MethodPost, "/api/v1/bid/place/"+auctionID, token, map[string]float64{"amount": amount})
	return resp, w.Code
}

func TestAuctionLifecycle(t *testing.T) {
	env := SetupTestEnv(t)

	_, sellerToken := env.Register(t, "seller", "Auctioneer")
	bidder1ID, bidder1Token := env.Register(t, "bidder1", "Bidder")
	_, bidder2Token := env.Register(t, "bidder2", "Bidder")

	auctionID := env.CreateAuction(t, sellerToken, "Vintage camera", "100", baseTime, baseTime.Add(time.Hour))
	require.Equal(t, "Active", env.Auction(t, auctionID).Status)

	resp, code := env.Bid(t, bidder1Token, auctionID, 150)
	require.Equal(t, http.StatusCreated, code, resp.Error)

	resp, code = env.Bid(t, bidder2Token, auctionID, 120)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "bid amount too low", resp.Message)

	resp, code = env.Bid(t, bidder2Token, auctionID, 150)
	require.Equal(t, http.StatusBadRequest, code, "equal bid must be rejected")

	resp, code = env.Bid(t, bidder2Token, auctionID, 150.001)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "invalid request", resp.Message)

	resp, w := env.JSON(t, http.MethodGet, "/api/v1/bid/auction/"+auctionID+"/winning", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var winning struct {
		BidderID string `json:"bidder_id"`
		Amount   string `json:"amount"`
	}
	resp.Decode(t, &winning)
	require.Equal(t, bidder1ID, winning.BidderID)
	require.Equal(t, "150.00", winning.Amount)

	env.Clock.Advance(2 * time.Hour)
	report := env.Closer.Sweep(context.Background())
	require.Equal(t, 1, report.Settled)

	ended := env.Auction(t, auctionID)
	require.Equal(t, "Ended", ended.Status)
	require.Equal(t, bidder1ID, ended.WinnerID)

	winner := env.Me(t, bidder1Token)
	requireAmount(t, "150", winner.MoneySpent)
	require.Equal(t, 1, winner.AuctionsWon)
	requireAmount(t, "7.50", env.Me(t, sellerToken).UnpaidCommission)

	resp, w = env.JSON(t, http.MethodGet, "/api/v1/user/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var board []accountView
	resp.Decode(t, &board)
	require.Len(t, board, 1)
	require.Equal(t, bidder1ID, board[0].ID)

	// a second sweep must not settle again
	report = env.Closer.Sweep(context.Background())
	require.Equal(t, closer.SweepReport{}, report)
	requireAmount(t, "150", env.Me(t, bidder1Token).MoneySpent)

	resp, code = env.Bid(t, bidder2Token, auctionID, 500)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, "auction is not active", resp.Message)
}

func TestAuctionWithoutBidsEndsWithoutWinner(t *testing.T) {
	env := SetupTestEnv(t)

	_, sellerToken := env.Register(t, "seller", "Auctioneer")
	auctionID := env.CreateAuction(t, sellerToken, "Old lamp", "20", baseTime, baseTime.Add(time.Hour))

	env.Clock.Advance(time.Hour)
	report := env.Closer.Sweep(context.Background())
	require.Equal(t, 1, report.NoWinner)

	ended := env.Auction(t, auctionID)
	require.Equal(t, "Ended", ended.Status)
	require.Empty(t, ended.WinnerID)
	requireAmount(t, "0", env.Me(t, sellerToken).UnpaidCommission)
}

func TestPendingAuctionOpensOnSweep(t *testing.T) {
	env := SetupTestEnv(t)

	_, sellerToken := env.Register(t, "seller", "Auctioneer")
	_, bidderToken := env.Register(t, "bidder", "Bidder")

	start := baseTime.Add(30 * time.Minute)
	auctionID := env.CreateAuction(t, sellerToken, "Guitar", "100", start, start.Add(time.Hour))
	require.Equal(t, "Pending", env.Auction(t, auctionID).Status)

	resp, code := env.Bid(t, bidderToken, auctionID, 110)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, "auction is not active", resp.Message)

	env.Clock.Advance(31 * time.Minute)
	report := env.Closer.Sweep(context.Background())
	require.Equal(t, 1, report.Activated)
	require.Equal(t, "Active", env.Auction(t, auctionID).Status)

	resp, code = env.Bid(t, bidderToken, auctionID, 110)
	require.Equal(t, http.StatusCreated, code, resp.Error)
}

func TestBidAfterEndTimeBeforeSweep(t *testing.T) {
	env := SetupTestEnv(t)

	_, sellerToken := env.Register(t, "seller", "Auctioneer")
	_, bidderToken := env.Register(t, "bidder", "Bidder")
	auctionID := env.CreateAuction(t, sellerToken, "Watch", "100", baseTime, baseTime.Add(time.Hour))

	env.Clock.Advance(time.Hour)

	resp, code := env.Bid(t, bidderToken, auctionID, 200)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, "auction has ended", resp.Message)
	require.Equal(t, "Active", env.Auction(t, auctionID).Status)
}

func TestGetBidsByAuction(t *testing.T) {
	env := SetupTestEnv(t)

	_, sellerToken := env.Register(t, "seller", "Auctioneer")
	_, aliceToken := env.Register(t, "alice", "Bidder")
	_, bobToken := env.Register(t, "bob", "Bidder")
	auctionID := env.CreateAuction(t, sellerToken, "Bike", "50", baseTime, baseTime.Add(time.Hour))

	tests := []struct {
		name      string
		auctionID string
		wantCount int
	}{
		{name: "No_Bids", auctionID: auctionID, wantCount: 0},
		{name: "Unknown_Auction", auctionID: "does-not-exist", wantCount: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, w := env.JSON(t, http.MethodGet, "/api/v1/bid/auction/"+tt.auctionID+"/bids", "", nil)
			if tt.wantCount < 0 {
				require.Equal(t, http.StatusNotFound, w.Code)
				return
			}
			require.Equal(t, http.StatusOK, w.Code)
			var bids []map[string]any
			resp.Decode(t, &bids)
			require.Len(t, bids, tt.wantCount)
		})
	}

	for i, bid := range []struct {
		token  string
		amount float64
	}{{aliceToken, 60}, {bobToken, 70}, {aliceToken, 85.5}} {
		resp, code := env.Bid(t, bid.token, auctionID, bid.amount)
		require.Equal(t, http.StatusCreated, code, "bid %d: %s", i, resp.Error)
	}

	resp, w := env.JSON(t, http.MethodGet, "/api/v1/bid/auction/"+auctionID+"/bids", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bids []struct {
		Amount string `json:"amount"`
	}
	resp.Decode(t, &bids)
	require.Len(t, bids, 3)
	require.Equal(t, "85.50", bids[0].Amount)
	require.Equal(t, "60.00", bids[2].Amount)

	resp, w = env.JSON(t, http.MethodGet, "/api/v1/bid/mybids", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []auctionView
	resp.Decode(t, &mine)
	require.Len(t, mine, 1)
	require.Equal(t, auctionID, mine[0].ID)
}

func TestDeleteAuction(t *testing.T) {
	env := SetupTestEnv(t)

	_, sellerToken := env.Register(t, "seller", "Auctioneer")
	_, otherToken := env.Register(t, "other", "Auctioneer")
	_, bidderToken := env.Register(t, "bidder", "Bidder")
	adminToken := env.Login(t, adminEmail, adminPassword)

	quiet := env.CreateAuction(t, sellerToken, "Quiet item", "10", baseTime, baseTime.Add(time.Hour))
	busy := env.CreateAuction(t, sellerToken, "Busy item", "10", baseTime, baseTime.Add(time.Hour))
	resp, code := env.Bid(t, bidderToken, busy, 15)
	require.Equal(t, http.StatusCreated, code, resp.Error)

	_, w := env.JSON(t, http.MethodDelete, "/api/v1/auctionitem/delete/"+quiet, otherToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	_, w = env.JSON(t, http.MethodDelete, "/api/v1/auctionitem/delete/"+busy, sellerToken, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	_, w = env.JSON(t, http.MethodDelete, "/api/v1/auctionitem/delete/"+quiet, sellerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, w = env.JSON(t, http.MethodDelete, "/api/v1/superadmin/auctionitem/delete/"+busy, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, w = env.JSON(t, http.MethodGet, "/api/v1/auctionitem/auction/"+busy, "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
