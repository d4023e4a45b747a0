package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"auction-marketplace/internal/auctionerrors"
	model "auction-marketplace/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDecimalRoundTrip(t *testing.T) {
	for _, v := range []string{"0", "100", "7.5", "1234567.89", "0.05"} {
		d := decimal.RequireFromString(v)
		require.True(t, fromDecimal128(toDecimal128(d)).Equal(d), v)
	}
	require.True(t, fromDecimal128(primitive.Decimal128{}).IsZero())
}

func TestAuctionDocRoundTrip(t *testing.T) {
	ended := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	a := model.Auction{
		ID:          "a1",
		Title:       "Lamp",
		StartingBid: decimal.NewFromInt(100),
		CurrentBid:  decimal.NewFromInt(150),
		WinnerID:    "b1",
		StartTime:   ended.Add(-2 * time.Hour),
		EndTime:     ended,
		Status:      model.AuctionEnded,
		CreatedBy:   "s1",
		CreatedAt:   ended.Add(-3 * time.Hour),
		EndedAt:     &ended,
	}
	got := newAuctionDoc(a).model()
	require.True(t, got.CurrentBid.Equal(a.CurrentBid))
	require.Equal(t, a.EndedAt, got.EndedAt)
	require.Equal(t, a.Status, got.Status)
}

// TestStoreIntegration needs a replica set because settlement runs in a transaction
func TestStoreIntegration(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set; skipping mongo integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := Connect(ctx, uri, "auction_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	defer func() {
		_ = store.accounts.Database().Drop(ctx)
		_ = store.Close(ctx)
	}()

	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, store.CreateAccount(ctx, model.Account{ID: "seller", Email: "seller@example.com", Role: model.RoleAuctioneer, CreatedAt: now}))
	require.NoError(t, store.CreateAccount(ctx, model.Account{ID: "bidder", Email: "bidder@example.com", Role: model.RoleBidder, CreatedAt: now}))
	require.ErrorIs(t, store.CreateAccount(ctx, model.Account{ID: "dup", Email: "SELLER@example.com"}), auctionerrors.ErrAlreadyRegistered)

	require.NoError(t, store.CreateAuction(ctx, model.Auction{
		ID: "a1", Title: "Lamp", StartingBid: decimal.NewFromInt(100), CurrentBid: decimal.NewFromInt(100),
		StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour), Status: model.AuctionActive,
		CreatedBy: "seller", CreatedAt: now,
	}))

	_, err = store.PlaceBid(ctx, model.Bid{BidID: "b1", AuctionID: "a1", BidderID: "bidder", Amount: decimal.NewFromInt(150), CreatedAt: now}, now)
	require.NoError(t, err)
	_, err = store.PlaceBid(ctx, model.Bid{BidID: "b2", AuctionID: "a1", BidderID: "bidder", Amount: decimal.NewFromInt(120), CreatedAt: now}, now)
	require.ErrorIs(t, err, auctionerrors.ErrInvalidBid)

	winning, err := store.GetWinningBid(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, "b1", winning.BidID)

	end := now.Add(time.Hour)
	_, err = store.SettleAuction(ctx, model.Settlement{
		AuctionID: "a1", ExpectedBid: decimal.NewFromInt(150), WinnerID: "bidder", FinalPrice: decimal.NewFromInt(150),
		Obligation: &model.CommissionObligation{
			ID: "o1", AuctionID: "a1", AuctioneerID: "seller", AmountOwed: decimal.RequireFromString("7.5"),
			Status: model.ObligationUnpaid, CreatedAt: end, UpdatedAt: end,
		},
		EndedAt: end,
	})
	require.NoError(t, err)

	seller, err := store.GetAccount(ctx, "seller")
	require.NoError(t, err)
	require.True(t, seller.UnpaidCommission.Equal(decimal.RequireFromString("7.5")))

	_, err = store.TransitionObligation(ctx, "o1", model.ObligationUnpaid, model.ObligationProofSubmitted, nil)
	require.NoError(t, err)
	_, err = store.ApplyReview(ctx, "o1", model.ObligationVerified, decimal.NewFromInt(10), end)
	require.NoError(t, err)

	seller, err = store.GetAccount(ctx, "seller")
	require.NoError(t, err)
	require.True(t, seller.UnpaidCommission.IsZero())
}
