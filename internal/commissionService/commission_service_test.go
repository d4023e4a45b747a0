package commission

import (
	"context"
	"errors"
	"testing"
	"time"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/clock"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	baseTime   = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	seller     = model.Account{ID: "seller", Email: "seller@example.com", Role: model.RoleAuctioneer}
	otherSeller = model.Account{ID: "other", Email: "other@example.com", Role: model.RoleAuctioneer}
	admin      = model.Account{ID: "admin", Email: "admin@example.com", Role: model.RoleSuperAdmin}
	bidder     = model.Account{ID: "bidder", Email: "bidder@example.com", Role: model.RoleBidder}
	proof      = model.Image{PublicID: "proofs/p1", URL: "https://img.example.com/p1.png"}
)

func newLedger(t *testing.T, unpaid string) *repository.MemoryRepo {
	t.Helper()
	repo := repository.NewMemoryRepo()
	ctx := context.Background()

	acct := seller
	acct.UnpaidCommission = decimal.RequireFromString(unpaid)
	require.NoError(t, repo.CreateAccount(ctx, acct))
	require.NoError(t, repo.CreateAccount(ctx, otherSeller))

	repo.AddObligation(model.CommissionObligation{
		ID:           "ob1",
		AuctionID:    "a1",
		AuctioneerID: "seller",
		AmountOwed:   decimal.RequireFromString("7.50"),
		Status:       model.ObligationUnpaid,
		CreatedAt:    baseTime,
		UpdatedAt:    baseTime,
	})
	return repo
}

func TestCommissionService_VerifyFlow(t *testing.T) {
	ctx := context.Background()
	repo := newLedger(t, "7.50")
	clk := clock.NewManual(baseTime)
	service := NewCommissionService(repo, clk)

	clk.Advance(time.Hour)
	submitted, err := service.SubmitProof(ctx, seller, "ob1", proof, "paid via bank")
	require.NoError(t, err)
	require.Equal(t, model.ObligationProofSubmitted, submitted.Status)
	require.Equal(t, &proof, submitted.Proof)
	require.Equal(t, "paid via bank", submitted.Comment)
	require.Equal(t, clk.Now(), submitted.UpdatedAt)

	// a second submission is a state error
	_, err = service.SubmitProof(ctx, seller, "ob1", proof, "again")
	require.True(t, errors.Is(err, auctionerrors.ErrInvalidStateTransition))

	clk.Advance(time.Hour)
	verified, err := service.Review(ctx, admin, "ob1", model.ObligationVerified, decimal.RequireFromString("5"))
	require.NoError(t, err)
	require.Equal(t, model.ObligationVerified, verified.Status)
	require.True(t, decimal.NewFromInt(5).Equal(verified.VerifiedAmount))
	require.NotNil(t, verified.ReviewedAt)
	require.Equal(t, clk.Now(), *verified.ReviewedAt)

	acct, err := repo.GetAccount(ctx, "seller")
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("2.50").Equal(acct.UnpaidCommission))

	// Verified is terminal
	_, err = service.Review(ctx, admin, "ob1", model.ObligationRejected, decimal.Zero)
	require.True(t, errors.Is(err, auctionerrors.ErrInvalidStateTransition))
	_, err = service.Resubmit(ctx, seller, "ob1")
	require.True(t, errors.Is(err, auctionerrors.ErrInvalidStateTransition))
}

func TestCommissionService_VerifyFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	repo := newLedger(t, "7.50")
	service := NewCommissionService(repo, clock.NewManual(baseTime))

	_, err := service.SubmitProof(ctx, seller, "ob1", proof, "")
	require.NoError(t, err)
	_, err = service.Review(ctx, admin, "ob1", model.ObligationVerified, decimal.NewFromInt(100))
	require.NoError(t, err)

	acct, err := repo.GetAccount(ctx, "seller")
	require.NoError(t, err)
	require.True(t, acct.UnpaidCommission.IsZero())
}

func TestCommissionService_RejectAndResubmit(t *testing.T) {
	ctx := context.Background()
	repo := newLedger(t, "7.50")
	service := NewCommissionService(repo, clock.NewManual(baseTime))

	_, err := service.SubmitProof(ctx, seller, "ob1", proof, "")
	require.NoError(t, err)

	rejected, err := service.Review(ctx, admin, "ob1", model.ObligationRejected, decimal.NewFromInt(3))
	require.NoError(t, err)
	require.Equal(t, model.ObligationRejected, rejected.Status)
	require.True(t, rejected.VerifiedAmount.IsZero())

	acct, err := repo.GetAccount(ctx, "seller")
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("7.50").Equal(acct.UnpaidCommission))

	// Rejected cannot jump straight to Verified
	_, err = service.Review(ctx, admin, "ob1", model.ObligationVerified, decimal.NewFromInt(3))
	require.True(t, errors.Is(err, auctionerrors.ErrInvalidStateTransition))

	reopened, err := service.Resubmit(ctx, seller, "ob1")
	require.NoError(t, err)
	require.Equal(t, model.ObligationUnpaid, reopened.Status)
	require.Nil(t, reopened.Proof)

	resubmitted, err := service.SubmitProof(ctx, seller, "ob1", proof, "second try")
	require.NoError(t, err)
	require.Equal(t, model.ObligationProofSubmitted, resubmitted.Status)
}

func TestCommissionService_Validation(t *testing.T) {
	ctx := context.Background()
	repo := newLedger(t, "7.50")
	service := NewCommissionService(repo, clock.NewManual(baseTime))

	tests := []struct {
		name          string
		call          func() error
		expectedError error
	}{
		{
			name: "submit_by_other_auctioneer",
			call: func() error {
				_, err := service.SubmitProof(ctx, otherSeller, "ob1", proof, "")
				return err
			},
			expectedError: auctionerrors.ErrForbidden,
		},
		{
			name: "submit_by_bidder",
			call: func() error {
				_, err := service.SubmitProof(ctx, bidder, "ob1", proof, "")
				return err
			},
			expectedError: auctionerrors.ErrForbidden,
		},
		{
			name: "submit_without_proof",
			call: func() error {
				_, err := service.SubmitProof(ctx, seller, "ob1", model.Image{}, "")
				return err
			},
			expectedError: auctionerrors.ErrInvalidInput,
		},
		{
			name: "submit_unknown_obligation",
			call: func() error {
				_, err := service.SubmitProof(ctx, seller, "missing", proof, "")
				return err
			},
			expectedError: auctionerrors.ErrNotFound,
		},
		{
			name: "review_by_auctioneer",
			call: func() error {
				_, err := service.Review(ctx, seller, "ob1", model.ObligationVerified, decimal.NewFromInt(1))
				return err
			},
			expectedError: auctionerrors.ErrForbidden,
		},
		{
			name: "review_to_unpaid",
			call: func() error {
				_, err := service.Review(ctx, admin, "ob1", model.ObligationUnpaid, decimal.NewFromInt(1))
				return err
			},
			expectedError: auctionerrors.ErrInvalidInput,
		},
		{
			name: "verify_without_amount",
			call: func() error {
				_, err := service.Review(ctx, admin, "ob1", model.ObligationVerified, decimal.Zero)
				return err
			},
			expectedError: auctionerrors.ErrInvalidInput,
		},
		{
			name: "review_unpaid_obligation",
			call: func() error {
				_, err := service.Review(ctx, admin, "ob1", model.ObligationVerified, decimal.NewFromInt(1))
				return err
			},
			expectedError: auctionerrors.ErrInvalidStateTransition,
		},
		{
			name: "resubmit_unpaid_obligation",
			call: func() error {
				_, err := service.Resubmit(ctx, seller, "ob1")
				return err
			},
			expectedError: auctionerrors.ErrInvalidStateTransition,
		},
		{
			name: "list_as_bidder",
			call: func() error {
				_, err := service.ListObligations(ctx, bidder, "")
				return err
			},
			expectedError: auctionerrors.ErrForbidden,
		},
		{
			name: "list_unknown_status",
			call: func() error {
				_, err := service.ListObligations(ctx, admin, "Lost")
				return err
			},
			expectedError: auctionerrors.ErrInvalidInput,
		},
		{
			name: "get_other_auctioneers_obligation",
			call: func() error {
				_, err := service.GetObligation(ctx, otherSeller, "ob1")
				return err
			},
			expectedError: auctionerrors.ErrForbidden,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
		})
	}

	// nothing above changed the obligation
	o, err := repo.GetObligation(ctx, "ob1")
	require.NoError(t, err)
	require.Equal(t, model.ObligationUnpaid, o.Status)
}

func TestCommissionService_ListObligations(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := repository.NewMockCommissionLedger(ctrl)
	service := NewCommissionService(mockLedger, clock.NewManual(baseTime))

	own := []model.CommissionObligation{{ID: "ob1", AuctioneerID: "seller", Status: model.ObligationUnpaid}}

	tests := []struct {
		name        string
		viewer      model.Account
		status      model.ObligationStatus
		mockSetup   func()
		expectError bool
		expected    []model.CommissionObligation
	}{
		{
			name:   "auctioneer_sees_own",
			viewer: seller,
			mockSetup: func() {
				mockLedger.EXPECT().ListObligations(gomock.Any(), model.ObligationFilter{AuctioneerID: "seller"}).Return(own, nil)
			},
			expected: own,
		},
		{
			name:   "admin_filters_by_status",
			viewer: admin,
			status: model.ObligationProofSubmitted,
			mockSetup: func() {
				mockLedger.EXPECT().ListObligations(gomock.Any(), model.ObligationFilter{Status: model.ObligationProofSubmitted}).Return([]model.CommissionObligation{}, nil)
			},
			expected: []model.CommissionObligation{},
		},
		{
			name:   "ledger_error",
			viewer: admin,
			mockSetup: func() {
				mockLedger.EXPECT().ListObligations(gomock.Any(), model.ObligationFilter{}).Return(nil, auctionerrors.ErrTransientStore)
			},
			expectError: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel() // Run tests concurrently

			tc.mockSetup()

			got, err := service.ListObligations(context.Background(), tc.viewer, tc.status)
			if tc.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, got)
		})
	}
}
