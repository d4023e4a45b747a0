package account

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/auth"
	"auction-marketplace/internal/clock"
	"auction-marketplace/internal/media"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func newService(repo repository.AccountStore, images media.Uploader) (*AccountService, *auth.TokenManager) {
	clk := clock.NewManual(baseTime)
	tokens := auth.NewTokenManager("secret", time.Hour, clk)
	return NewAccountService(repo, images, tokens, clk), tokens
}

func bidderForm() Registration {
	return Registration{
		UserName:     "alice",
		Email:        "alice@example.com",
		Password:     "password1",
		Phone:        "03001234567",
		Address:      "Lahore",
		Role:         model.RoleBidder,
		ProfileImage: strings.NewReader("png bytes"),
	}
}

func auctioneerForm() Registration {
	r := bidderForm()
	r.UserName = "bob"
	r.Email = "bob@example.com"
	r.Role = model.RoleAuctioneer
	r.PaymentMethods = &model.PaymentMethods{
		BankTransfer: model.BankTransfer{AccountNumber: "123", AccountName: "Bob", BankName: "HBL"},
		Easypaisa:    model.Easypaisa{AccountNumber: "03001234567"},
		Paypal:       model.Paypal{Email: "bob@paypal.example.com"},
	}
	return r
}

func TestAccountService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	service, tokens := newService(repo, media.Placeholder{})

	acct, token, err := service.Register(ctx, auctioneerForm())
	require.NoError(t, err)
	require.Equal(t, model.RoleAuctioneer, acct.Role)
	require.NotEqual(t, "password1", acct.PasswordHash)
	require.NotEmpty(t, acct.ProfileImage.PublicID)
	require.NotNil(t, acct.PaymentMethods)
	require.Equal(t, baseTime, acct.CreatedAt)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, acct.ID, claims.Subject)

	// same email, different case
	dup := bidderForm()
	dup.Email = "BOB@example.com"
	_, _, err = service.Register(ctx, dup)
	require.True(t, errors.Is(err, auctionerrors.ErrAlreadyRegistered))

	logged, token, err := service.Login(ctx, "bob@example.com", "password1")
	require.NoError(t, err)
	require.Equal(t, acct.ID, logged.ID)
	require.NotEmpty(t, token)

	_, _, err = service.Login(ctx, "bob@example.com", "wrong-password")
	require.True(t, errors.Is(err, auctionerrors.ErrInvalidCredentials))

	_, _, err = service.Login(ctx, "nobody@example.com", "password1")
	require.True(t, errors.Is(err, auctionerrors.ErrInvalidCredentials))

	_, _, err = service.Login(ctx, "", "password1")
	require.True(t, errors.Is(err, auctionerrors.ErrInvalidInput))

	profile, err := service.Profile(ctx, acct.ID)
	require.NoError(t, err)
	require.Equal(t, acct, profile)
}

func TestAccountService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(repository.NewMemoryRepo(), media.Placeholder{})

	tests := []struct {
		name          string
		form          func() Registration
		expectedError error
	}{
		{name: "missing_address", form: func() Registration { r := bidderForm(); r.Address = ""; return r }, expectedError: auctionerrors.ErrInvalidInput},
		{name: "missing_image", form: func() Registration { r := bidderForm(); r.ProfileImage = nil; return r }, expectedError: auctionerrors.ErrInvalidInput},
		{name: "unknown_role", form: func() Registration { r := bidderForm(); r.Role = "Viewer"; return r }, expectedError: auctionerrors.ErrInvalidInput},
		{name: "short_username", form: func() Registration { r := bidderForm(); r.UserName = "al"; return r }, expectedError: auctionerrors.ErrInvalidInput},
		{name: "long_username", form: func() Registration { r := bidderForm(); r.UserName = strings.Repeat("a", 41); return r }, expectedError: auctionerrors.ErrInvalidInput},
		{name: "short_password", form: func() Registration { r := bidderForm(); r.Password = "1234567"; return r }, expectedError: auctionerrors.ErrInvalidInput},
		{name: "password_over_bcrypt_limit", form: func() Registration { r := bidderForm(); r.Password = strings.Repeat("a", 80); return r }, expectedError: auctionerrors.ErrInvalidInput},
		{name: "multibyte_password_over_bcrypt_limit", form: func() Registration { r := bidderForm(); r.Password = strings.Repeat("é", 40); return r }, expectedError: auctionerrors.ErrInvalidInput},
		{name: "phone_too_short", form: func() Registration { r := bidderForm(); r.Phone = "0300123456"; return r }, expectedError: auctionerrors.ErrInvalidInput},
		{name: "phone_not_digits", form: func() Registration { r := bidderForm(); r.Phone = "0300-123456"; return r }, expectedError: auctionerrors.ErrInvalidInput},
		{name: "bad_email", form: func() Registration { r := bidderForm(); r.Email = "alice"; return r }, expectedError: auctionerrors.ErrInvalidInput},
		{name: "auctioneer_without_payment", form: func() Registration { r := auctioneerForm(); r.PaymentMethods = nil; return r }, expectedError: auctionerrors.ErrInvalidInput},
		{name: "auctioneer_partial_payment", form: func() Registration { r := auctioneerForm(); r.PaymentMethods.Paypal.Email = ""; return r }, expectedError: auctionerrors.ErrInvalidInput},
		{name: "bidder_with_payment", form: func() Registration {
			r := bidderForm()
			r.PaymentMethods = auctioneerForm().PaymentMethods
			return r
		}, expectedError: auctionerrors.ErrInvalidInput},
		{name: "super_admin_self_signup", form: func() Registration { r := bidderForm(); r.Role = model.RoleSuperAdmin; return r }, expectedError: auctionerrors.ErrForbidden},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := service.Register(ctx, tc.form())
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
		})
	}
}

func TestAccountService_RegisterCleansUpImage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAccounts := repository.NewMockAccountStore(ctrl)
	mockImages := media.NewMockUploader(ctrl)
	service, _ := newService(mockAccounts, mockImages)

	image := model.Image{PublicID: "users/alice", URL: "https://img.example.com/alice.png"}

	gomock.InOrder(
		mockAccounts.EXPECT().GetAccountByEmail(gomock.Any(), "alice@example.com").Return(model.Account{}, auctionerrors.ErrAccountNotFound),
		mockImages.EXPECT().Upload(gomock.Any(), gomock.Any(), media.FolderProfiles).Return(image, nil),
		mockAccounts.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Return(auctionerrors.ErrAlreadyRegistered),
		mockImages.EXPECT().Delete(gomock.Any(), "users/alice").Return(nil),
	)

	_, _, err := service.Register(context.Background(), bidderForm())
	require.True(t, errors.Is(err, auctionerrors.ErrAlreadyRegistered))
}

func TestAccountService_RegisterUploadFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAccounts := repository.NewMockAccountStore(ctrl)
	mockImages := media.NewMockUploader(ctrl)
	service, _ := newService(mockAccounts, mockImages)

	mockAccounts.EXPECT().GetAccountByEmail(gomock.Any(), "alice@example.com").Return(model.Account{}, auctionerrors.ErrAccountNotFound)
	mockImages.EXPECT().Upload(gomock.Any(), gomock.Any(), media.FolderProfiles).Return(model.Image{}, errors.New("image host down"))

	_, _, err := service.Register(context.Background(), bidderForm())
	require.Error(t, err)
}

func TestAccountService_Leaderboard(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAccounts := repository.NewMockAccountStore(ctrl)
	service, _ := newService(mockAccounts, media.Placeholder{})

	mockAccounts.EXPECT().ListAccounts(gomock.Any()).Return([]model.Account{
		{ID: "a", MoneySpent: decimal.NewFromInt(150)},
		{ID: "b"},
		{ID: "c", MoneySpent: decimal.NewFromInt(900)},
		{ID: "d", MoneySpent: decimal.RequireFromString("150.01")},
	}, nil)

	board, err := service.Leaderboard(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(board))
	for _, a := range board {
		ids = append(ids, a.ID)
	}
	require.Equal(t, []string{"c", "d", "a"}, ids)
}

func TestAccountService_EnsureSuperAdmin(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	service, _ := newService(repo, media.Placeholder{})

	first, err := service.EnsureSuperAdmin(ctx, "root", "admin@example.com", "admin-password")
	require.NoError(t, err)
	require.Equal(t, model.RoleSuperAdmin, first.Role)

	again, err := service.EnsureSuperAdmin(ctx, "root", "admin@example.com", "admin-password")
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)

	_, token, err := service.Login(ctx, "admin@example.com", "admin-password")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, err = service.EnsureSuperAdmin(ctx, "root", "other-admin@example.com", strings.Repeat("x", 73))
	require.True(t, errors.Is(err, auctionerrors.ErrInvalidInput), "got: %v", err)

	_, _, err = service.Register(ctx, bidderForm())
	require.NoError(t, err)
	_, err = service.EnsureSuperAdmin(ctx, "root", "alice@example.com", "admin-password")
	require.True(t, errors.Is(err, auctionerrors.ErrAlreadyRegistered))
}
