package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/clock"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func TestTokenManager_IssueVerify(t *testing.T) {
	clk := clock.NewManual(baseTime)
	tm := NewTokenManager("secret", time.Hour, clk)

	token, err := tm.Issue(model.Account{ID: "u1", Role: model.RoleAuctioneer})
	require.NoError(t, err)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject)
	require.Equal(t, model.RoleAuctioneer, claims.Role)

	// wrong secret
	_, err = NewTokenManager("other", time.Hour, clk).Verify(token)
	require.True(t, errors.Is(err, auctionerrors.ErrUnauthorized))

	// expired
	clk.Advance(time.Hour + time.Second)
	_, err = tm.Verify(token)
	require.True(t, errors.Is(err, auctionerrors.ErrUnauthorized))

	_, err = tm.Verify("garbage")
	require.True(t, errors.Is(err, auctionerrors.ErrUnauthorized))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse", hash)

	require.NoError(t, CheckPassword(hash, "correct horse"))
	require.True(t, errors.Is(CheckPassword(hash, "wrong horse"), auctionerrors.ErrInvalidCredentials))
}

func TestAuthenticate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tm := NewTokenManager("secret", time.Hour, clock.NewManual(baseTime))
	accounts := repository.NewMockAccountStore(ctrl)

	bidder := model.Account{ID: "u1", UserName: "bidder", Role: model.RoleBidder}
	token, err := tm.Issue(bidder)
	require.NoError(t, err)
	ghostToken, err := tm.Issue(model.Account{ID: "ghost", Role: model.RoleBidder})
	require.NoError(t, err)

	r := gin.New()
	protected := r.Group("/", Authenticate(tm, accounts))
	protected.GET("/me", func(c *gin.Context) {
		acct, ok := CurrentAccount(c)
		require.True(t, ok)
		utils.JSONResponse(c, http.StatusOK, acct.UserName, "ok")
	})
	protected.GET("/admin", RequireRole(model.RoleSuperAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name       string
		path       string
		setup      func(req *http.Request)
		mockSetup  func()
		wantStatus int
	}{
		{
			name: "cookie_token",
			path: "/me",
			setup: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: utils.TokenCookie, Value: token})
			},
			mockSetup: func() {
				accounts.EXPECT().GetAccount(gomock.Any(), "u1").Return(bidder, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "bearer_token",
			path: "/me",
			setup: func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+token)
			},
			mockSetup: func() {
				accounts.EXPECT().GetAccount(gomock.Any(), "u1").Return(bidder, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing_token",
			path:       "/me",
			setup:      func(*http.Request) {},
			mockSetup:  func() {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "account_gone",
			path: "/me",
			setup: func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+ghostToken)
			},
			mockSetup: func() {
				accounts.EXPECT().GetAccount(gomock.Any(), "ghost").Return(model.Account{}, auctionerrors.ErrAccountNotFound)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "wrong_role",
			path: "/admin",
			setup: func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+token)
			},
			mockSetup: func() {
				accounts.EXPECT().GetAccount(gomock.Any(), "u1").Return(bidder, nil)
			},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			tc.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tc.wantStatus, w.Code, w.Body.String())
		})
	}
}
