package handler

//go:generate mockgen -source=account_handler.go -destination=mock_account_service.go -package=handler

import (
	"context"
	"net/http"
	"time"

	account "auction-marketplace/internal/accountService"
	model "auction-marketplace/internal/models"
	"auction-marketplace/services/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

type AccountServiceInterface interface {
	Register(ctx context.Context, r account.Registration) (model.Account, string, error)
	Login(ctx context.Context, email, password string) (model.Account, string, error)
	Profile(ctx context.Context, id string) (model.Account, error)
	Leaderboard(ctx context.Context) ([]model.Account, error)
}

type AccountHandler struct {
	service   AccountServiceInterface
	cookieTTL time.Duration
}

// NewAccountHandler creates a handler whose session cookies live for cookieTTL
func NewAccountHandler(service AccountServiceInterface, cookieTTL time.Duration) *AccountHandler {
	return &AccountHandler{service: service, cookieTTL: cookieTTL}
}

// RegisterHandler handles POST /user/register
func (h *AccountHandler) RegisterHandler(c *gin.Context) {
	var form helpers.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		helpers.HandleBindError(c, "RegisterHandler", err)
		return
	}

	file, err := helpers.OpenImage(c, "profileImage")
	if err != nil {
		helpers.HandleServiceError(c, "RegisterHandler", err, map[string]any{"email": form.Email})
		return
	}
	defer file.Close()

	acct, token, err := h.service.Register(c.Request.Context(), account.Registration{
		UserName:       form.UserName,
		Email:          form.Email,
		Password:       form.Password,
		Phone:          form.Phone,
		Address:        form.Address,
		Role:           model.Role(form.Role),
		PaymentMethods: form.PaymentMethods(),
		ProfileImage:   file,
	})
	if err != nil {
		helpers.HandleServiceError(c, "RegisterHandler", err, map[string]any{
			"email": form.Email,
			"role":  form.Role,
		})
		return
	}

	utils.SetTokenCookie(c, token, h.cookieTTL)
	utils.JSONResponse(c, http.StatusCreated, helpers.AuthResponse{User: acct, Token: token}, "user registered")
	helpers.LogSuccess("RegisterHandler", "user registered", map[string]any{
		"user_id": acct.ID,
		"role":    acct.Role,
	})
}

// LoginHandler handles POST /user/login
func (h *AccountHandler) LoginHandler(c *gin.Context) {
	var req helpers.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LoginHandler", err)
		return
	}

	acct, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		helpers.HandleServiceError(c, "LoginHandler", err, map[string]any{"email": req.Email})
		return
	}

	utils.SetTokenCookie(c, token, h.cookieTTL)
	utils.JSONResponse(c, http.StatusOK, helpers.AuthResponse{User: acct, Token: token}, "login successful")
	helpers.LogSuccess("LoginHandler", "login successful", map[string]any{"user_id": acct.ID})
}

// LogoutHandler handles GET /user/logout
func (h *AccountHandler) LogoutHandler(c *gin.Context) {
	utils.SetTokenCookie(c, "", 0)
	utils.JSONResponse(c, http.StatusOK, nil, "logged out successfully")
}

// ProfileHandler handles GET /user/me
func (h *AccountHandler) ProfileHandler(c *gin.Context) {
	current, ok := helpers.RequireAccount(c, "ProfileHandler")
	if !ok {
		return
	}

	acct, err := h.service.Profile(c.Request.Context(), current.ID)
	if err != nil {
		helpers.HandleServiceError(c, "ProfileHandler", err, map[string]any{"user_id": current.ID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, acct, "profile retrieved successfully")
}

// LeaderboardHandler handles GET /user/leaderboard
func (h *AccountHandler) LeaderboardHandler(c *gin.Context) {
	board, err := h.service.Leaderboard(c.Request.Context())
	if err != nil {
		helpers.HandleServiceError(c, "LeaderboardHandler", err, nil)
		return
	}
	if board == nil {
		board = []model.Account{}
	}

	utils.JSONResponse(c, http.StatusOK, board, "leaderboard retrieved successfully")
	helpers.LogSuccess("LeaderboardHandler", "leaderboard retrieved successfully", map[string]any{"count": len(board)})
}
