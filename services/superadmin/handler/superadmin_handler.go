package handler

//go:generate mockgen -source=superadmin_handler.go -destination=mock_admin_service.go -package=handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	admin "auction-marketplace/internal/adminService"
	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/clock"
	"auction-marketplace/services/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AdminServiceInterface interface {
	MonthlyRevenue(ctx context.Context, year int) ([12]decimal.Decimal, error)
	UserStats(ctx context.Context, year int) (admin.UserStats, error)
}

type SuperAdminHandler struct {
	service AdminServiceInterface
	clock   clock.Clock
}

func NewSuperAdminHandler(service AdminServiceInterface, clk clock.Clock) *SuperAdminHandler {
	return &SuperAdminHandler{service: service, clock: clk}
}

// yearParam reads ?year, defaulting to the current year
func (h *SuperAdminHandler) yearParam(c *gin.Context) (int, error) {
	raw := c.Query("year")
	if raw == "" {
		return h.clock.Now().Year(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w - year %q is not a number", auctionerrors.ErrInvalidInput, raw)
	}
	return year, nil
}

// MonthlyIncomeHandler handles GET /superadmin/monthlyincome
func (h *SuperAdminHandler) MonthlyIncomeHandler(c *gin.Context) {
	year, err := h.yearParam(c)
	if err != nil {
		helpers.HandleServiceError(c, "MonthlyIncomeHandler", err, nil)
		return
	}

	revenue, err := h.service.MonthlyRevenue(c.Request.Context(), year)
	if err != nil {
		helpers.HandleServiceError(c, "MonthlyIncomeHandler", err, map[string]any{"year": year})
		return
	}

	resp := helpers.MonthlyIncomeResponse{Year: year, Revenue: make([]string, 0, len(revenue))}
	for _, r := range revenue {
		resp.Revenue = append(resp.Revenue, r.StringFixed(2))
	}
	utils.JSONResponse(c, http.StatusOK, resp, "monthly income retrieved successfully")
}

// UserStatsHandler handles GET /superadmin/users/getall
func (h *SuperAdminHandler) UserStatsHandler(c *gin.Context) {
	year, err := h.yearParam(c)
	if err != nil {
		helpers.HandleServiceError(c, "UserStatsHandler", err, nil)
		return
	}

	stats, err := h.service.UserStats(c.Request.Context(), year)
	if err != nil {
		helpers.HandleServiceError(c, "UserStatsHandler", err, map[string]any{"year": year})
		return
	}

	utils.JSONResponse(c, http.StatusOK, stats, "user stats retrieved successfully")
}
