package admin

import (
	"context"
	"fmt"

	"auction-marketplace/internal/auctionerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"

	"github.com/shopspring/decimal"
)

// UserStats holds monthly registration counts, January first
type UserStats struct {
	Bidders     [12]int `json:"bidders"`
	Auctioneers [12]int `json:"auctioneers"`
}

// AdminService builds the super admin dashboard figures
type AdminService struct {
	accounts repository.AccountStore
	ledger   repository.CommissionLedger
}

// NewAdminService creates a new AdminService instance
func NewAdminService(accounts repository.AccountStore, ledger repository.CommissionLedger) *AdminService {
	return &AdminService{accounts: accounts, ledger: ledger}
}

// MonthlyRevenue sums verified commission per month of year, by review date
func (s *AdminService) MonthlyRevenue(ctx context.Context, year int) ([12]decimal.Decimal, error) {
	var revenue [12]decimal.Decimal
	if err := checkYear(year); err != nil {
		return revenue, err
	}

	verified, err := s.ledger.ListObligations(ctx, model.ObligationFilter{Status: model.ObligationVerified})
	if err != nil {
		return revenue, fmt.Errorf("service: failed to list verified obligations: %w", err)
	}

	for i := range revenue {
		revenue[i] = decimal.Zero
	}
	for _, o := range verified {
		if o.ReviewedAt == nil || o.ReviewedAt.Year() != year {
			continue
		}
		m := o.ReviewedAt.Month() - 1
		revenue[m] = revenue[m].Add(o.VerifiedAmount)
	}
	return revenue, nil
}

// UserStats counts bidder and auctioneer registrations per month of year
func (s *AdminService) UserStats(ctx context.Context, year int) (UserStats, error) {
	var stats UserStats
	if err := checkYear(year); err != nil {
		return stats, err
	}

	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return stats, fmt.Errorf("service: failed to list accounts: %w", err)
	}

	for _, a := range accounts {
		if a.CreatedAt.Year() != year {
			continue
		}
		m := a.CreatedAt.Month() - 1
		switch a.Role {
		case model.RoleBidder:
			stats.Bidders[m]++
		case model.RoleAuctioneer:
			stats.Auctioneers[m]++
		}
	}
	return stats, nil
}

func checkYear(year int) error {
	if year < 2000 || year > 9999 {
		return fmt.Errorf("service: %w - year %d out of range", auctionerrors.ErrInvalidInput, year)
	}
	return nil
}
