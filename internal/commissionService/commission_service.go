package commission

import (
	"context"
	"fmt"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/clock"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"

	"github.com/shopspring/decimal"
)

// CommissionService runs the proof-of-payment workflow for commission obligations
type CommissionService struct {
	ledger repository.CommissionLedger
	clock  clock.Clock
}

// NewCommissionService creates a new CommissionService instance
func NewCommissionService(ledger repository.CommissionLedger, clk clock.Clock) *CommissionService {
	return &CommissionService{ledger: ledger, clock: clk}
}

// SubmitProof attaches a payment proof to an Unpaid obligation owned by auctioneer
func (s *CommissionService) SubmitProof(ctx context.Context, auctioneer model.Account, obligationID string, proof model.Image, comment string) (model.CommissionObligation, error) {
	if proof.PublicID == "" && proof.URL == "" {
		return model.CommissionObligation{}, fmt.Errorf("service: %w - payment proof is required", auctionerrors.ErrInvalidInput)
	}
	if _, err := s.ownedObligation(ctx, auctioneer, obligationID); err != nil {
		return model.CommissionObligation{}, err
	}

	now := s.clock.Now()
	updated, err := s.ledger.TransitionObligation(ctx, obligationID, model.ObligationUnpaid, model.ObligationProofSubmitted,
		func(o *model.CommissionObligation) {
			o.Proof = &proof
			o.Comment = comment
			o.UpdatedAt = now
		})
	if err != nil {
		return model.CommissionObligation{}, fmt.Errorf("service: failed to submit proof for obligation %s: %w", obligationID, err)
	}
	return updated, nil
}

// Resubmit reopens a Rejected obligation so a new proof can be submitted
func (s *CommissionService) Resubmit(ctx context.Context, auctioneer model.Account, obligationID string) (model.CommissionObligation, error) {
	if _, err := s.ownedObligation(ctx, auctioneer, obligationID); err != nil {
		return model.CommissionObligation{}, err
	}

	now := s.clock.Now()
	updated, err := s.ledger.TransitionObligation(ctx, obligationID, model.ObligationRejected, model.ObligationUnpaid,
		func(o *model.CommissionObligation) {
			o.Proof = nil
			o.UpdatedAt = now
		})
	if err != nil {
		return model.CommissionObligation{}, fmt.Errorf("service: failed to reopen obligation %s: %w", obligationID, err)
	}
	return updated, nil
}

// Review settles a submitted proof. Verifying reduces the auctioneer's unpaid
// commission by amount, never below zero.
func (s *CommissionService) Review(ctx context.Context, reviewer model.Account, obligationID string, status model.ObligationStatus, amount decimal.Decimal) (model.CommissionObligation, error) {
	if reviewer.Role != model.RoleSuperAdmin {
		return model.CommissionObligation{}, fmt.Errorf("service: %w - only a super admin can review payment proofs", auctionerrors.ErrForbidden)
	}
	if obligationID == "" {
		return model.CommissionObligation{}, fmt.Errorf("service: %w - empty obligation ID", auctionerrors.ErrInvalidInput)
	}
	switch status {
	case model.ObligationVerified:
		if !amount.IsPositive() {
			return model.CommissionObligation{}, fmt.Errorf("service: %w - verified amount must be positive", auctionerrors.ErrInvalidInput)
		}
	case model.ObligationRejected:
		amount = decimal.Zero
	default:
		return model.CommissionObligation{}, fmt.Errorf("service: %w - review status must be %s or %s", auctionerrors.ErrInvalidInput, model.ObligationVerified, model.ObligationRejected)
	}

	updated, err := s.ledger.ApplyReview(ctx, obligationID, status, amount, s.clock.Now())
	if err != nil {
		return model.CommissionObligation{}, fmt.Errorf("service: failed to review obligation %s: %w", obligationID, err)
	}
	return updated, nil
}

// ListObligations returns the obligations viewer may see. A super admin sees
// all of them, optionally narrowed by status; an auctioneer sees their own.
func (s *CommissionService) ListObligations(ctx context.Context, viewer model.Account, status model.ObligationStatus) ([]model.CommissionObligation, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("service: %w - unknown obligation status %q", auctionerrors.ErrInvalidInput, status)
	}

	filter := model.ObligationFilter{Status: status}
	switch viewer.Role {
	case model.RoleSuperAdmin:
	case model.RoleAuctioneer:
		filter.AuctioneerID = viewer.ID
	default:
		return nil, fmt.Errorf("service: %w - %s has no commission obligations", auctionerrors.ErrForbidden, viewer.Role)
	}

	obligations, err := s.ledger.ListObligations(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list obligations: %w", err)
	}
	return obligations, nil
}

// GetObligation returns one obligation if viewer may see it
func (s *CommissionService) GetObligation(ctx context.Context, viewer model.Account, obligationID string) (model.CommissionObligation, error) {
	if viewer.Role == model.RoleSuperAdmin {
		if obligationID == "" {
			return model.CommissionObligation{}, fmt.Errorf("service: %w - empty obligation ID", auctionerrors.ErrInvalidInput)
		}
		o, err := s.ledger.GetObligation(ctx, obligationID)
		if err != nil {
			return model.CommissionObligation{}, fmt.Errorf("service: failed to get obligation %s: %w", obligationID, err)
		}
		return o, nil
	}
	return s.ownedObligation(ctx, viewer, obligationID)
}

func (s *CommissionService) ownedObligation(ctx context.Context, auctioneer model.Account, obligationID string) (model.CommissionObligation, error) {
	if auctioneer.Role != model.RoleAuctioneer {
		return model.CommissionObligation{}, fmt.Errorf("service: %w - only auctioneers have commission obligations", auctionerrors.ErrForbidden)
	}
	if obligationID == "" {
		return model.CommissionObligation{}, fmt.Errorf("service: %w - empty obligation ID", auctionerrors.ErrInvalidInput)
	}

	o, err := s.ledger.GetObligation(ctx, obligationID)
	if err != nil {
		return model.CommissionObligation{}, fmt.Errorf("service: failed to get obligation %s: %w", obligationID, err)
	}
	if o.AuctioneerID != auctioneer.ID {
		return model.CommissionObligation{}, fmt.Errorf("service: %w - obligation %s belongs to another auctioneer", auctionerrors.ErrForbidden, obligationID)
	}
	return o, nil
}
