package handler

//go:generate mockgen -source=commission_handler.go -destination=mock_commission_service.go -package=handler

import (
	"context"
	"net/http"

	"auction-marketplace/internal/media"
	model "auction-marketplace/internal/models"
	"auction-marketplace/services/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CommissionServiceInterface interface {
	SubmitProof(ctx context.Context, auctioneer model.Account, obligationID string, proof model.Image, comment string) (model.CommissionObligation, error)
	Resubmit(ctx context.Context, auctioneer model.Account, obligationID string) (model.CommissionObligation, error)
	Review(ctx context.Context, reviewer model.Account, obligationID string, status model.ObligationStatus, amount decimal.Decimal) (model.CommissionObligation, error)
	ListObligations(ctx context.Context, viewer model.Account, status model.ObligationStatus) ([]model.CommissionObligation, error)
	GetObligation(ctx context.Context, viewer model.Account, obligationID string) (model.CommissionObligation, error)
}

type CommissionHandler struct {
	service CommissionServiceInterface
	images  media.Uploader
}

func NewCommissionHandler(service CommissionServiceInterface, images media.Uploader) *CommissionHandler {
	return &CommissionHandler{service: service, images: images}
}

// SubmitProofHandler handles POST /commission/proof/:id
func (h *CommissionHandler) SubmitProofHandler(c *gin.Context) {
	auctioneer, ok := helpers.RequireAccount(c, "SubmitProofHandler")
	if !ok {
		return
	}

	var form helpers.ProofForm
	if err := c.ShouldBind(&form); err != nil {
		helpers.HandleBindError(c, "SubmitProofHandler", err)
		return
	}

	id := c.Param("id")
	fields := map[string]any{"obligation_id": id, "auctioneer_id": auctioneer.ID}

	file, err := helpers.OpenImage(c, "proof")
	if err != nil {
		helpers.HandleServiceError(c, "SubmitProofHandler", err, fields)
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	img, err := h.images.Upload(ctx, file, media.FolderPaymentProof)
	if err != nil {
		helpers.HandleServiceError(c, "SubmitProofHandler", err, fields)
		return
	}

	o, err := h.service.SubmitProof(ctx, auctioneer, id, img, form.Comment)
	if err != nil {
		if delErr := h.images.Delete(ctx, img.PublicID); delErr != nil {
			utils.Warn("SubmitProofHandler: failed to discard uploaded proof", map[string]any{
				"public_id": img.PublicID,
				"error":     delErr.Error(),
			})
		}
		helpers.HandleServiceError(c, "SubmitProofHandler", err, fields)
		return
	}

	utils.JSONResponse(c, http.StatusCreated, o, "payment proof submitted")
	helpers.LogSuccess("SubmitProofHandler", "payment proof submitted", fields)
}

// ResubmitHandler handles POST /commission/resubmit/:id
func (h *CommissionHandler) ResubmitHandler(c *gin.Context) {
	auctioneer, ok := helpers.RequireAccount(c, "ResubmitHandler")
	if !ok {
		return
	}

	id := c.Param("id")
	o, err := h.service.Resubmit(c.Request.Context(), auctioneer, id)
	if err != nil {
		helpers.HandleServiceError(c, "ResubmitHandler", err, map[string]any{"obligation_id": id, "auctioneer_id": auctioneer.ID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, o, "obligation reopened")
	helpers.LogSuccess("ResubmitHandler", "obligation reopened", map[string]any{"obligation_id": id})
}

// ReviewHandler handles PUT /superadmin/paymentproof/status/update/:id
func (h *CommissionHandler) ReviewHandler(c *gin.Context) {
	reviewer, ok := helpers.RequireAccount(c, "ReviewHandler")
	if !ok {
		return
	}

	var req helpers.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "ReviewHandler", err)
		return
	}

	id := c.Param("id")
	o, err := h.service.Review(c.Request.Context(), reviewer, id, model.ObligationStatus(req.Status), decimal.NewFromFloat(req.Amount))
	if err != nil {
		helpers.HandleServiceError(c, "ReviewHandler", err, map[string]any{
			"obligation_id": id,
			"status":        req.Status,
			"amount":        req.Amount,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, o, "payment proof reviewed")
	helpers.LogSuccess("ReviewHandler", "payment proof reviewed", map[string]any{
		"obligation_id":   id,
		"status":          o.Status,
		"verified_amount": o.VerifiedAmount.String(),
	})
}

// ListObligationsHandler handles GET /commission/obligations and /superadmin/paymentproofs/getall
func (h *CommissionHandler) ListObligationsHandler(c *gin.Context) {
	viewer, ok := helpers.RequireAccount(c, "ListObligationsHandler")
	if !ok {
		return
	}

	status := model.ObligationStatus(c.Query("status"))
	obligations, err := h.service.ListObligations(c.Request.Context(), viewer, status)
	if err != nil {
		helpers.HandleServiceError(c, "ListObligationsHandler", err, map[string]any{"viewer_id": viewer.ID, "status": status})
		return
	}
	if obligations == nil {
		obligations = []model.CommissionObligation{}
	}

	utils.JSONResponse(c, http.StatusOK, obligations, "obligations retrieved successfully")
}

// GetObligationHandler handles GET /commission/obligation/:id and /superadmin/paymentproof/:id
func (h *CommissionHandler) GetObligationHandler(c *gin.Context) {
	viewer, ok := helpers.RequireAccount(c, "GetObligationHandler")
	if !ok {
		return
	}

	id := c.Param("id")
	o, err := h.service.GetObligation(c.Request.Context(), viewer, id)
	if err != nil {
		helpers.HandleServiceError(c, "GetObligationHandler", err, map[string]any{"viewer_id": viewer.ID, "obligation_id": id})
		return
	}

	utils.JSONResponse(c, http.StatusOK, o, "obligation retrieved successfully")
}
