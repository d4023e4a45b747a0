package handler

//go:generate mockgen -source=auction_handler.go -destination=mock_auction_service.go -package=handler

import (
	"context"
	"net/http"

	auction "auction-marketplace/internal/auctionService"
	"auction-marketplace/internal/media"
	model "auction-marketplace/internal/models"
	"auction-marketplace/services/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AuctionServiceInterface interface {
	CreateAuction(ctx context.Context, auctioneerID string, in auction.NewAuction) (model.Auction, error)
	GetAuctionDetails(ctx context.Context, id string) (model.Auction, []model.Bid, error)
	ListAuctions(ctx context.Context, status model.AuctionStatus) ([]model.Auction, error)
	ListMyAuctions(ctx context.Context, auctioneerID string) ([]model.Auction, error)
	DeleteAuction(ctx context.Context, actor model.Account, id string) error
}

type AuctionHandler struct {
	service AuctionServiceInterface
	images  media.Uploader
}

func NewAuctionHandler(service AuctionServiceInterface, images media.Uploader) *AuctionHandler {
	return &AuctionHandler{service: service, images: images}
}

// CreateAuctionHandler handles POST /auctionitem/create
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	owner, ok := helpers.RequireAccount(c, "CreateAuctionHandler")
	if !ok {
		return
	}

	var form helpers.CreateAuctionForm
	if err := c.ShouldBind(&form); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	file, err := helpers.OpenImage(c, "image")
	if err != nil {
		helpers.HandleServiceError(c, "CreateAuctionHandler", err, map[string]any{"auctioneer_id": owner.ID})
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	img, err := h.images.Upload(ctx, file, media.FolderAuctions)
	if err != nil {
		helpers.HandleServiceError(c, "CreateAuctionHandler", err, map[string]any{"auctioneer_id": owner.ID})
		return
	}

	created, err := h.service.CreateAuction(ctx, owner.ID, auction.NewAuction{
		Title:       form.Title,
		Description: form.Description,
		Category:    form.Category,
		Condition:   form.Condition,
		StartingBid: decimal.NewFromFloat(form.StartingBid),
		StartTime:   form.StartTime,
		EndTime:     form.EndTime,
		Image:       img,
	})
	if err != nil {
		h.discardImage(ctx, img)
		helpers.HandleServiceError(c, "CreateAuctionHandler", err, map[string]any{
			"auctioneer_id": owner.ID,
			"title":         form.Title,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, created, "auction item created")
	helpers.LogSuccess("CreateAuctionHandler", "auction item created", map[string]any{
		"auction_id":    created.ID,
		"auctioneer_id": owner.ID,
		"status":        created.Status,
	})
}

func (h *AuctionHandler) discardImage(ctx context.Context, img model.Image) {
	if img.PublicID == "" {
		return
	}
	if err := h.images.Delete(ctx, img.PublicID); err != nil {
		utils.Warn("CreateAuctionHandler: failed to discard uploaded image", map[string]any{
			"public_id": img.PublicID,
			"error":     err.Error(),
		})
	}
}

// ListAuctionsHandler handles GET /auctionitem/allitems?status=
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	status := model.AuctionStatus(c.Query("status"))
	auctions, err := h.service.ListAuctions(c.Request.Context(), status)
	if err != nil {
		helpers.HandleServiceError(c, "ListAuctionsHandler", err, map[string]any{"status": status})
		return
	}
	if auctions == nil {
		auctions = []model.Auction{}
	}

	utils.JSONResponse(c, http.StatusOK, auctions, "auctions retrieved successfully")
	helpers.LogSuccess("ListAuctionsHandler", "auctions retrieved successfully", map[string]any{
		"status": status,
		"count":  len(auctions),
	})
}

// GetAuctionDetailsHandler handles GET /auctionitem/auction/:id
func (h *AuctionHandler) GetAuctionDetailsHandler(c *gin.Context) {
	id := c.Param("id")
	a, bids, err := h.service.GetAuctionDetails(c.Request.Context(), id)
	if err != nil {
		helpers.HandleServiceError(c, "GetAuctionDetailsHandler", err, map[string]any{"auction_id": id})
		return
	}

	resp := helpers.AuctionDetailsResponse{Auction: a, Bids: helpers.NewBidResponses(bids)}
	utils.JSONResponse(c, http.StatusOK, resp, "auction retrieved successfully")
	helpers.LogSuccess("GetAuctionDetailsHandler", "auction retrieved successfully", map[string]any{
		"auction_id": id,
		"bids_count": len(bids),
	})
}

// ListMyAuctionsHandler handles GET /auctionitem/myitems
func (h *AuctionHandler) ListMyAuctionsHandler(c *gin.Context) {
	owner, ok := helpers.RequireAccount(c, "ListMyAuctionsHandler")
	if !ok {
		return
	}

	auctions, err := h.service.ListMyAuctions(c.Request.Context(), owner.ID)
	if err != nil {
		helpers.HandleServiceError(c, "ListMyAuctionsHandler", err, map[string]any{"auctioneer_id": owner.ID})
		return
	}
	if auctions == nil {
		auctions = []model.Auction{}
	}

	utils.JSONResponse(c, http.StatusOK, auctions, "auctions retrieved successfully")
	helpers.LogSuccess("ListMyAuctionsHandler", "auctions retrieved successfully", map[string]any{
		"auctioneer_id": owner.ID,
		"count":         len(auctions),
	})
}

// DeleteAuctionHandler handles DELETE /auctionitem/delete/:id and its super admin twin
func (h *AuctionHandler) DeleteAuctionHandler(c *gin.Context) {
	actor, ok := helpers.RequireAccount(c, "DeleteAuctionHandler")
	if !ok {
		return
	}

	id := c.Param("id")
	if err := h.service.DeleteAuction(c.Request.Context(), actor, id); err != nil {
		helpers.HandleServiceError(c, "DeleteAuctionHandler", err, map[string]any{
			"auction_id": id,
			"actor_id":   actor.ID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"id": id}, "auction item deleted")
	helpers.LogSuccess("DeleteAuctionHandler", "auction item deleted", map[string]any{
		"auction_id": id,
		"actor_id":   actor.ID,
		"role":       actor.Role,
	})
}
