package server

import (
	"net/http"
	"time"

	"auction-marketplace/internal/auth"
	"auction-marketplace/internal/clock"
	"auction-marketplace/internal/media"
	"auction-marketplace/internal/metrics"
	model "auction-marketplace/internal/models"
	accounthandler "auction-marketplace/services/account/handler"
	auctionhandler "auction-marketplace/services/auction/handler"
	biddinghandler "auction-marketplace/services/bidding/handler"
	commissionhandler "auction-marketplace/services/commission/handler"
	superadminhandler "auction-marketplace/services/superadmin/handler"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

// Dependencies is everything the HTTP layer needs from the rest of the application
type Dependencies struct {
	Accounts   accounthandler.AccountServiceInterface
	Auctions   auctionhandler.AuctionServiceInterface
	Bids       biddinghandler.BiddingServiceInterface
	Commission commissionhandler.CommissionServiceInterface
	Admin      superadminhandler.AdminServiceInterface

	Tokens    *auth.TokenManager
	Users     auth.AccountLoader
	Images    media.Uploader
	Clock     clock.Clock
	CookieTTL time.Duration

	// BidLimiter throttles bid placement; nil disables throttling
	BidLimiter *RateLimiter
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(metrics.Middleware())

	router.GET("/healthz", func(c *gin.Context) {
		utils.JSONResponse(c, http.StatusOK, gin.H{"time": deps.Clock.Now()}, "ok")
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	accountHandler := accounthandler.NewAccountHandler(deps.Accounts, deps.CookieTTL)
	auctionHandler := auctionhandler.NewAuctionHandler(deps.Auctions, deps.Images)
	biddingHandler := biddinghandler.NewBiddingHandler(deps.Bids)
	commissionHandler := commissionhandler.NewCommissionHandler(deps.Commission, deps.Images)
	superAdminHandler := superadminhandler.NewSuperAdminHandler(deps.Admin, deps.Clock)

	authenticated := auth.Authenticate(deps.Tokens, deps.Users)

	api := router.Group("/api/v1")

	users := api.Group("/user")
	{
		users.POST("/register", accountHandler.RegisterHandler)
		users.POST("/login", accountHandler.LoginHandler)
		users.GET("/logout", authenticated, accountHandler.LogoutHandler)
		users.GET("/me", authenticated, accountHandler.ProfileHandler)
		users.GET("/leaderboard", accountHandler.LeaderboardHandler)
	}

	auctions := api.Group("/auctionitem")
	{
		auctions.GET("/allitems", auctionHandler.ListAuctionsHandler)
		auctions.GET("/auction/:id", auctionHandler.GetAuctionDetailsHandler)

		owned := auctions.Group("", authenticated, auth.RequireRole(model.RoleAuctioneer))
		owned.POST("/create", auctionHandler.CreateAuctionHandler)
		owned.GET("/myitems", auctionHandler.ListMyAuctionsHandler)
		owned.DELETE("/delete/:id", auctionHandler.DeleteAuctionHandler)
	}

	bids := api.Group("/bid")
	{
		bids.GET("/auction/:id/bids", biddingHandler.GetBidsByAuctionHandler)
		bids.GET("/auction/:id/winning", biddingHandler.GetWinningBidHandler)

		bidders := bids.Group("", authenticated, auth.RequireRole(model.RoleBidder))
		if deps.BidLimiter != nil {
			bidders.POST("/place/:id", deps.BidLimiter.Middleware(), biddingHandler.PlaceBidHandler)
		} else {
			bidders.POST("/place/:id", biddingHandler.PlaceBidHandler)
		}
		bidders.GET("/mybids", biddingHandler.GetMyBidAuctionsHandler)
	}

	commissions := api.Group("/commission", authenticated, auth.RequireRole(model.RoleAuctioneer))
	{
		commissions.GET("/obligations", commissionHandler.ListObligationsHandler)
		commissions.GET("/obligation/:id", commissionHandler.GetObligationHandler)
		commissions.POST("/proof/:id", commissionHandler.SubmitProofHandler)
		commissions.POST("/resubmit/:id", commissionHandler.ResubmitHandler)
	}

	superAdmin := api.Group("/superadmin", authenticated, auth.RequireRole(model.RoleSuperAdmin))
	{
		superAdmin.GET("/paymentproofs/getall", commissionHandler.ListObligationsHandler)
		superAdmin.GET("/paymentproof/:id", commissionHandler.GetObligationHandler)
		superAdmin.PUT("/paymentproof/status/update/:id", commissionHandler.ReviewHandler)
		superAdmin.DELETE("/auctionitem/delete/:id", auctionHandler.DeleteAuctionHandler)
		superAdmin.GET("/monthlyincome", superAdminHandler.MonthlyIncomeHandler)
		superAdmin.GET("/users/getall", superAdminHandler.UserStatsHandler)
	}

	return router
}
