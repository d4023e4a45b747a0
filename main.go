package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	account "auction-marketplace/internal/accountService"
	admin "auction-marketplace/internal/adminService"
	auction "auction-marketplace/internal/auctionService"
	"auction-marketplace/internal/auth"
	bidding "auction-marketplace/internal/biddingService"
	"auction-marketplace/internal/clock"
	closer "auction-marketplace/internal/closerService"
	commission "auction-marketplace/internal/commissionService"
	"auction-marketplace/internal/config"
	"auction-marketplace/internal/events"
	"auction-marketplace/internal/media"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/repository/mongostore"
	"auction-marketplace/internal/server"
	"auction-marketplace/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Fatal("failed to load configuration", map[string]any{"error": err.Error()})
	}
	if err := utils.SetLevel(cfg.LogLevel); err != nil {
		utils.Fatal("invalid log level", map[string]any{"error": err.Error()})
	}

	ctx := context.Background()
	clk := clock.Real{}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		utils.Fatal("failed to open store", map[string]any{"store": cfg.Store, "error": err.Error()})
	}
	defer closeStore()

	images, err := newUploader(cfg)
	if err != nil {
		utils.Fatal("failed to configure image uploads", map[string]any{"error": err.Error()})
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		utils.Fatal("failed to connect to message broker", map[string]any{"error": err.Error()})
	}
	defer publisher.Close()

	rate, err := cfg.Commission()
	if err != nil {
		utils.Fatal("invalid commission rate", map[string]any{"error": err.Error()})
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpire, clk)

	accountSvc := account.NewAccountService(store, images, tokens, clk)
	auctionSvc := auction.NewAuctionService(store, store, store, images, clk)
	biddingSvc := bidding.NewBiddingService(store, store, clk)
	commissionSvc := commission.NewCommissionService(store, clk)
	adminSvc := admin.NewAdminService(store, store)
	closerSvc := closer.NewCloserService(store, store, store, clk, rate, publisher)

	if cfg.SuperAdminEmail != "" {
		acct, err := accountSvc.EnsureSuperAdmin(ctx, cfg.SuperAdminName, cfg.SuperAdminEmail, cfg.SuperAdminPassword)
		if err != nil {
			utils.Fatal("failed to seed super admin", map[string]any{"email": cfg.SuperAdminEmail, "error": err.Error()})
		}
		utils.Info("super admin ready", map[string]any{"user_id": acct.ID})
	}

	if err := closerSvc.Start(ctx, cfg.SweepSchedule); err != nil {
		utils.Fatal("failed to start auction closer", map[string]any{"schedule": cfg.SweepSchedule, "error": err.Error()})
	}

	router := server.SetupRouter(server.Dependencies{
		Accounts:   accountSvc,
		Auctions:   auctionSvc,
		Bids:       biddingSvc,
		Commission: commissionSvc,
		Admin:      adminSvc,
		Tokens:     tokens,
		Users:      store,
		Images:     images,
		Clock:      clk,
		CookieTTL:  cfg.CookieTTL(),
		BidLimiter: server.NewRateLimiter(cfg.BidRatePerSecond, cfg.BidRateBurst),
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		utils.Info("starting auction server", map[string]any{"addr": cfg.Addr(), "store": cfg.Store})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Fatal("server failed", map[string]any{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.Info("shutting down server", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("server forced to shutdown", map[string]any{"error": err.Error()})
	}
	closerSvc.Stop(shutdownCtx)

	utils.Info("server exited", nil)
}

// openStore returns the configured store and a function releasing it
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	if cfg.Store != config.StoreMongo {
		return repository.NewMemoryRepo(), func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	store, err := mongostore.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			utils.Warn("failed to disconnect mongo", map[string]any{"error": err.Error()})
		}
	}, nil
}

// newUploader uses Cloudinary when configured, otherwise images are accepted but not hosted
func newUploader(cfg *config.Config) (media.Uploader, error) {
	if cfg.CloudinaryURL == "" {
		utils.Warn("CLOUDINARY_URL not set; uploaded images are discarded", nil)
		return media.Placeholder{}, nil
	}
	cld, err := media.NewCloudinary(cfg.CloudinaryURL)
	if err != nil {
		return nil, err
	}
	return cld, nil
}

// newPublisher uses RabbitMQ when configured, otherwise lifecycle events are only logged
func newPublisher(cfg *config.Config) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		return events.LogPublisher{}, nil
	}
	pub, err := events.DialAMQP(cfg.AMQPURL)
	if err != nil {
		return nil, err
	}
	utils.Info("publishing auction events", map[string]any{"exchange": events.Exchange})
	return pub, nil
}
