package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"auction-engine/internal/assets"
	bidding "auction-engine/internal/biddingService"
	"auction-engine/internal/config"
	"auction-engine/internal/notifier"
	"auction-engine/internal/repository"
	"auction-engine/internal/server"
	"auction-engine/utils"

	"gorm.io/driver/postgres"
)

func main() {
	cfg := config.Load()

	store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open auction store: %v\n", err)
		os.Exit(1)
	}

	registry := assets.NewInMemoryRegistry()
	prepopulateAssets(registry)

	dispatcher := notifier.NewDispatcher(notifier.LogSender{}, cfg.Engine.NotifyQueueSize)
	defer dispatcher.Close()

	biddingSvc := bidding.NewBiddingService(store, registry, dispatcher, nil)

	sweeper := bidding.NewSweeper(biddingSvc, cfg.Engine.SweepInterval)
	go sweeper.Start()
	defer sweeper.Stop()

	limiter := server.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitWindow)
	defer limiter.Stop()

	router := server.SetupRouter(biddingSvc, limiter)

	go func() {
		addr := ":" + cfg.Server.Port
		utils.Info("starting auction server", map[string]any{"addr": addr})
		if err := router.Run(addr); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.Info("shutting down", nil)
}

// openStore selects the database-backed store when a DSN is configured and
// falls back to the in-memory store otherwise.
func openStore(cfg *config.Config) (repository.AuctionStore, error) {
	if cfg.Database.DSN == "" {
		utils.Info("no DB_DSN configured, using in-memory store", nil)
		return repository.NewMemoryStore(), nil
	}
	return repository.Open(postgres.Open(cfg.Database.DSN))
}

// prepopulateAssets seeds a few owned assets so auctions can be created
// out of the box.
func prepopulateAssets(registry *assets.InMemoryRegistry) {
	registry.SetOwner("nft1", "user1")
	registry.SetOwner("nft2", "user2")
	registry.SetOwner("nft3", "user3")
}
