package main

import (
	"context"
	"fmt"
	"os"

	"reuse-market/internal/auth"
	"reuse-market/internal/config"
	"reuse-market/internal/email"
	"reuse-market/internal/ingest"
	market "reuse-market/internal/marketservice"
	"reuse-market/internal/repository"
	"reuse-market/internal/server"
	"reuse-market/internal/storage"
	"reuse-market/utils"
)

func main() {
	cfg := config.Load()
	auth.InitJWT(cfg.JWTSecret)

	db, err := repository.Initialize(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := repository.Migrate(db); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	repo := repository.NewSQLiteRepo(db)

	photos, err := storage.NewDiskStore(cfg.UploadsDir, cfg.PublicURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to prepare uploads directory: %v\n", err)
		os.Exit(1)
	}

	notifier := email.NewService(cfg)
	listingSvc := market.NewListingService(repo)
	biddingSvc := market.NewBiddingService(repo, notifier)
	userSvc := market.NewUserService(repo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if len(cfg.IngestArchiveURLs) > 0 {
		ingest.NewJob(repo, cfg.IngestArchiveURLs, cfg.IngestInterval).Start(ctx)
		utils.Info("mailing list ingest started", map[string]any{
			"archives": len(cfg.IngestArchiveURLs),
			"interval": cfg.IngestInterval.String(),
		})
	}

	router := server.SetupRouter(cfg, listingSvc, biddingSvc, userSvc, photos)

	addr := ":" + cfg.Port
	fmt.Printf("Starting marketplace server on %s...\n", addr)
	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}
