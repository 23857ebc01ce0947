package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	httpapi "github.com/gigboard/gigboard/internal/api/http"
	appChat "github.com/gigboard/gigboard/internal/application/chat"
	appGig "github.com/gigboard/gigboard/internal/application/gig"
	appProduct "github.com/gigboard/gigboard/internal/application/product"
	appUser "github.com/gigboard/gigboard/internal/application/user"
	"github.com/gigboard/gigboard/internal/config"
	"github.com/gigboard/gigboard/internal/infrastructure/filestore"
	"github.com/gigboard/gigboard/internal/infrastructure/postgres"
	"github.com/gigboard/gigboard/internal/infrastructure/ws"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, "internal/migrations"); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	// repositories
	userRepo := postgres.NewUserRepository(pool)
	gigRepo := postgres.NewGigRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	messageRepo := postgres.NewMessageRepository(pool)

	// infrastructure
	hub := ws.NewHub()
	files, err := filestore.New(cfg.UploadDir, cfg.MaxUploadBytes, cfg.UploadBaseURL)
	if err != nil {
		log.Fatalf("filestore error: %v", err)
	}

	// services
	userSvc := appUser.NewService(userRepo, logger)
	gigSvc := appGig.NewService(gigRepo, userRepo, messageRepo, logger)
	productSvc := appProduct.NewService(productRepo, userRepo, logger)
	chatSvc := appChat.NewService(messageRepo, gigRepo, userRepo, logger)

	// API server
	apiServer := httpapi.NewServer(userSvc, gigSvc, productSvc, chatSvc, hub, files, []byte(cfg.JWTSecret), logger)

	httpServer := &http.Server{
		Addr:        cfg.ServerAddr,
		Handler:     apiServer.Router(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// start server
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}
