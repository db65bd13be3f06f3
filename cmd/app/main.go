package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"referral-contest-bot/internal/api"
	"referral-contest-bot/internal/bot"
	"referral-contest-bot/internal/repository"
	"referral-contest-bot/internal/service"
	"referral-contest-bot/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := repo.Migrate(ctx); err != nil {
		zapLogger.Fatal("Failed to apply schema", zap.Error(err))
	}

	referralService := service.NewReferralService(
		repo, cfg.Contest.ReferralSecret, cfg.Telegram.BotUsername, cfg.Contest.MinReferrals)
	contestService := service.NewContestService(repo, nil)
	adminService := service.NewAdminService(repo)

	if err := adminService.Seed(ctx, cfg.Telegram.AdminIDs); err != nil {
		zapLogger.Fatal("Failed to seed admins", zap.Error(err))
	}

	contestBot, err := bot.New(bot.Config{
		Token:     cfg.Telegram.BotToken,
		Group:     cfg.Telegram.Group,
		Threshold: cfg.Contest.MinReferrals,
	}, referralService, contestService, adminService)
	if err != nil {
		zapLogger.Fatal("Failed to initialize bot", zap.Error(err))
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{http.MethodHead, http.MethodGet}
	corsConfig.AllowHeaders = []string{"*"}
	corsConfig.MaxAge = 12 * time.Hour

	router.Use(cors.New(corsConfig))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	a := router.Group("/api/v1")
	api.NewContestRoutes(a, contestService)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		zapLogger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	go func() {
		zapLogger.Info("Starting bot")
		if err := contestBot.Run(ctx); err != nil && ctx.Err() == nil {
			zapLogger.Error("Bot stopped", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}

	zapLogger.Info("Shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("HTTP shutdown failed", zap.Error(err))
	}
}
