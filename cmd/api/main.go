package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-extractor/internal/api"
	"recipe-extractor/internal/core/usage"
	"recipe-extractor/internal/infrastructure/config"
	"recipe-extractor/internal/pkg/common"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("Configuration loaded",
		zap.String("model", cfg.OpenRouter.Model),
		zap.Bool("usage_redis_enabled", cfg.Usage.RedisEnabled),
	)

	ledger, closeSink, err := buildLedger(cfg)
	if err != nil {
		common.LogFatal("Failed to initialize usage ledger", zap.Error(err))
	}
	defer closeSink()

	router, err := api.SetupRouter(cfg, ledger)
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("Starting server",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	common.LogInfo("Server exited")
}

// buildLedger selects the usage sink: Redis when configured, otherwise an
// in-process buffer so records are still inspectable in development.
func buildLedger(cfg *config.Config) (*usage.Ledger, func(), error) {
	if !cfg.Usage.RedisEnabled {
		return usage.NewLedger(usage.NewMemorySink()), func() {}, nil
	}

	sink, err := usage.NewRedisSink(cfg.Usage.RedisAddr, cfg.Usage.RedisPassword, cfg.Usage.RedisDB, cfg.Usage.RedisKey)
	if err != nil {
		return nil, nil, err
	}
	return usage.NewLedger(sink), func() {
		if err := sink.Close(); err != nil {
			common.LogWarn("Failed to close usage sink", zap.Error(err))
		}
	}, nil
}
