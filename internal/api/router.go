package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"recipe-extractor/internal/api/handlers/health"
	recipeHandler "recipe-extractor/internal/api/handlers/recipe"
	"recipe-extractor/internal/api/middleware"
	"recipe-extractor/internal/core/ai/openrouter"
	"recipe-extractor/internal/core/extract"
	"recipe-extractor/internal/core/image"
	"recipe-extractor/internal/core/nutrition"
	"recipe-extractor/internal/core/nutrition/fooddata"
	"recipe-extractor/internal/core/usage"
	"recipe-extractor/internal/infrastructure/config"
	"recipe-extractor/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	timeoutDuration = 120 * time.Second
	// 10MB covers multi-image requests with headroom.
	maxBodySize = 10 << 20
)

// SetupRouter wires services and routes into a gin engine.
func SetupRouter(cfg *config.Config, ledger *usage.Ledger) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))

	common.LogInfo("Initializing services",
		zap.String("model", cfg.OpenRouter.Model),
		zap.Int("fooddata_max_concurrent", cfg.FoodData.MaxConcurrent),
		zap.Duration("timeout", timeoutDuration),
	)

	modelClient := openrouter.NewClient(cfg)
	if modelClient == nil {
		return nil, fmt.Errorf("failed to initialize model client")
	}

	imageSvc := image.NewService(cfg.Image.MaxSizeBytes)
	extractSvc := extract.NewService(modelClient, ledger)

	foodClient := fooddata.NewClient(cfg)
	lineParser := nutrition.NewLineParser(modelClient)
	nutritionSvc := nutrition.NewService(lineParser, foodClient, ledger, cfg.FoodData.MaxConcurrent)

	// Per-request timeout plus context injection for the health handler.
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set("config", cfg)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeGatewayTimeout,
			})
			c.Abort()
		}
	})

	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	api := router.Group("/api/v1")
	{
		recipes := api.Group("/recipes")
		{
			recipes.POST("/extract", recipeHandler.HandleExtractFromImages(extractSvc, imageSvc))
			recipes.POST("/extract-text", recipeHandler.HandleExtractFromText(extractSvc))
		}

		api.POST("/nutrition/calculate", recipeHandler.HandleNutritionCalculate(nutritionSvc))
	}

	common.LogInfo("Router setup completed",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
