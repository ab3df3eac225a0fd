package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/brim-cs/backend/internal/api/handlers"
	redisCache "github.com/brim-cs/backend/internal/cache/redis"
	"github.com/brim-cs/backend/internal/catalog"
	"github.com/brim-cs/backend/internal/corpus"
	"github.com/brim-cs/backend/internal/drafting"
	"github.com/brim-cs/backend/internal/feedback"
	"github.com/brim-cs/backend/internal/ledger"
	"github.com/brim-cs/backend/internal/llm"
	"github.com/brim-cs/backend/internal/metrics"
	"github.com/brim-cs/backend/internal/middleware/security"
	"github.com/brim-cs/backend/internal/retrieval"
	"github.com/brim-cs/backend/pkg/config"
	appLogger "github.com/brim-cs/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	if err := cfg.Validate(); err != nil {
		appLogger.Fatal("Invalid configuration", zap.Error(err))
	}

	appLogger.Info("Starting BRIM CS drafting API server")

	metrics.Init()

	ledgerClient, err := ledger.NewClient(cfg.Ledger.Path)
	if err != nil {
		appLogger.Fatal("Failed to create ledger client", zap.Error(err))
	}
	defer ledgerClient.Close()

	if err := ledgerClient.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize ledger schema", zap.Error(err))
	}

	ctx := context.Background()

	corpusStore, err := corpus.NewStore(ctx, cfg.Corpus.DSN, cfg.LLM.EmbeddingDim)
	if err != nil {
		appLogger.Fatal("Failed to create corpus store", zap.Error(err))
	}
	defer corpusStore.Close()

	if err := corpusStore.EnsureSchema(ctx); err != nil {
		appLogger.Fatal("Failed to ensure corpus schema", zap.Error(err))
	}

	if n, err := corpusStore.Count(ctx); err == nil {
		appLogger.Info("Corpus ready", zap.Int64("entries", n))
	}

	productCatalog, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		if errors.Is(err, catalog.ErrCatalogMissing) {
			appLogger.Warn("Product catalog not found, continuing with empty catalog",
				zap.String("path", cfg.Catalog.Path))
		} else {
			appLogger.Fatal("Failed to load product catalog", zap.Error(err))
		}
	}

	llmClient := llm.NewClient(cfg.LLM)

	retriever := retrieval.NewRetriever(llmClient, corpusStore, productCatalog, cfg.Retrieval.TopK)
	generator := drafting.NewGenerator(llmClient)
	loop := feedback.NewLoop(llmClient, corpusStore)

	var statsCache handlers.StatsCache
	if cfg.Redis.Enabled {
		cacheClient, err := redisCache.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Stats cache unavailable, serving stats without caching", zap.Error(err))
		} else {
			defer cacheClient.Close()
			statsCache = cacheClient
		}
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(security.Headers(cfg.Server.Environment == "development"))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	inquiryHandler := handlers.NewInquiryHandler(ledgerClient, retriever, generator)
	correctionHandler := handlers.NewCorrectionHandler(ledgerClient, loop)
	statsHandler := handlers.NewStatsHandler(ledgerClient, statsCache,
		time.Duration(cfg.Redis.StatsTTLSec)*time.Second)

	api := app.Group("/api/v1")

	api.Post("/inquiries", inquiryHandler.HandleCreate)
	api.Post("/drafts/:id/corrections", correctionHandler.HandleCorrect)
	api.Post("/drafts/:id/ratings", correctionHandler.HandleRate)
	api.Get("/stats", statsHandler.HandleStats)
	api.Get("/corrections", statsHandler.HandleCorrectionHistory)
	api.Get("/meta", handlers.HandleMeta)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	app.Get("/metrics", metrics.Handler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
