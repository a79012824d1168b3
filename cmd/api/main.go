package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/ai-risk-sentinel/backend/internal/analysis"
	"github.com/ai-risk-sentinel/backend/internal/api/handlers"
	"github.com/ai-risk-sentinel/backend/internal/cache/redis"
	"github.com/ai-risk-sentinel/backend/internal/catalog"
	"github.com/ai-risk-sentinel/backend/internal/compliance"
	"github.com/ai-risk-sentinel/backend/internal/hub"
	"github.com/ai-risk-sentinel/backend/internal/metrics"
	"github.com/ai-risk-sentinel/backend/internal/middleware/validation"
	"github.com/ai-risk-sentinel/backend/internal/storage/sqlite"
	"github.com/ai-risk-sentinel/backend/pkg/config"
	appLogger "github.com/ai-risk-sentinel/backend/pkg/logger"
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

	appLogger.Info("Starting AI Risk Sentinel API Server")

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var cache *redis.Client
	if cfg.Redis.Enabled {
		cache, err = redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSec)*time.Second,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, running without report cache", zap.Error(err))
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	metrics.Init()

	riskCatalog := catalog.New()
	persisted, err := sqliteClient.ListRisks("", "", 0, 0)
	if err != nil {
		appLogger.Warn("Failed to load persisted risks", zap.Error(err))
	}
	for _, risk := range persisted {
		riskCatalog.Add(risk)
	}
	metrics.CatalogSize.Set(float64(riskCatalog.Count()))
	appLogger.Info("Catalog loaded", zap.Int("risk_count", riskCatalog.Count()))

	baseline := analysis.Baseline{}
	if cfg.Analysis.UseReferenceData {
		baseline = analysis.DefaultBaseline()
	}
	analyzer := analysis.NewAnalyzer(cfg.Analysis.BSIThreshold, baseline)

	complianceEngine := compliance.NewEngine()

	hubClient := hub.NewClient(
		cfg.Hub.BaseURL,
		cfg.Hub.Token,
		time.Duration(cfg.Hub.RequestTimeout)*time.Second,
	)
	crawler := hub.NewCrawler(
		hubClient,
		riskCatalog,
		sqliteClient,
		time.Duration(cfg.Hub.RateLimitMS)*time.Millisecond,
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Server.RateLimit,
		Expiration: time.Minute,
	}))
	app.Use(validation.Middleware(validation.Config{
		MaxBodyBytes: cfg.Server.BodyLimit,
		Logger:       appLogger.Log,
	}))

	analysisHandler := handlers.NewAnalysisHandler(analyzer, cache, sqliteClient)
	complianceHandler := handlers.NewComplianceHandler(complianceEngine, riskCatalog, cfg.Compliance.EvidenceDir)
	riskHandler := handlers.NewRiskHandler(riskCatalog, sqliteClient)
	crawlHandler := handlers.NewCrawlHandler(crawler, cache)
	wsHandler := handlers.NewWebSocketHandler(crawler)

	api := app.Group("/api/v1")

	api.Get("/analyze/blind-spot-index", analysisHandler.GetBlindSpotIndex)
	api.Get("/analyze/priority-gaps", analysisHandler.GetPriorityGaps)
	api.Get("/analyze/snapshot", analysisHandler.GetLatestSnapshot)
	// Hub model ids contain a slash, so the id segment is a greedy match.
	api.Get("/analyze/model/+/gaps", complianceHandler.GetModelGaps)

	api.Post("/compliance/check", complianceHandler.CheckCompliance)
	api.Post("/compliance/evidence-pack", complianceHandler.ExportEvidencePack)

	api.Get("/risks", riskHandler.ListRisks)
	api.Post("/risks", riskHandler.CreateRisk)
	api.Get("/risks/categories", analysisHandler.GetCategories)
	api.Get("/risks/:id", riskHandler.GetRisk)

	api.Post("/crawl", crawlHandler.StartCrawl)
	api.Get("/crawl/:task_id", crawlHandler.GetCrawlStatus)

	app.Get("/ws/crawl", websocket.New(wsHandler.HandleConnection))

	app.Get("/metrics", metrics.MetricsHandler())

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

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
