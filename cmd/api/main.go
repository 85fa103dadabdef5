package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/retailrewards/retail-rewards-backend/api/routes"
	"github.com/retailrewards/retail-rewards-backend/internal/config"
	"github.com/retailrewards/retail-rewards-backend/internal/fraud"
	"github.com/retailrewards/retail-rewards-backend/internal/handlers"
	mongorepo "github.com/retailrewards/retail-rewards-backend/internal/repositories/mongodb"
	"github.com/retailrewards/retail-rewards-backend/internal/scheduler"
	"github.com/retailrewards/retail-rewards-backend/internal/services"
	"github.com/retailrewards/retail-rewards-backend/pkg/extraction"
	"github.com/retailrewards/retail-rewards-backend/pkg/geocoding"
	"github.com/retailrewards/retail-rewards-backend/pkg/mongodb"
	"github.com/retailrewards/retail-rewards-backend/pkg/vectorstore"
	"github.com/retailrewards/retail-rewards-backend/pkg/whatsapp"
)

func main() {
	// .env is optional; deployed environments inject real variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
	cancel()
	if err != nil {
		logger.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("error disconnecting from MongoDB", "error", err)
		}
	}()
	db := mongoClient.Database(cfg.MongoDB.Database)

	// Repositories
	customerRepo := mongorepo.NewCustomerRepository(db)
	shopRepo := mongorepo.NewShopRepository(db)
	receiptRepo := mongorepo.NewReceiptRepository(db)
	drawRepo := mongorepo.NewDrawRepository(db)
	adminUserRepo := mongorepo.NewAdminUserRepository(db)

	// The draw's once-per-date guarantee rests on this index.
	indexCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = drawRepo.EnsureIndexes(indexCtx)
	cancel()
	if err != nil {
		logger.Error("failed to ensure draw indexes", "error", err)
		os.Exit(1)
	}

	// External service clients
	extractor := extraction.NewClient(
		cfg.Extraction.BaseURL, cfg.Extraction.APIKey,
		time.Duration(cfg.Extraction.TimeoutSeconds)*time.Second,
		cfg.Extraction.Mock, logger,
	)
	geocoder := geocoding.NewClient(
		cfg.Geocoding.BaseURL, cfg.Geocoding.UserAgent,
		time.Duration(cfg.Geocoding.TimeoutSeconds)*time.Second,
		cfg.Geocoding.Mock, logger,
	)
	indexer := vectorstore.NewClient(
		cfg.VectorStore.BaseURL, cfg.VectorStore.Collection,
		time.Duration(cfg.VectorStore.TimeoutSeconds)*time.Second,
		cfg.VectorStore.Enabled, logger,
	)
	relay := whatsapp.NewClient(
		cfg.WhatsApp.ServiceURL,
		time.Duration(cfg.WhatsApp.TimeoutSeconds)*time.Second,
		cfg.WhatsApp.Mock, logger,
	)

	if indexer.Enabled() {
		vsCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := indexer.EnsureCollection(vsCtx); err != nil {
			logger.Warn("vector store unavailable, continuing without similarity index", "error", err)
		}
		cancel()
	}

	thresholds := fraud.Thresholds{
		ValidKm:      cfg.Fraud.ValidKm,
		ReviewKm:     cfg.Fraud.ReviewKm,
		SuspiciousKm: cfg.Fraud.SuspiciousKm,
	}
	assessor := fraud.NewAssessor(thresholds)

	// Services
	customerService := services.NewCustomerService(customerRepo, logger)
	shopService := services.NewShopService(shopRepo, logger)
	receiptService := services.NewReceiptService(
		receiptRepo, customerRepo, shopRepo,
		customerService, shopService,
		extractor, geocoder, indexer, assessor, logger,
	)
	drawService := services.NewDrawService(drawRepo, receiptRepo, customerRepo, relay, nil, logger)
	fraudService := services.NewFraudService(receiptRepo, customerRepo, thresholds, logger)
	analyticsService := services.NewAnalyticsService(customerRepo, receiptRepo, shopRepo, drawRepo)
	whatsappService := services.NewWhatsAppService(customerService, receiptService, receiptRepo, drawRepo, logger)
	authService := services.NewAuthService(adminUserRepo, cfg, logger)
	seedService := services.NewSeedService(customerRepo, shopRepo, receiptRepo, drawRepo, assessor, nil, logger)

	// Daily draw scheduler
	sched := scheduler.New(cfg.Draw.ScheduleHourUTC, cfg.Draw.ScheduleMinuteUTC, func(ctx context.Context, drawDate string) {
		runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		if _, err := drawService.RunDraw(runCtx, drawDate); err != nil {
			logger.Error("scheduled draw failed", "drawDate", drawDate, "error", err)
		}
	}, logger)
	sched.Start()
	defer sched.Stop()

	// Handlers
	h := routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Customer:  handlers.NewCustomerHandler(customerService),
		Receipt:   handlers.NewReceiptHandler(receiptService),
		Fraud:     handlers.NewFraudHandler(fraudService),
		Shop:      handlers.NewShopHandler(shopService),
		Draw:      handlers.NewDrawHandler(drawService),
		Analytics: handlers.NewAnalyticsHandler(analyticsService),
		Map:       handlers.NewMapHandler(shopService, receiptService),
		WhatsApp:  handlers.NewWhatsAppHandler(whatsappService, relay),
		Admin:     handlers.NewAdminHandler(seedService, drawService, sched),
	}

	router := routes.SetupRouter(cfg, h, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server exiting")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
