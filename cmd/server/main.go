package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mahdiyarhamdi/sheetaro/internal/catalog"
	"github.com/mahdiyarhamdi/sheetaro/internal/compositor"
	"github.com/mahdiyarhamdi/sheetaro/internal/config"
	"github.com/mahdiyarhamdi/sheetaro/internal/db"
	httpHandlers "github.com/mahdiyarhamdi/sheetaro/internal/http/handlers"
	httpRouter "github.com/mahdiyarhamdi/sheetaro/internal/http/router"
	"github.com/mahdiyarhamdi/sheetaro/internal/logger"
	"github.com/mahdiyarhamdi/sheetaro/internal/order"
	"github.com/mahdiyarhamdi/sheetaro/internal/pricing"
	"github.com/mahdiyarhamdi/sheetaro/internal/questionnaire"
	"github.com/mahdiyarhamdi/sheetaro/internal/repository"
	"github.com/mahdiyarhamdi/sheetaro/internal/service"
	"github.com/mahdiyarhamdi/sheetaro/internal/storage"
	"github.com/mahdiyarhamdi/sheetaro/internal/ws"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: config load failed: %v", err)
	}

	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: database connection failed: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: migrations failed: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	fileStorage, err := storage.NewFileStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: file storage init failed: %v", err)
	}

	// Repositories.
	userRepo := repository.NewUserRepository(dbConn)
	catalogRepo := repository.NewCatalogRepository(dbConn)
	orderRepo := repository.NewOrderRepository(dbConn)
	paymentRepo := repository.NewPaymentRepository(dbConn)

	// Catalog snapshot store.
	catalogStore := catalog.NewStore(catalogRepo)
	if err := catalogStore.Warm(ctx); err != nil {
		log.Fatalf("main: catalog warm-up failed: %v", err)
	}

	// Core domain components.
	maxUploadBytes := cfg.MaxUploadSizeMB * 1024 * 1024
	machine := order.NewMachine(time.Duration(cfg.RevisionWindowDays) * 24 * time.Hour)
	calculator := pricing.NewCalculator(cfg.ValidationFee, cfg.DefaultFixFee)
	engine := questionnaire.NewEngine(maxUploadBytes)
	comp := compositor.New(maxUploadBytes)

	// WebSockets.
	hub := ws.NewHub()
	go hub.Run()

	// Services.
	notificationService := service.NewNotificationService(hub)
	authService := service.NewAuthService(userRepo, tokenManager)
	catalogService := service.NewCatalogService(catalogStore)
	templateService := service.NewTemplateService(comp, fileStorage, cfg.CompositorWorkers)
	orderService := service.NewOrderService(
		orderRepo, paymentRepo, catalogStore,
		machine, calculator, engine,
		templateService, notificationService,
		cfg.OfferAcceptWindow,
	)
	paymentService := service.NewPaymentService(paymentRepo, orderRepo, notificationService, service.CardDetails{
		Number: cfg.PaymentCardNumber,
		Holder: cfg.PaymentCardHolder,
	})

	// Background offer rotation.
	scheduler := service.NewOfferScheduler(orderRepo, notificationService, cfg.OfferSchedulerTick, cfg.OfferAcceptWindow)
	scheduler.Run(ctx)

	// HTTP handlers.
	authHandler := httpHandlers.NewAuthHandler(authService)
	catalogHandler := httpHandlers.NewCatalogHandler(catalogService)
	questionnaireHandler := httpHandlers.NewQuestionnaireHandler(catalogService, engine)
	orderHandler := httpHandlers.NewOrderHandler(orderService)
	paymentHandler := httpHandlers.NewPaymentHandler(paymentService)
	mediaHandler := httpHandlers.NewMediaHandler(fileStorage, catalogService, templateService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	engineHTTP := httpRouter.SetupRouter(
		cfg,
		authHandler, catalogHandler, questionnaireHandler,
		orderHandler, paymentHandler, mediaHandler,
		wsHandler, healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engineHTTP,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: http server shutdown error: %v", err)
		}
	}()

	log.Printf("main: HTTP server listening on port %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: server exited with error: %v", err)
	}
}

func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: database close error: %v", err)
	}
}
