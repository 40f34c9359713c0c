package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsAdapter "github.com/estately/estate-service/internal/adapter/messaging/nats"
	"github.com/estately/estate-service/internal/adapter/repository/cache"
	mongoRepo "github.com/estately/estate-service/internal/adapter/repository/mongodb"
	s3Adapter "github.com/estately/estate-service/internal/adapter/storage/s3"

	"github.com/estately/estate-service/internal/api/handler"
	"github.com/estately/estate-service/internal/api/router"
	"github.com/estately/estate-service/internal/auth"
	"github.com/estately/estate-service/internal/config"
	"github.com/estately/estate-service/internal/mailer"
	listingUC "github.com/estately/estate-service/internal/listing/usecase"
	reviewUC "github.com/estately/estate-service/internal/review/usecase"
	"github.com/estately/estate-service/internal/user"

	"github.com/estately/estate-service/internal/platform/logger"
	"github.com/estately/estate-service/internal/platform/metrics"
	"github.com/estately/estate-service/internal/platform/tracer"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

func main() {
	// Load .env file (optional, for local development)
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	appLogger := logger.NewLogger()
	appLogger.Info("Application starting...")

	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	var tp *sdktrace.TracerProvider
	if cfg.OTExporterOTLPEndpoint != "" {
		tp = tracer.InitTracer(cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
		defer func() {
			ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelShutdown()
			if err := tp.Shutdown(ctxShutdown); err != nil {
				appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
		appLogger.Info("OpenTelemetry Tracer initialized.")
	} else {
		appLogger.Info("OpenTelemetry Tracer not initialized (OTEL_EXPORTER_OTLP_ENDPOINT not set).")
	}

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err = mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	ctxPingMongo, cancelPingMongo := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPingMongo()
	if err = mongoClient.Ping(ctxPingMongo, nil); err != nil {
		appLogger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}
	appLogger.Info("Successfully connected and pinged MongoDB.")
	db := mongoClient.Database(cfg.MongoDatabase)

	natsPublisher, err := natsAdapter.NewPublisher(cfg.NATSURL, appLogger, cfg.ServiceName)
	if err != nil {
		appLogger.Fatal("Failed to initialize NATS publisher", zap.Error(err))
	}
	defer natsPublisher.Close()
	appLogger.Info("NATS Publisher initialized.")

	listingRepo, err := mongoRepo.NewListingRepository(mongoClient, db, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize ListingRepository", zap.Error(err))
	}
	savedRepo, err := mongoRepo.NewSavedListingRepository(db, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize SavedListingRepository", zap.Error(err))
	}
	reviewRepo, err := mongoRepo.NewReviewRepository(db, appLogger, cfg.UniqueReviewPerPair)
	if err != nil {
		appLogger.Fatal("Failed to initialize ReviewRepository", zap.Error(err))
	}
	userRepo := mongoRepo.NewUserRepository(db, appLogger)

	// Profile reads go through redis when it is reachable, straight to the
	// users collection otherwise.
	var profiles user.ProfileRepository = userRepo
	if cfg.RedisAddr != "" {
		profileCache, err := cache.NewProfileCache(cfg.RedisAddr, userRepo, appLogger)
		if err != nil {
			appLogger.Warn("Redis unavailable, profile cache disabled", zap.Error(err))
		} else {
			defer profileCache.Close()
			profiles = profileCache
			appLogger.Info("Profile cache initialized.")
		}
	}

	var photoStorage listingUC.PhotoStorage
	if cfg.S3Endpoint != "" && cfg.S3AccessKey != "" {
		storage, err := s3Adapter.NewPhotoStorage(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3UseSSL, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize photo storage", zap.Error(err))
		}
		photoStorage = storage
		appLogger.Info("Photo storage initialized.", zap.String("bucket", cfg.S3Bucket))
	} else {
		appLogger.Warn("Photo storage not configured (S3 credentials not set), uploads disabled.")
	}

	var notifier reviewUC.Notifier
	if cfg.SMTPHost != "" {
		notifier = mailer.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword)
		appLogger.Info("Mailer initialized.", zap.String("smtp_host", cfg.SMTPHost))
	}

	verifier := auth.NewVerifier(cfg.JWTSecret, appLogger)
	savedResolver := listingUC.NewSavedResolver(savedRepo, appLogger)
	listingUsecase := listingUC.NewListingUsecase(listingRepo, savedRepo, savedResolver, profiles, natsPublisher, photoStorage, appLogger)
	reviewUsecase := reviewUC.NewReviewUsecase(reviewRepo, profiles, natsPublisher, notifier, cfg.AllowSelfReview, appLogger)

	metricsManager := metrics.NewManager("estate_service")
	go func() {
		if err := metrics.StartMetricsServer(cfg.PrometheusMetricsPort, appLogger, metricsManager.Registry); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Prometheus metrics server failed", zap.Error(err))
		}
	}()

	listingHandler := handler.NewListingHandler(listingUsecase, metricsManager, appLogger)
	reviewHandler := handler.NewReviewHandler(reviewUsecase, metricsManager, appLogger)
	mux := router.New(listingHandler, reviewHandler, verifier, appLogger, metricsManager)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("HTTP server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Shutdown signal received", zap.String("signal", sig.String()))

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Application stopped gracefully.")
}
