package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stayhub/service-booking/internal/adapter"
	"github.com/stayhub/service-booking/internal/application"
	"github.com/stayhub/service-booking/internal/config"
	bookingEvents "github.com/stayhub/service-booking/internal/events"
	"github.com/stayhub/service-booking/internal/handler"
	"github.com/stayhub/service-booking/internal/repository"
	"github.com/stayhub/service-booking/internal/sweeper"
	"github.com/stayhub/service-booking/pkg/auth"
	"github.com/stayhub/service-booking/pkg/database"
	"github.com/stayhub/service-booking/pkg/health"
	"github.com/stayhub/service-booking/pkg/kafka"
	"github.com/stayhub/service-booking/pkg/logger"
	"github.com/stayhub/service-booking/pkg/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting service-booking",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.BookingModel{}, &repository.PromotionModel{}, &repository.RoomModel{}); err != nil {
			zapLogger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		zapLogger.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", zapLogger); err != nil {
			zapLogger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer and event publisher
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, zapLogger)
	defer kafkaProducer.Close()
	publisher := bookingEvents.NewPublisher(kafkaProducer, zapLogger)

	// Initialize repositories
	bookingRepo := repository.NewBookingRepository(db)
	promoRepo := repository.NewGormPromotionRepository(db)
	roomRepo := repository.NewGormRoomRepository(db)

	// Initialize fingerprint extractor
	extractor := adapter.NewSHA256Extractor(zapLogger)

	// Initialize application services
	promoService := application.NewPromotionService(promoRepo, bookingRepo, zapLogger)
	roomService := application.NewRoomService(roomRepo, zapLogger)
	bookingService := application.NewBookingService(
		bookingRepo,
		roomRepo,
		promoService,
		extractor,
		publisher,
		application.RefundPolicy{
			FullRefundCutoff:     cfg.Refund.FullRefundCutoff,
			PartialRefundPercent: cfg.Refund.PartialRefundPercent,
		},
		application.SweepPolicy{
			CheckInGrace:   cfg.Sweep.CheckInGrace,
			CheckOutCutoff: cfg.Sweep.CheckOutCutoff,
		},
		zapLogger,
	)

	// Initialize Kafka consumer for payment events
	consumerGroupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
	paymentConsumer := bookingEvents.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		consumerGroupID,
		bookingService,
		zapLogger,
	)
	defer paymentConsumer.Close()

	// Background workers share one cancellation scope
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	// Start Kafka consumer in a goroutine
	go func() {
		zapLogger.Info("starting payment event consumer")
		if err := paymentConsumer.Start(workerCtx); err != nil {
			if workerCtx.Err() == nil {
				zapLogger.Error("payment event consumer failed", zap.Error(err))
			}
		}
	}()

	// Start the status sweeper in a goroutine
	statusSweeper := sweeper.New(bookingService, cfg.Sweep.Interval, zapLogger)
	go statusSweeper.Start(workerCtx)

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	promoHandler := handler.NewPromotionHandler(promoService, bookingService)
	roomHandler := handler.NewRoomHandler(roomService)
	adminHandler := handler.NewAdminHandler(bookingService, promoService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.LoggerMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-booking")
	healthHandler.RegisterRoutes(router)

	// Register API routes
	apiV1 := router.Group("/api/v1")
	bookingHandler.RegisterRoutes(apiV1, jwtManager)
	promoHandler.RegisterRoutes(apiV1, jwtManager)
	roomHandler.RegisterRoutes(apiV1, jwtManager)
	adminHandler.RegisterRoutes(apiV1, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down service-booking...")

	// Stop background workers
	workerCancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("service-booking stopped")
}
