package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/agrifair/service-rental/internal/application"
	"github.com/agrifair/service-rental/internal/cache"
	"github.com/agrifair/service-rental/internal/config"
	"github.com/agrifair/service-rental/internal/events"
	"github.com/agrifair/service-rental/internal/handler"
	"github.com/agrifair/service-rental/internal/repository"
	"github.com/agrifair/service-rental/pkg/auth"
	"github.com/agrifair/service-rental/pkg/database"
	"github.com/agrifair/service-rental/pkg/health"
	"github.com/agrifair/service-rental/pkg/kafka"
	"github.com/agrifair/service-rental/pkg/logger"
	"github.com/agrifair/service-rental/pkg/middleware"
)

const availabilityCacheTTL = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-rental")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-rental",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.FarmerModel{}, &repository.EquipmentModel{}, &repository.RentalModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		dbURL := dbConfig.DatabaseURL()
		if err := database.RunMigrations(dbURL, "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize Redis-backed availability cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisConfig.Addr,
		Password: cfg.RedisConfig.Password,
		DB:       cfg.RedisConfig.DB,
	})
	defer func() { _ = redisClient.Close() }()
	availabilityCache := cache.NewEquipmentAvailabilityCache(redisClient, availabilityCacheTTL, log)

	// Initialize repositories and the transactional unit of work
	rentalRepo := repository.NewGormRentalRepository(db)
	equipmentRepo := repository.NewGormEquipmentRepository(db)
	farmerRepo := repository.NewGormFarmerRepository(db)
	uow := repository.NewGormUnitOfWork(db)

	// Initialize application services
	rentalService := application.NewRentalService(uow, rentalRepo, kafkaProducer, availabilityCache, log)
	equipmentService := application.NewEquipmentService(equipmentRepo, farmerRepo, availabilityCache, log)
	farmerService := application.NewFarmerService(farmerRepo, log)

	// Initialize and start payment event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "rental-service"
	paymentConsumer := application.NewPaymentEventConsumer(
		kafka.NewConsumer(cfg.KafkaConfig.Brokers, groupID, events.TopicPaymentEvents, log),
		rentalService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	rentalHandler := handler.NewRentalHandler(rentalService)
	equipmentHandler := handler.NewEquipmentHandler(equipmentService)
	farmerHandler := handler.NewFarmerHandler(farmerService)
	adminHandler := handler.NewAdminHandler(rentalService, equipmentService, farmerService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-rental")
	healthHandler.RegisterRoutes(router)

	// Register routes
	rentalHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	equipmentHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	farmerHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

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
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-rental...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-rental stopped")
}
