package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/seatwave/whatsapp-booking-backend/internal/config"
	"github.com/seatwave/whatsapp-booking-backend/internal/database"
	"github.com/seatwave/whatsapp-booking-backend/internal/handlers"
	"github.com/seatwave/whatsapp-booking-backend/internal/services"
	"github.com/seatwave/whatsapp-booking-backend/pkg/validator"
	"github.com/seatwave/whatsapp-booking-backend/pkg/whatsapp"
	"github.com/sirupsen/logrus"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting WhatsApp Seat Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize repositories
	operatorRepo := database.NewOperatorRepository(db)
	routeRepo := database.NewRouteRepository(db)
	tripRepo := database.NewTripRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	msgLogRepo := database.NewMessageLogRepository(db)

	// Initialize outbound messaging
	waClient := whatsapp.NewClient(whatsapp.Config{
		APIURL:        cfg.WhatsApp.APIURL,
		AccessToken:   cfg.WhatsApp.AccessToken,
		PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
	})

	// Initialize services
	logger.Info("Initializing services...")
	phoneValidator := validator.NewPhoneValidator()
	parser := services.NewMessageParser()
	holdService := services.NewHoldService(
		routeRepo, tripRepo, bookingRepo, msgLogRepo, operatorRepo,
		waClient, logger, cfg.Booking.HoldDuration,
	)
	confirmationService := services.NewConfirmationService(bookingRepo, msgLogRepo, waClient, waClient, logger)
	dispatcherService := services.NewDispatcherService(
		operatorRepo, msgLogRepo, parser, holdService, confirmationService,
		waClient, phoneValidator, logger,
	)
	expirationService := services.NewExpirationService(bookingRepo, logger)
	reminderService := services.NewReminderService(bookingRepo, msgLogRepo, waClient, logger, cfg.Booking.ReminderLead)

	// Start the sweep scheduler
	cronService := services.NewCronService(
		expirationService, reminderService, logger,
		cfg.Booking.ExpirationSweep, cfg.Booking.ReminderSweep,
	)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start sweep scheduler: %v", err)
	}
	defer cronService.Stop()

	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(dispatcherService, cfg.WhatsApp.VerifyToken, logger)
	tripHandler := handlers.NewTripHandler(tripRepo, routeRepo, bookingRepo)
	routeHandler := handlers.NewRouteHandler(routeRepo, operatorRepo)

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": version})
	})

	router.GET("/webhook", webhookHandler.Verify)
	router.POST("/webhook", webhookHandler.Receive)

	api := router.Group("/api/v1")
	{
		api.GET("/trips", tripHandler.ListTrips)
		api.GET("/trips/:id", tripHandler.GetTrip)
		api.POST("/trips", tripHandler.CreateTrip)
		api.PATCH("/trips/:id/quota", tripHandler.UpdateQuota)
		api.GET("/routes", routeHandler.ListRoutes)
		api.POST("/routes", routeHandler.CreateRoute)
	}

	// Start HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Infof("Server listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Forced shutdown: %v", err)
	}
	logger.Info("Server stopped")
}
