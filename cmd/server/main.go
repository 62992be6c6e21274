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
	"github.com/sirupsen/logrus"

	"github.com/busline/booking-backend/internal/config"
	"github.com/busline/booking-backend/internal/database"
	"github.com/busline/booking-backend/internal/handlers"
	"github.com/busline/booking-backend/internal/middleware"
	"github.com/busline/booking-backend/internal/services"
	"github.com/busline/booking-backend/pkg/jwt"
	"github.com/busline/booking-backend/pkg/vnpay"
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

	logger.Info("Starting Busline Booking Backend")
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

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize repositories
	routeRepository := database.NewRouteRepository(db)
	busRepository := database.NewBusRepository(db)
	scheduleRepository := database.NewScheduleRepository(db)
	userRepository := database.NewUserRepository(db)
	ticketRepository := database.NewTicketRepository(db, scheduleRepository)
	paymentAuditRepository := database.NewPaymentAuditRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	gateway := vnpay.New(vnpay.Config{
		TmnCode:    cfg.Payment.TmnCode,
		HashSecret: cfg.Payment.HashSecret,
		BaseURL:    cfg.Payment.BaseURL,
		ReturnURL:  cfg.Payment.ReturnURL,
		Locale:     cfg.Payment.Locale,
		OrderType:  cfg.Payment.OrderType,
	})

	topologyService := services.NewSeatTopologyService(busRepository, routeRepository, logger)
	fleetService := services.NewFleetService(routeRepository, busRepository, logger)
	capacityService := services.NewCapacityService(scheduleRepository, routeRepository, busRepository, logger)
	ticketService := services.NewTicketService(ticketRepository, scheduleRepository, busRepository, topologyService, logger)
	pdfService := services.NewTicketPDFService(ticketRepository, busRepository, userRepository, logger)
	userService := services.NewUserService(userRepository, jwtService, cfg.Security.BcryptCost, logger)
	orchestrator := services.NewBookingOrchestratorService(
		ticketService,
		ticketRepository,
		scheduleRepository,
		busRepository,
		topologyService,
		paymentAuditRepository,
		gateway,
		logger,
	)
	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	routeHandler := handlers.NewRouteHandler(fleetService, topologyService)
	busHandler := handlers.NewBusHandler(fleetService)
	scheduleHandler := handlers.NewScheduleHandler(capacityService, topologyService)
	bookingHandler := handlers.NewBookingHandler(orchestrator)
	ticketHandler := handlers.NewTicketHandler(ticketService, pdfService)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Route administration (protected)
		routes := v1.Group("/routes")
		{
			// Public pricing surface
			routes.GET("/:id", routeHandler.Get)
			routes.GET("/:id/from-price", routeHandler.FromPrice)

			routesProtected := routes.Group("")
			routesProtected.Use(middleware.AuthMiddleware(jwtService))
			{
				routesProtected.POST("", routeHandler.Create)
				routesProtected.PATCH("/:id/price", routeHandler.UpdateBaseFare)
				routesProtected.PUT("/:id/seat-type-prices", routeHandler.UpsertSeatTypePrice)
				routesProtected.DELETE("/:id", routeHandler.Delete)
			}
		}

		// Bus and seat inventory (protected)
		buses := v1.Group("/buses")
		buses.Use(middleware.AuthMiddleware(jwtService))
		{
			buses.POST("", busHandler.Create)
			buses.GET("/:id", busHandler.Get)
			buses.POST("/:id/seats", busHandler.AddSeat)
			buses.GET("/:id/seats", busHandler.ListSeats)
		}

		// Schedules
		schedules := v1.Group("/schedules")
		{
			// Public: browse a schedule and its seat map
			schedules.GET("/:id", scheduleHandler.Get)
			schedules.GET("/:id/seats", scheduleHandler.SeatMap)

			schedulesProtected := schedules.Group("")
			schedulesProtected.Use(middleware.AuthMiddleware(jwtService))
			{
				schedulesProtected.POST("", scheduleHandler.Create)
				schedulesProtected.POST("/:id/cancel", scheduleHandler.Cancel)
			}
		}

		// Booking flow
		bookings := v1.Group("/bookings")
		{
			// Public: price a seat before committing
			bookings.GET("/quote", bookingHandler.Quote)

			bookingsProtected := bookings.Group("")
			bookingsProtected.Use(middleware.AuthMiddleware(jwtService))
			{
				bookingsProtected.POST("", bookingHandler.Initiate)
			}
		}

		// Gateway return redirect. Unauthenticated: the browser arrives here
		// from the gateway, and the HMAC signature is the trust boundary.
		v1.GET("/payments/callback", bookingHandler.Callback)

		// Tickets
		tickets := v1.Group("/tickets")
		{
			// Public code+phone lookup for passengers without a session
			tickets.GET("/lookup", ticketHandler.Lookup)

			ticketsProtected := tickets.Group("")
			ticketsProtected.Use(middleware.AuthMiddleware(jwtService))
			{
				ticketsProtected.GET("/:id", ticketHandler.Get)
				ticketsProtected.POST("/:id/cancel", ticketHandler.Cancel)
				ticketsProtected.GET("/:id/pdf", ticketHandler.Download)
				ticketsProtected.GET("/:id/payments", bookingHandler.PaymentTrail)
			}
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
