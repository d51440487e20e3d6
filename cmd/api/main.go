package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aufwind/aufwind-backend/internal/config"
	"github.com/aufwind/aufwind-backend/internal/domain"
	"github.com/aufwind/aufwind-backend/internal/events"
	"github.com/aufwind/aufwind-backend/internal/handler"
	"github.com/aufwind/aufwind-backend/internal/middleware"
	"github.com/aufwind/aufwind-backend/internal/repository/postgres"
	"github.com/aufwind/aufwind-backend/internal/repository/storage"
	"github.com/aufwind/aufwind-backend/internal/service"
	"github.com/aufwind/aufwind-backend/internal/websocket"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	customerRepo := postgres.NewCustomerRepository(pool)
	membershipRepo := postgres.NewMembershipRepository(pool)
	transactionRepo := postgres.NewPointTransactionRepository(pool)
	moduleRepo := postgres.NewModuleRepository(pool)

	// Statement archive (optional)
	var archiver domain.StatementArchiver
	if cfg.S3.Bucket != "" {
		s3Archive, err := storage.NewS3StatementArchive(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize statement archive")
		}
		archiver = s3Archive
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Statement archive enabled")
	}

	// Ledger event publishing (optional)
	var eventPublisher events.Publisher = events.NoopPublisher{}
	if cfg.AMQP.URL != "" {
		client, err := events.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to message broker")
		}
		defer client.Close()
		eventPublisher = client
		log.Info().Str("exchange", cfg.AMQP.Exchange).Msg("Ledger event publishing enabled")
	}

	// WebSocket hub
	hub := websocket.NewHub()

	// Initialize services
	locks := service.NewCustomerLocks()
	defer locks.Stop()
	cache := service.NewSnapshotCache()
	rolloverService := service.NewRolloverService(membershipRepo, transactionRepo, archiver, locks, cache, eventPublisher, hub)
	customerService := service.NewCustomerService(customerRepo, membershipRepo)
	membershipService := service.NewMembershipService(membershipRepo, transactionRepo, rolloverService, locks, cache, eventPublisher, hub)
	pointService := service.NewPointService(transactionRepo, membershipRepo, moduleRepo, rolloverService, locks, cache, eventPublisher, hub)
	reportService := service.NewReportService(transactionRepo, membershipRepo)
	moduleService := service.NewModuleService(moduleRepo, customerRepo)

	// Initialize auth middleware; the customer service resolves auth subjects
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, customerService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}

	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// WebSocket token validation
	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience, customerService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create WebSocket validator")
	}

	// Initialize handlers
	customerHandler := handler.NewCustomerHandler(customerService)
	membershipHandler := handler.NewMembershipHandler(membershipService)
	pointHandler := handler.NewPointHandler(pointService)
	reportHandler := handler.NewReportHandler(reportService)
	moduleHandler := handler.NewModuleHandler(moduleService)
	wsHandler := handler.NewWebSocketHandler(hub, wsValidator, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, customerHandler, membershipHandler, pointHandler, reportHandler, moduleHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
