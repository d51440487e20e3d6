package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aufwind/aufwind-backend/internal/config"
	"github.com/aufwind/aufwind-backend/internal/domain"
	"github.com/aufwind/aufwind-backend/internal/events"
	"github.com/aufwind/aufwind-backend/internal/repository/postgres"
	"github.com/aufwind/aufwind-backend/internal/repository/storage"
	"github.com/aufwind/aufwind-backend/internal/service"
	"github.com/aufwind/aufwind-backend/internal/websocket"
)

// The sweeper rolls every overdue billing window forward on a fixed
// interval. The API rolls lazily on access, so the sweeper only matters for
// memberships nobody reads; both paths share the same rollover service and
// the version check keeps concurrent rolls safe.
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	membershipRepo := postgres.NewMembershipRepository(pool)
	transactionRepo := postgres.NewPointTransactionRepository(pool)

	var archiver domain.StatementArchiver
	if cfg.S3.Bucket != "" {
		s3Archive, err := storage.NewS3StatementArchive(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize statement archive")
		}
		archiver = s3Archive
	}

	var eventPublisher events.Publisher = events.NoopPublisher{}
	if cfg.AMQP.URL != "" {
		client, err := events.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to message broker")
		}
		defer client.Close()
		eventPublisher = client
	}

	locks := service.NewCustomerLocks()
	defer locks.Stop()

	rollover := service.NewRolloverService(
		membershipRepo,
		transactionRepo,
		archiver,
		locks,
		service.NewSnapshotCache(),
		eventPublisher,
		&websocket.NoOpPublisher{},
	)

	log.Info().Dur("interval", cfg.SweepInterval).Msg("Starting period sweeper")

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sweep := func() {
		rolled, err := rollover.RollAllDue(time.Now().UTC())
		if err != nil {
			log.Error().Err(err).Msg("Sweep failed")
			return
		}
		if rolled > 0 {
			log.Info().Int("rolled", rolled).Msg("Sweep rolled overdue periods")
		}
	}

	// Catch up immediately on start, then on every tick
	sweep()

	for {
		select {
		case <-ticker.C:
			sweep()
		case <-quit:
			log.Info().Msg("Sweeper exited")
			return
		}
	}
}
