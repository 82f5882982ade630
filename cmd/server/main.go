package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cx-tal-miterani/flight-pricing/internal/activities"
	"github.com/cx-tal-miterani/flight-pricing/internal/booking"
	"github.com/cx-tal-miterani/flight-pricing/internal/config"
	"github.com/cx-tal-miterani/flight-pricing/internal/database"
	"github.com/cx-tal-miterani/flight-pricing/internal/feed"
	"github.com/cx-tal-miterani/flight-pricing/internal/handlers"
	"github.com/cx-tal-miterani/flight-pricing/internal/inventory"
	"github.com/cx-tal-miterani/flight-pricing/internal/models"
	"github.com/cx-tal-miterani/flight-pricing/internal/pricing"
	"github.com/cx-tal-miterani/flight-pricing/internal/queue"
	"github.com/cx-tal-miterani/flight-pricing/internal/router"
	"github.com/cx-tal-miterani/flight-pricing/internal/schedule"
	"github.com/cx-tal-miterani/flight-pricing/internal/service"
	"github.com/cx-tal-miterani/flight-pricing/internal/simulator"
	"github.com/cx-tal-miterani/flight-pricing/internal/websocket"
	"github.com/cx-tal-miterani/flight-pricing/internal/workflows"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seed := cfg.SeedRandom
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// Optional Postgres archive and seed source
	var repo *database.Repository
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		repo = database.NewRepository(pool)
		logger.Info("connected to postgres")
	}

	flights, err := loadFlights(ctx, repo, rand.New(rand.NewSource(seed)), cfg.SeedDaysAhead, logger)
	if err != nil {
		return err
	}

	store := inventory.NewStore()
	for _, f := range flights {
		if err := store.AddFlight(f); err != nil {
			return fmt.Errorf("failed to load flight %s: %w", f.ID, err)
		}
	}
	engine := pricing.NewEngine()
	logger.Info("flight inventory loaded", "flights", store.Len(), "seed", seed)

	// Fare fan-out: websocket subscribers, Redis, Postgres archive
	hub := websocket.NewHub(func(id string) bool {
		_, ok := store.GetFlightByID(id)
		return ok
	}, logger)
	go hub.Run(ctx)

	fares := feed.NewMultiPublisher(hub)
	if cfg.RedisAddr != "" {
		rdb, err := feed.NewRedisClient(ctx, feed.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TLS:      cfg.RedisTLS,
		})
		if err != nil {
			logger.Warn("redis unavailable, fare pub/sub disabled", "error", err)
		} else {
			defer rdb.Close()
			fares.Add(feed.NewRedisPublisher(rdb))
			logger.Info("connected to redis", "addr", cfg.RedisAddr)
		}
	}
	if repo != nil {
		fares.Add(repo)
	}

	var events booking.EventPublisher
	if cfg.RabbitMQURL != "" {
		pub, err := queue.Dial(cfg.RabbitMQURL, logger)
		if err != nil {
			logger.Warn("rabbitmq unavailable, booking events disabled", "error", err)
		} else {
			defer pub.Close()
			events = pub
			logger.Info("connected to rabbitmq")
		}
	}

	desk := booking.NewDesk(store, engine, events, fares, logger)

	// Bookings run through Temporal when a host is configured
	var booker service.SeatBooker = desk
	if cfg.TemporalHost != "" {
		temporalClient, err := client.Dial(client.Options{
			HostPort: cfg.TemporalHost,
		})
		if err != nil {
			return fmt.Errorf("failed to create Temporal client: %w", err)
		}
		defer temporalClient.Close()

		w := newWorker(temporalClient, cfg.TemporalTaskQueue, activities.NewActivities(desk))
		if err := w.Start(); err != nil {
			return fmt.Errorf("failed to start Temporal worker: %w", err)
		}
		defer w.Stop()

		booker = service.NewTemporalBooker(temporalClient, cfg.TemporalTaskQueue)
		logger.Info("connected to Temporal server", "host", cfg.TemporalHost, "taskQueue", cfg.TemporalTaskQueue)
	}

	flightService := service.NewFlightService(store, engine, booker)
	h := handlers.NewHandler(flightService)

	sim := simulator.New(store, engine, simulator.Options{
		Interval:  cfg.SimulatorInterval,
		Rand:      rand.New(rand.NewSource(seed + 1)),
		Publisher: fares,
		Logger:    logger,
	})
	if cfg.SimulatorEnabled {
		sim.Start(ctx)
		defer sim.Stop()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.SetupRouter(h, hub, cfg.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("API server starting", "port", cfg.APIPort, "simulator", cfg.SimulatorEnabled, "interval", cfg.SimulatorInterval)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// loadFlights reads the schedule from Postgres, generating and saving a fresh
// one when the database is empty or not configured.
func loadFlights(ctx context.Context, repo *database.Repository, rng *rand.Rand, daysAhead int, logger *slog.Logger) ([]models.Flight, error) {
	now := time.Now()
	if repo != nil {
		flights, err := repo.LoadFlights(ctx, now)
		if err != nil {
			return nil, err
		}
		if len(flights) > 0 {
			logger.Info("loaded schedule from postgres", "flights", len(flights))
			return flights, nil
		}
	}

	flights := schedule.Generate(rng, now, daysAhead)
	if repo != nil {
		if err := repo.SaveFlights(ctx, flights); err != nil {
			return nil, err
		}
	}
	return flights, nil
}

func newWorker(c client.Client, taskQueue string, acts *activities.Activities) worker.Worker {
	w := worker.New(c, taskQueue, worker.Options{})

	w.RegisterWorkflowWithOptions(workflows.SeatBookingWorkflow, workflow.RegisterOptions{Name: workflows.SeatBookingWorkflowName})

	w.RegisterActivityWithOptions(acts.ReserveSeat, activity.RegisterOptions{Name: activities.ReserveSeatName})
	w.RegisterActivityWithOptions(acts.ConfirmBooking, activity.RegisterOptions{Name: activities.ConfirmBookingName})
	w.RegisterActivityWithOptions(acts.ReleaseSeat, activity.RegisterOptions{Name: activities.ReleaseSeatName})

	return w
}
