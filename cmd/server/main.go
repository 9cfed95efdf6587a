package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ordermgmt-be/internal/catalog"
	"ordermgmt-be/internal/config"
	"ordermgmt-be/internal/db"
	"ordermgmt-be/internal/jobs"
	"ordermgmt-be/internal/logger"
	"ordermgmt-be/internal/metrics"
	"ordermgmt-be/internal/middleware"
	"ordermgmt-be/internal/notify"
	"ordermgmt-be/internal/order"
	"ordermgmt-be/internal/transport"

	"go.uber.org/zap"
)

var (
	initDBFunc      = db.InitDB
	startServerFunc = serve
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	if cfg.DBDriver == db.DriverSQLite {
		if err := db.Migrate(database, "up", cfg.MigrationsDir); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}

	app, err := newServer(cfg, database)
	if err != nil {
		return err
	}
	defer app.Close()

	logger.L().Info("order server running",
		zap.String("port", cfg.AppPort),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("sequence_strategy", cfg.SequenceStrategy),
	)
	return startServerFunc(":"+cfg.AppPort, app)
}

// application is the wired HTTP handler plus everything that must be shut
// down with it.
type application struct {
	handler http.Handler
	closers []func()
}

func (a *application) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// Close releases resources in reverse order of creation.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newServer(cfg *config.Config, database *sql.DB) (*application, error) {
	app := &application{}
	log := logger.L()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warn("unknown ORDER_TIMEZONE, using UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.UTC
	}

	allocator, err := order.NewAllocator(cfg.SequenceStrategy)
	if err != nil {
		return nil, err
	}

	hub := notify.NewHub()
	app.closers = append(app.closers, hub.Close)
	publishers := notify.Multi{hub}

	if cfg.KafkaBrokers != "" {
		kp := notify.NewKafkaPublisher(notify.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaOrderTopic))
		publishers = append(publishers, kp)
		app.closers = append(app.closers, func() {
			if err := kp.Close(); err != nil {
				log.Error("failed to close kafka writer", zap.Error(err))
			}
		})
	}
	if cfg.RedisAddr != "" {
		client := notify.NewRedisClient(cfg.RedisAddr)
		publishers = append(publishers, notify.NewRedisPublisher(client, cfg.RedisChannel))
		app.closers = append(app.closers, func() { _ = client.Close() })
	}

	registry := metrics.NewRegistry()

	var repoOpts []order.RepositoryOption
	if cfg.DBDriver == db.DriverSQLite {
		repoOpts = append(repoOpts, order.WithoutRowLocks())
	}
	orderRepo := order.NewRepository(database, allocator, repoOpts...)
	orderSvc := order.NewService(orderRepo,
		order.WithPublisher(publishers),
		order.WithRecorder(registry),
		order.WithLocation(loc),
		order.WithRetries(cfg.CreateRetries),
	)

	catalogSvc := catalog.NewService(catalog.NewRepository(database))

	pruneJob := jobs.NewSequencePruneJob(orderRepo, cfg.SequencePruneSchedule, cfg.SequenceRetentionDays, loc)
	if err := pruneJob.Start(); err != nil {
		app.Close()
		return nil, err
	}
	app.closers = append(app.closers, pruneJob.Stop)

	limiter := middleware.NewRateLimiter(cfg.InternalSecretKey)
	limiter.StartCleanup(time.Minute)
	app.closers = append(app.closers, limiter.Stop)

	app.handler = transport.NewRouter(transport.NewServer(orderSvc, catalogSvc), transport.Options{
		Limiter:     limiter,
		Metrics:     registry,
		Events:      hub,
		CORSOrigins: cfg.CORSOrigins,
		PublicDir:   cfg.PublicDir,
	})
	return app, nil
}

// serve runs the HTTP server until SIGINT/SIGTERM, then drains it.
func serve(addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
