// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/eventhub/internal/auth"
	"github.com/Shivanand-hulikatti/eventhub/internal/config"
	"github.com/Shivanand-hulikatti/eventhub/internal/database"
	"github.com/Shivanand-hulikatti/eventhub/internal/handler"
	"github.com/Shivanand-hulikatti/eventhub/internal/kvstore"
	"github.com/Shivanand-hulikatti/eventhub/internal/logger"
	"github.com/Shivanand-hulikatti/eventhub/internal/metrics"
	"github.com/Shivanand-hulikatti/eventhub/internal/service"
	"github.com/Shivanand-hulikatti/eventhub/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to a config file or directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("eventhub stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	// ── 1. Open durable storage ──────────────────────────────────────────
	kv, closeKV, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeKV()
	kv = kvstore.Prefixed(kv, cfg.Storage.KeyPrefix)

	// ── 2. Load the store ────────────────────────────────────────────────
	st := store.New(kv, auth.NewSimulated(cfg.Auth.Delay),
		store.WithLogger(log.WithField("component", "store")),
		store.WithResetOnLogin(cfg.Booking.ResetOnLogin),
	)
	if err := st.Load(ctx); err != nil {
		return fmt.Errorf("load store: %w", err)
	}
	defer st.Dispose()

	// ── 3. Wire up layers ────────────────────────────────────────────────
	m := metrics.New(prometheus.DefaultRegisterer)
	svc := service.NewBookingService(service.Config{
		ServiceFee:           cfg.Booking.ServiceFee,
		MaxTicketsPerBooking: cfg.Booking.MaxTicketsPerBooking,
	}, m, log.WithField("component", "service"))
	h := handler.NewHandler(svc, log.WithField("component", "handler"))
	router := handler.NewRouter(h, st, m, prometheus.DefaultGatherer, log.WithField("component", "http"))

	// ── 4. Start server with graceful shutdown ───────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"port":    cfg.Server.Port,
			"storage": cfg.Storage.Driver,
		}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// openStorage connects the configured key-value backend. The returned func
// releases it.
func openStorage(ctx context.Context, cfg *config.Config, log *logrus.Logger) (kvstore.Store, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverRedis:
		client := kvstore.NewRedisClient(cfg.Redis)
		kv, err := kvstore.NewRedis(ctx, client)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		log.WithField("addr", cfg.Redis.Addr).Info("connected to redis")
		return kv, func() { _ = client.Close() }, nil

	case config.DriverPostgres:
		pool, err := database.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		if err := database.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.WithField("host", cfg.Database.Host).Info("connected to postgres")
		return kvstore.NewPostgres(pool), pool.Close, nil

	default:
		log.Warn("using in-memory storage; state is lost on restart")
		return kvstore.NewMemory(), func() {}, nil
	}
}
