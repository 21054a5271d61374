package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"lyricdeck/internal/app/presenter"
	"lyricdeck/internal/auth"
	"lyricdeck/internal/config"
	"lyricdeck/internal/httpapi"
	"lyricdeck/internal/logging"
	"lyricdeck/internal/model"
	"lyricdeck/internal/realtime"
	"lyricdeck/internal/store"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var skipMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the presentation API and display websocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := logging.New(logging.Config{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Output: os.Stdout,
			})
			logging.SetGlobalLogger(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := serve(ctx, cfg, logger, !skipMigrate); err != nil {
				logger.Error(err, "server stopped")
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply pending migrations on startup")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *logging.Logger, migrate bool) error {
	st, closeStore, err := openStore(ctx, cfg, logger, migrate)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.Server.StateFile != "" {
		if err := seedStore(ctx, st, cfg.Server.StateFile, logger); err != nil {
			return err
		}
	}

	hub := realtime.NewHub(logger)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	var publisher presenter.Publisher = hub
	if cfg.Redis.URL != "" {
		broker, closeRedis, err := startBroker(ctx, cfg.Redis.URL, hub, logger)
		if err != nil {
			return err
		}
		defer closeRedis()
		publisher = broker
	}

	svc, err := presenter.Open(ctx, st, publisher, logger)
	if err != nil {
		return err
	}

	authenticator := auth.New(cfg.Security.OperatorPasswordHash, []byte(cfg.Security.JWTSecret), cfg.Security.JWTTTL)
	if !authenticator.Enabled() {
		logger.Warn("OPERATOR_PASSWORD_HASH is not set, editing is open to every client")
	}

	api := httpapi.New(svc, authenticator, realtime.ServeWS(hub, cfg.CORS.AllowedOrigins), logger)
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Routes(cfg.CORS.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Zerolog().Info().Str("addr", cfg.Server.Addr).Msg("lyricdeck listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	stopHub()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStore returns the Postgres store when DATABASE_URL is set and an
// in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.Config, logger *logging.Logger, migrate bool) (presenter.Store, func(), error) {
	if cfg.Database.URL == "" {
		logger.Warn("DATABASE_URL is not set, state is kept in memory")
		return store.NewMemoryStore(nil), func() {}, nil
	}

	db, err := openDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	if migrate {
		if err := store.Migrate(db, store.Up); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}
	return store.New(db), func() { _ = db.Close() }, nil
}

// seedStore loads a state export into a store that holds no songs yet.
func seedStore(ctx context.Context, st presenter.Store, path string, logger *logging.Logger) error {
	current, err := st.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if current.SongCount() > 0 {
		logger.Zerolog().Info().Str("file", path).Msg("store already has songs, skipping seed")
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read state file: %w", err)
	}
	seed := &model.State{}
	if err := json.Unmarshal(raw, seed); err != nil {
		return fmt.Errorf("decode state file %s: %w", path, err)
	}
	if err := st.Save(ctx, seed); err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	logger.Zerolog().Info().Str("file", path).Int("songs", seed.SongCount()).Msg("seeded state")
	return nil
}

func startBroker(ctx context.Context, url string, hub *realtime.Hub, logger *logging.Logger) (*realtime.RedisBroker, func(), error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	broker := realtime.NewRedisBroker(rdb, hub)
	listenCtx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if err := broker.Listen(listenCtx); err != nil {
			logger.Error(err, "redis relay stopped")
		}
	}()

	select {
	case <-broker.Ready():
	case <-stopped:
		cancel()
		_ = rdb.Close()
		return nil, nil, errors.New("redis relay stopped before subscribing")
	case <-ctx.Done():
		cancel()
		_ = rdb.Close()
		return nil, nil, ctx.Err()
	}
	return broker, func() {
		cancel()
		_ = rdb.Close()
	}, nil
}
