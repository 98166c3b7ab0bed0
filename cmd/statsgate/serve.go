package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arenalytics/statsgate/pkg/config"
	"github.com/arenalytics/statsgate/pkg/logging"
	"github.com/arenalytics/statsgate/pkg/query"
	"github.com/arenalytics/statsgate/pkg/ratelimit"
	"github.com/arenalytics/statsgate/pkg/server"
)

const (
	sweepInterval    = time.Minute
	redisPingTimeout = 3 * time.Second
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the analytics gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logCfg := logging.DefaultConfig()
			logCfg.Level = logging.LogLevel(cfg.Log.Level)
			logCfg.Pretty = cfg.Log.Pretty
			logger := logging.Setup(logCfg)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store := newQuotaStore(ctx, cfg, logger)

			executor, err := query.OpenSQLite(ctx, cfg.Upstream.DSN)
			if err != nil {
				return fmt.Errorf("open event store: %w", err)
			}
			defer func() { _ = executor.Close() }()

			throttled := query.Throttle(executor, cfg.Upstream.MaxQPS, cfg.Upstream.Burst)

			srv := server.New(cfg, store, throttled)
			srv.StartSweepers(ctx, sweepInterval)

			httpServer := &http.Server{
				Addr:         cfg.Listen,
				Handler:      srv.Handler(),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", cfg.Listen).Msg("gateway listening")
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("serve: %w", err)
			case <-ctx.Done():
			}

			logger.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", getEnv("STATSGATE_CONFIG", "statsgate.yaml"), "path to config file")
	return cmd
}

// newQuotaStore connects to Redis when configured and reachable, otherwise
// falls back to the process-local store so the gateway still serves.
// Without Redis, quota windows are tracked per instance, not fleet-wide.
func newQuotaStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) ratelimit.Store {
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			logger.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis quota store")
			return ratelimit.NewRedisStore(client)
		}

		logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, using in-process quota store")
		_ = client.Close()
	}

	memory := ratelimit.NewMemoryStore()
	memory.StartJanitor(ctx, sweepInterval)
	return memory
}
