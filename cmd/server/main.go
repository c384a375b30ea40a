package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/miravision/website/internal/api/handlers"
	"github.com/miravision/website/internal/config"
	"github.com/miravision/website/internal/logging"
	"github.com/miravision/website/internal/metrics"
	"github.com/miravision/website/internal/ratelimit"
	"github.com/miravision/website/internal/server"
	"github.com/miravision/website/internal/server/routes"
	"github.com/miravision/website/internal/telemetry"
	"github.com/miravision/website/internal/version"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "MiraVision contact API",
	Long: `Serves POST /api/contact for the MiraVision website and relays
submissions to the studio inbox over SMTP.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Port = port
		}
		return run(cmd.Context(), cfg)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Info())
	},
}

// newLogger builds the rotating file logger described by cfg.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	logger, err := logging.NewLogger(&logging.Config{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
		Requests:   cfg.LogRequests,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	logger.Info("Starting contact API %s in %s mode", version.Info(), cfg.Environment)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    routes.ServiceName,
		ServiceVersion: version.Version,
		Endpoint:       cfg.OTLPEndpoint,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("Failed to flush traces: %v", err)
		}
	}()

	deps := server.Dependencies{Ready: map[string]handlers.Pinger{}}
	if cfg.MetricsEnabled {
		deps.Metrics = metrics.New()
	}

	var store ratelimit.Store
	switch cfg.RateLimit.Backend {
	case "redis":
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		deps.Ready["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		store = ratelimit.NewRedisStore(rdb, cfg.RateLimit.Window, nil)
		logger.Info("Rate limiting via redis at %s", cfg.Redis.Addr)
	default:
		store = ratelimit.NewMemoryStore(cfg.RateLimit.Window, nil)
		logger.Info("Rate limiting in memory (per instance)")
	}
	deps.Limiter = ratelimit.NewLimiter(store, cfg.RateLimit.Max)

	srv, err := server.NewServer(cfg, logger, deps)
	if err != nil {
		return err
	}

	sweeper := ratelimit.NewSweeper(store, cfg.RateLimit.Window, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error { return sweeper.Run(gctx) })

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error: %v", err)
		return err
	}
	logger.Info("Server stopped")
	return nil
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Flags().String("port", "", "Port to listen on (overrides API_PORT)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
