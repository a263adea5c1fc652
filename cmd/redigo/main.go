package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"

	"redigolite/envs"
	"redigolite/internal/logger"
	"redigolite/internal/redigo"
)

const (
	ENV_FILE_FLAG     = "env-file"
	HOST_FLAG         = "host"
	PORT_FLAG         = "port"
	METRICS_ADDR_FLAG = "metrics-addr"
	LOG_LEVEL_FLAG    = "log-level"
)

func main() {
	if err := newApp(run).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(action cli.ActionFunc) *cli.App {
	return &cli.App{
		Name:  "redigo",
		Usage: "in-memory key-value server speaking RESP (PING, ECHO, GET, SET [PX ms])",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  ENV_FILE_FLAG,
				Usage: "dotenv file loaded before reading the environment",
				Value: envs.DefaultEnvFile,
			},
			&cli.StringFlag{
				Name:  HOST_FLAG,
				Usage: "bind host, overrides REDIGO_HOST",
			},
			&cli.IntFlag{
				Name:  PORT_FLAG,
				Usage: "bind port, overrides REDIGO_PORT",
			},
			&cli.StringFlag{
				Name:  METRICS_ADDR_FLAG,
				Usage: "serve Prometheus metrics on this address, overrides METRICS_ADDR",
			},
			&cli.StringFlag{
				Name:  LOG_LEVEL_FLAG,
				Usage: "debug, info, warn or error, overrides LOG_LEVEL",
			},
		},
		Action: action,
	}
}

// loadConfig reads the dotenv file and the environment, then applies the
// flags the user set explicitly.
func loadConfig(c *cli.Context) (envs.Envs, error) {
	if _, err := envs.LoadEnv(c.String(ENV_FILE_FLAG)); err != nil {
		return envs.Envs{}, err
	}

	config, err := envs.Gets()
	if err != nil {
		return envs.Envs{}, err
	}

	if c.IsSet(HOST_FLAG) {
		config.RedigoHost = c.String(HOST_FLAG)
	}
	if c.IsSet(PORT_FLAG) {
		config.RedigoPort = c.Int(PORT_FLAG)
	}
	if c.IsSet(METRICS_ADDR_FLAG) {
		config.MetricsAddr = c.String(METRICS_ADDR_FLAG)
	}
	if c.IsSet(LOG_LEVEL_FLAG) {
		config.LogLevel = c.String(LOG_LEVEL_FLAG)
	}

	if err := config.Validate(); err != nil {
		return envs.Envs{}, err
	}
	return config, nil
}

func run(c *cli.Context) error {
	config, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  config.LogLevel,
		Format: config.LogFormat,
		Output: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	database := redigo.NewRedigoDB(config.StoreShardCount)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := redigo.NewMetrics(registry, database)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	if config.MetricsAddr != "" {
		go serveMetrics(ctx, log, config.MetricsAddr, registry)
	}

	server := redigo.NewServer(database,
		redigo.WithLogger(log),
		redigo.WithMetrics(metrics),
		redigo.WithLimits(config.MaxArrayLength, config.MaxBulkLength),
		redigo.WithSweepInterval(config.DataExpirationInterval),
	)

	if err := server.ListenAndServe(ctx, config.Addr()); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func serveMetrics(ctx context.Context, log *slog.Logger, addr string, gatherer prometheus.Gatherer) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", redigo.MetricsHandler(gatherer))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("metrics listening", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics server failed", "error", err)
	}
}
