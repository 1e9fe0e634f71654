package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fleshka4/pair-explorer/internal/config"
	"github.com/fleshka4/pair-explorer/internal/infra/multicall"
	"github.com/fleshka4/pair-explorer/internal/infra/provider"
	"github.com/fleshka4/pair-explorer/internal/metrics"
	"github.com/fleshka4/pair-explorer/internal/service"
	"github.com/fleshka4/pair-explorer/internal/session"
	transporthttp "github.com/fleshka4/pair-explorer/internal/transport/http"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "cfg/config.yaml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config.Load: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("newLogger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	mode, err := multicall.ParseMode(cfg.MulticallMode)
	if err != nil {
		return err
	}
	policy, err := session.ParsePolicy(cfg.OverlapPolicy)
	if err != nil {
		return err
	}

	if cfg.RPCURL == "" {
		logger.Warn("rpc_url is not configured, fetches will fail until it is set")
	}
	if cfg.MulticallAddress == "" {
		logger.Warn("multicall_address is not configured, fetches will fail until it is set")
	}

	dialer := provider.NewDialer(cfg.RPCURL, cfg.DialTimeout, logger.Named("provider"))
	defer dialer.Close()

	svc, err := service.NewPairService(dialer, cfg.MulticallAddress,
		service.WithMode(mode),
		service.WithLogger(logger.Named("service")),
		service.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	events := session.NewBroadcaster()
	sess := session.New(svc,
		session.WithPolicy(policy),
		session.WithLogger(logger.Named("session")),
		session.WithOnChange(events.Publish),
	)

	srv, err := transporthttp.NewServer(svc, sess, cfg,
		transporthttp.WithLogger(logger.Named("http")),
		transporthttp.WithGatherer(reg),
		transporthttp.WithEvents(events),
	)
	if err != nil {
		return err
	}

	logger.Info("starting pair explorer",
		zap.String("listen_addr", cfg.ListenAddr),
		zap.String("multicall_mode", string(mode)),
		zap.Stringer("overlap_policy", policy),
	)
	return srv.ListenAndServe(ctx, cfg.ListenAddr)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
