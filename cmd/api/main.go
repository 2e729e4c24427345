// Command api runs the news-thread HTTP service: it turns a news
// article URL (or pasted text) into a ready-to-post social thread,
// with SSRF-gated fetching, abuse control, and a pluggable LLM writer.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	hhttp "news-thread/internal/handler/http"
	"news-thread/internal/infra/extractor"
	"news-thread/internal/infra/fetcher"
	"news-thread/internal/infra/threadwriter"
	"news-thread/internal/observability/logging"
	"news-thread/internal/security/ssrf"
	"news-thread/internal/usecase/generate"
	"news-thread/pkg/abuse"
	"news-thread/pkg/config"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	fetchCfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Error("invalid fetch configuration", slog.Any("error", err))
		os.Exit(1)
	}

	extractCfg := extractor.LoadConfigFromEnv()
	if err := extractCfg.Validate(); err != nil {
		logger.Error("invalid extraction configuration", slog.Any("error", err))
		os.Exit(1)
	}

	abuseCfg := abuse.LoadConfigFromEnv()
	if err := abuseCfg.Validate(); err != nil {
		logger.Error("invalid abuse-control configuration", slog.Any("error", err))
		os.Exit(1)
	}

	writerCfg := threadwriter.LoadConfigFromEnv()
	if err := writerCfg.Validate(); err != nil {
		logger.Error("invalid thread writer configuration", slog.Any("error", err))
		os.Exit(1)
	}

	guard, store := initAbuseControl(logger, abuseCfg)

	service := generate.NewService(
		guard,
		fetcher.New(ssrf.NewGate(nil), fetchCfg),
		extractor.New(extractCfg, logger),
		threadwriter.NewFromEnv(writerCfg),
		writerCfg.Model,
		logger,
	)

	handler := hhttp.NewRouter(hhttp.RouterConfig{
		Service:  service,
		Store:    store,
		Provider: writerCfg.Provider,
		Logger:   logger,
	})

	runServer(logger, handler)
}

// initAbuseControl wires the guard to Redis when REDIS_ADDRESS is set.
// Without it, or when the initial connection fails, the guard runs
// fail-open with no shared store rather than blocking startup.
func initAbuseControl(logger *slog.Logger, cfg abuse.Config) (*abuse.Guard, hhttp.Pinger) {
	redisCfg := abuse.LoadRedisConfigFromEnv()
	client, err := abuse.NewRedisClient(redisCfg)
	if err != nil {
		if errors.Is(err, abuse.ErrEmptyAddress) {
			logger.Warn("REDIS_ADDRESS not set, abuse control runs fail-open")
		} else {
			logger.Error("redis unavailable, abuse control runs fail-open", slog.Any("error", err))
		}
		return abuse.NewGuard(nil, cfg, logger), nil
	}

	store := abuse.NewRedisStore(client)
	return abuse.NewGuard(store, cfg, logger), store
}

// runServer starts the HTTP server and blocks until SIGINT or SIGTERM,
// then drains in-flight requests before exiting.
func runServer(logger *slog.Logger, handler http.Handler) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := config.GetEnvString("LISTEN_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
