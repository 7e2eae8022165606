// Command speakbright is the main entry point for the SpeakBright speech
// practice server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/speakbright/speakbright/internal/analysis"
	"github.com/speakbright/speakbright/internal/api"
	"github.com/speakbright/speakbright/internal/config"
	"github.com/speakbright/speakbright/internal/exercise"
	"github.com/speakbright/speakbright/internal/feedback"
	"github.com/speakbright/speakbright/internal/health"
	"github.com/speakbright/speakbright/internal/lexicon"
	"github.com/speakbright/speakbright/internal/observe"
	"github.com/speakbright/speakbright/internal/progress"
	"github.com/speakbright/speakbright/internal/progress/postgres"
	"github.com/speakbright/speakbright/internal/resilience"
	"github.com/speakbright/speakbright/internal/scoring"
	"github.com/speakbright/speakbright/pkg/provider/acoustic"
	"github.com/speakbright/speakbright/pkg/provider/acoustic/heuristic"
	"github.com/speakbright/speakbright/pkg/provider/acoustic/speechace"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "speakbright: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "speakbright: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("speakbright starting",
		"version", version,
		"config", *configPath,
		"listen_addr", listenAddr(cfg),
		"backend", backendName(cfg),
		"store", storeName(cfg),
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "speakbright",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	metrics := observe.DefaultMetrics()

	// ── Progress store ────────────────────────────────────────────────────────
	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open progress store", "err", err)
		return 1
	}
	defer closeStore()

	// ── Analysis pipeline ─────────────────────────────────────────────────────
	lex := lexicon.New()

	backend, err := buildBackend(cfg)
	if err != nil {
		slog.Error("failed to build acoustic backend", "err", err)
		return 1
	}

	scoreOpts := []scoring.Option{scoring.WithMetrics(metrics)}
	if cfg.Acoustic.HeuristicSeed != 0 {
		scoreOpts = append(scoreOpts, scoring.WithGenerator(heuristic.New(heuristic.WithSeed(cfg.Acoustic.HeuristicSeed))))
	}
	if backend != nil {
		scoreOpts = append(scoreOpts, scoring.WithBackend(backend))
	}
	if cfg.Acoustic.Timeout > 0 {
		scoreOpts = append(scoreOpts, scoring.WithBackendTimeout(cfg.Acoustic.Timeout))
	}

	var filterOpts []feedback.FilterOption
	if cfg.Safety.WordBoundary {
		filterOpts = append(filterOpts, feedback.WithWordBoundary())
	}
	engine := feedback.NewEngine(feedback.NewFilter(filterOpts...))

	analyzer := analysis.New(
		lex,
		scoring.New(lex, scoreOpts...),
		engine,
		exercise.NewSelector(),
		progress.NewTracker(store),
		metrics,
	)

	// ── HTTP routes ───────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	api.New(analyzer, store, lex, engine).Register(mux)
	health.New(storeChecker(store)).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              listenAddr(cfg),
		Handler:           observe.Middleware(metrics)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server ready — press Ctrl+C to shut down", "addr", srv.Addr)
		if cfg.Server.TLS != nil {
			errCh <- srv.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile)
		} else {
			errCh <- srv.ListenAndServe()
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			return 1
		}
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	slog.Info("shutdown signal received, stopping…")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Wiring ──────────────────────────────────────────────────────────────────

// buildStore opens the configured progress store and returns it with a close
// function.
func buildStore(ctx context.Context, cfg *config.Config) (progress.Store, func(), error) {
	switch cfg.Progress.Store {
	case config.StoreFile:
		slog.Info("progress store opened", "kind", "file", "path", cfg.Progress.FilePath)
		return progress.NewFileStore(cfg.Progress.FilePath), func() {}, nil

	case config.StorePostgres:
		store, err := postgres.NewStore(ctx, cfg.Progress.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("progress store opened", "kind", "postgres")
		return store, store.Close, nil

	default:
		slog.Info("progress store opened", "kind", "memory")
		return progress.NewMemStore(), func() {}, nil
	}
}

// buildBackend constructs the configured acoustic backend, or nil when
// scoring should run purely on the heuristic generator. A remote backend is
// wrapped in a circuit-breaking fallback chain so outages degrade to the
// heuristic instead of failing sessions.
func buildBackend(cfg *config.Config) (acoustic.Recognizer, error) {
	switch cfg.Acoustic.Backend {
	case config.BackendSpeechAce:
		var opts []speechace.Option
		if cfg.Acoustic.BaseURL != "" {
			opts = append(opts, speechace.WithBaseURL(cfg.Acoustic.BaseURL))
		}
		client, err := speechace.New(cfg.Acoustic.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		return resilience.NewRecognizerFallback("speechace", client, resilience.BreakerConfig{
			FailureThreshold: cfg.Acoustic.Breaker.FailureThreshold,
			Cooldown:         cfg.Acoustic.Breaker.Cooldown,
		}), nil

	default:
		return nil, nil
	}
}

// storeChecker probes the progress store for the readiness endpoint.
func storeChecker(store progress.Store) health.Checker {
	return health.Checker{
		Name: "progress-store",
		Check: func(ctx context.Context) error {
			_, err := store.ReadHistory(ctx, "_readyz")
			return err
		},
	}
}

// ── Helpers ─────────────────────────────────────────────────────────────────

func listenAddr(cfg *config.Config) string {
	if cfg.Server.ListenAddr != "" {
		return cfg.Server.ListenAddr
	}
	return ":8080"
}

func backendName(cfg *config.Config) string {
	if cfg.Acoustic.Backend == "" {
		return string(config.BackendHeuristic)
	}
	return string(cfg.Acoustic.Backend)
}

func storeName(cfg *config.Config) string {
	if cfg.Progress.Store == "" {
		return string(config.StoreMemory)
	}
	return string(cfg.Progress.Store)
}

// ── Logger ──────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
