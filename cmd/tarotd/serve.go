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

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	httpadapter "github.com/ArielDRighi/tarot/internal/adapters/http"
	"github.com/ArielDRighi/tarot/internal/adapters/llm/gemini"
	"github.com/ArielDRighi/tarot/internal/adapters/llm/openai"
	"github.com/ArielDRighi/tarot/internal/adapters/sqlstore"
	"github.com/ArielDRighi/tarot/internal/app"
	"github.com/ArielDRighi/tarot/internal/config"
	"github.com/ArielDRighi/tarot/internal/ports"
	"github.com/ArielDRighi/tarot/internal/telemetry"
)

const serviceName = "tarotd"

var serveSeed bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveSeed, "seed", true, "seed the catalogue on start when the database is empty")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required to serve")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.JaegerEndpoint != "" {
		tp, err := telemetry.InitTracerProvider(serviceName, cfg.JaegerEndpoint, logger)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Error("tracer shutdown error", "error", err)
			}
		}()
	}

	db, err := openDB(cfg, logger)
	if err != nil {
		return err
	}
	defer sqlstore.Close(db)

	if serveSeed {
		res, err := sqlstore.Seed(ctx, db)
		if err != nil {
			return err
		}
		if res.Decks > 0 {
			logger.Info("catalogue seeded", "decks", res.Decks, "cards", res.Cards, "spreads", res.Spreads)
		}
	}
	store := sqlstore.NewStore(db)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.NewMetrics(reg)

	gen, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		return err
	}

	interp := app.NewInterpretationService(gen, store, store, metrics, cfg.GenerationConfig(), logger)
	readings := app.NewReadingService(store, store, store, store, store, interp, cfg.PublicBaseURL)
	tarot := app.NewTarotService(store, store, store, stdRNG{})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(httpadapter.RequestIDMiddleware())
	e.Use(httpadapter.LoggingMiddleware(logger, metrics))
	e.Use(httpadapter.CORSMiddleware(cfg.CORSOrigins))

	limiter := httpadapter.NewRateLimiter(rate.Limit(cfg.GenerationRate), cfg.GenerationBurst())
	httpadapter.NewHandler(tarot, readings, interp, logger).Register(e, httpadapter.Routes{
		Auth:      httpadapter.AuthMiddleware([]byte(cfg.JWTSecret)),
		RateLimit: limiter.Middleware(),
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", "addr", cfg.HTTPAddr, "interpretation", interp.Available())
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
		return nil
	})
	return g.Wait()
}

// newGenerator returns nil when no API key is configured; the service then
// runs with interpretation disabled.
func newGenerator(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.TextGenerator, error) {
	if !cfg.LLMConfigured() {
		logger.Warn("LLM_API_KEY not configured, interpretation disabled")
		return nil, nil
	}

	httpClient := &http.Client{Timeout: cfg.LLMTimeout}
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, httpClient, cfg.LLMAPIKey, cfg.LLMBaseURL, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return openai.NewClient(httpClient, cfg.LLMAPIKey, cfg.LLMBaseURL, logger), nil
	}
}
