// Package main is the entry point for the envelope gateway. It wires all
// dependencies using samber/do v2, starts the HTTP server in front of the
// upstream application, and handles graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"

	adapthttp "github.com/jsamuelsen11/go-envelope-gateway/internal/adapters/http"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/adapters/http/middleware"

	"github.com/jsamuelsen11/go-envelope-gateway/internal/adapters/clients/upstream"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/envelope"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/platform/config"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/platform/health"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/platform/httpclient"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/platform/logging"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/platform/telemetry"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/ports"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	serverShutdownTimeout = 15 * time.Second
	otelShutdownTimeout   = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		return errors.New("APP_PROFILE environment variable is required (e.g. local, dev, qa, prod)")
	}

	// Bootstrap: config, logger, telemetry. APP_CONFIG_DIR relocates the
	// YAML files (e.g. a mounted volume); empty keeps config.DefaultDir.
	cfg, err := config.Load(profile, config.WithConfigDir(os.Getenv("APP_CONFIG_DIR")))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx := context.Background()
	otel, err := initTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, otel.metrics)
	registerDependencies(injector, cfg, logger, otel.scrape)

	server, err := do.Invoke[*adapthttp.Server](injector)
	if err != nil {
		return fmt.Errorf("resolving server: %w", err)
	}

	logger.Info("proxying to upstream",
		slog.String("base_url", cfg.Upstream.BaseURL),
		slog.Bool("expose_errors", cfg.Envelope.ExposeErrors),
		slog.Duration("request_timeout", cfg.Server.RequestTimeout),
	)

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	served := make(chan error, 1)
	go func() { served <- server.Start() }()

	select {
	case <-sigCtx.Done():
		logger.Info("received shutdown signal")
	case err := <-served:
		return fmt.Errorf("server failed: %w", err)
	}

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancelDrain()
	if err := server.Shutdown(drainCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}
	<-served

	flushCtx, cancelFlush := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer cancelFlush()
	if err := otel.Shutdown(flushCtx); err != nil {
		logger.Error("telemetry shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}

// otelProviders bundles OpenTelemetry provider lifecycle. All fields are nil
// when telemetry is disabled; scrape is set only for the prometheus exporter.
type otelProviders struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *telemetry.Metrics
	scrape  nethttp.Handler
}

// Shutdown flushes both providers. Nil-safe.
func (o *otelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meter != nil {
		if err := o.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*otelProviders, error) {
	if !cfg.Telemetry.Enabled {
		return &otelProviders{}, nil
	}

	tp, err := telemetry.InitTracer(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	mp, scrape, err := telemetry.InitMeter(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	metrics, err := telemetry.NewMetrics(mp)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	return &otelProviders{
		tracer:  tp,
		meter:   mp,
		metrics: metrics,
		scrape:  scrape,
	}, nil
}

func registerDependencies(injector *do.RootScope, cfg *config.Config, logger *slog.Logger, scrape nethttp.Handler) {
	do.Provide(injector, func(i do.Injector) (*httpclient.Client, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return httpclient.New(&cfg.Upstream, "upstream", metrics, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (*upstream.Forwarder, error) {
		client := do.MustInvoke[*httpclient.Client](i)
		return upstream.NewForwarder(client, cfg.Upstream.MaxResponseSize)
	})

	do.Provide(injector, func(i do.Injector) (ports.Upstream, error) {
		fwd, err := do.Invoke[*upstream.Forwarder](i)
		if err != nil {
			return nil, err
		}
		return fwd, nil
	})

	do.Provide(injector, func(_ do.Injector) (*envelope.Middleware, error) {
		return envelope.New(envelope.NewBuilder(cfg.Envelope.Options())), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.HealthRegistry, error) {
		fwd, err := do.Invoke[*upstream.Forwarder](i)
		if err != nil {
			return nil, err
		}
		registry := health.New()
		registry.Register(fwd)
		return registry, nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.ProxyHandler, error) {
		up := do.MustInvoke[ports.Upstream](i)
		return handlers.NewProxyHandler(up), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.HealthHandler, error) {
		registry := do.MustInvoke[ports.HealthRegistry](i)
		return handlers.NewHealthHandler(registry), nil
	})

	do.Provide(injector, func(i do.Injector) (nethttp.Handler, error) {
		proxyH := do.MustInvoke[*handlers.ProxyHandler](i)
		healthH := do.MustInvoke[*handlers.HealthHandler](i)
		mw := do.MustInvoke[*envelope.Middleware](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		return adapthttp.NewRouter(adapthttp.Routes{
			Proxy:   proxyH,
			Health:  healthH,
			Metrics: scrape,
			Envelope: middleware.Proxied(mw, metrics, cfg.Server.RequestTimeout),
		},
			middleware.Recovery(logger),
			middleware.RequestID(),
			middleware.CorrelationID(),
			middleware.OpenTelemetry(metrics),
			middleware.Logging(logger),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*adapthttp.Server, error) {
		handler := do.MustInvoke[nethttp.Handler](i)
		return adapthttp.NewServer(cfg.Server, handler, logger), nil
	})
}
