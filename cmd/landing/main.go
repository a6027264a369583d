// Command landing serves the atrium demonstration landing page.
//
// It declares the landing Units, mounts the composed page on an HTTP
// document attachment, and serves it until interrupted. Configuration comes
// from the environment:
//
//	ATRIUM_LISTEN                the address to listen on, defaulting to
//	                             :8764
//	OTEL_EXPORTER_OTLP_ENDPOINT  the OTLP endpoint to send traces to;
//	                             tracing is disabled when unset
//	OTEL_SERVICE_NAME            the service name reported on traces,
//	                             defaulting to atrium-landing
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	"impractical.co/atrium"
	"impractical.co/atrium/landing"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	ctx := atrium.LoggingContext(context.Background(), logger)
	err := run(ctx, logger)
	if err != nil {
		logger.Error("exiting", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := newTracerProvider(ctx)
	if err != nil {
		return fmt.Errorf("error setting up tracing: %w", err)
	}
	if provider != nil {
		otel.SetTracerProvider(provider)
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err := provider.Shutdown(flushCtx)
			if err != nil {
				logger.Error("error shutting down tracer provider", slog.Any("error", err))
			}
		}()
	}

	registry, err := landing.NewRegistry(ctx)
	if err != nil {
		return err
	}

	// the routed content for the default route; a real host would compose
	// whatever the current route resolves to
	routed, err := atrium.Compose(ctx, registry, landing.Text{
		Copy: "You made it past the fold. The rest of this page is yours to route.",
	})
	if err != nil {
		return err
	}

	shell, ok := registry.Unit(ctx, "root")
	if !ok {
		return errors.New("landing registry has no root unit")
	}

	document := atrium.NewDocumentAttachment("Atrium")
	controller := atrium.NewController(registry, document)
	err = controller.Mount(ctx, shell, atrium.WithSlotContent("outlet", routed))
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/", document)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	addr := os.Getenv("ATRIUM_LISTEN")
	if addr == "" {
		addr = ":8764"
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("serving landing page", slog.String("addr", addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("error serving: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = server.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	err = controller.Unmount(atrium.LoggingContext(shutdownCtx, logger))
	if err != nil {
		return fmt.Errorf("error unmounting landing page: %w", err)
	}
	return nil
}

// newTracerProvider builds a TracerProvider exporting to the OTLP endpoint
// the environment names, or nil if no endpoint is configured.
func newTracerProvider(ctx context.Context) (*sdktrace.TracerProvider, error) {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		return nil, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	serviceName := os.Getenv("OTEL_SERVICE_NAME")
	if serviceName == "" {
		serviceName = "atrium-landing"
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}
