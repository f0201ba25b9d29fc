package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/equipskill/equipskill-dashboard/config"
	"github.com/equipskill/equipskill-dashboard/internal/backend"
	"github.com/equipskill/equipskill-dashboard/internal/credentials"
	"github.com/equipskill/equipskill-dashboard/internal/dashboard"
	"github.com/equipskill/equipskill-dashboard/internal/imagehost"
	"github.com/equipskill/equipskill-dashboard/internal/reviews"
	"github.com/equipskill/equipskill-dashboard/internal/upload"
	"github.com/equipskill/equipskill-dashboard/pkg/httpclient"
	"github.com/equipskill/equipskill-dashboard/pkg/logger"
	"github.com/equipskill/equipskill-dashboard/pkg/tracing"
)

// App holds the dependencies of one CLI invocation.
type App struct {
	Config     *config.Config
	Controller *dashboard.Controller
	Reviews    *reviews.Service

	shutdown func(context.Context) error
}

type contextKey struct{}

func appFromContext(ctx context.Context) (*App, error) {
	a, ok := ctx.Value(contextKey{}).(*App)
	if !ok || a == nil {
		return nil, errors.New("application not initialized")
	}
	return a, nil
}

func withApp(ctx context.Context, a *App) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

func newApp(verbose bool) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// the CLI writes its own output to stdout; logs are opt-in
	if verbose {
		if err := logger.Initialize(logger.Config{
			Level:       "debug",
			Environment: "development",
			ServiceName: cfg.Observability.ServiceName,
		}); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	shutdown, err := tracing.InitTracer(tracing.Config{
		ServiceName:       cfg.Observability.ServiceName,
		ServiceNamespace:  cfg.Observability.ServiceNamespace,
		ServiceVersion:    cfg.Observability.ServiceVersion,
		ServiceInstanceID: hostname(),
		Environment:       cfg.Server.AppEnv,
		Endpoint:          cfg.Observability.ExporterEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	httpClient := httpclient.NewClient(time.Duration(cfg.API.TimeoutSeconds) * time.Second)
	host, err := imagehost.New(cfg.ImageHost, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to configure image host: %w", err)
	}

	creds := credentials.FromConfig(cfg.Auth)
	client := backend.NewClient(cfg.API.BaseURL, httpClient)

	ctrl := dashboard.New(client, upload.NewUploader(host), creds,
		dashboard.WithLimits(upload.LimitsFromConfig(cfg.Upload)),
	)

	return &App{
		Config:     cfg,
		Controller: ctrl,
		Reviews:    reviews.NewService(client, creds),
		shutdown:   shutdown,
	}, nil
}

// Close flushes traces and logs.
func (a *App) Close() {
	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.shutdown(ctx) //nolint:errcheck
	}
	logger.Sync()
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "cli"
	}
	return name
}
