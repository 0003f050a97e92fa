package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/citywalk"
	"github.com/aretw0/citywalk/internal/config"
	"github.com/aretw0/citywalk/pkg/adapters/gemini"
	"github.com/aretw0/citywalk/pkg/adapters/locator"
	"github.com/aretw0/citywalk/pkg/adapters/maps"
	"github.com/aretw0/citywalk/pkg/observability"
	"github.com/aretw0/citywalk/pkg/ports"
)

// App holds everything a command needs, wired from the configuration.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Planner *citywalk.Planner
	Metrics *observability.Metrics
}

// AppOptions adjusts the wiring per host.
type AppOptions struct {
	// Launcher overrides the map launcher derived from the configuration.
	Launcher ports.MapLauncher
	// LinkWriter receives map links when the configuration disables opening them.
	LinkWriter io.Writer
	// Completer overrides the Gemini completer (tests, offline runs).
	Completer ports.Completer
	// Metrics registers the Prometheus collectors.
	Metrics bool
}

// NewApp builds the planner and its adapters. The API key is required unless a
// completer is injected.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts AppOptions) (*App, error) {
	if err := cfg.Validate(opts.Completer == nil); err != nil {
		return nil, err
	}

	completer := opts.Completer
	if completer == nil {
		c, err := gemini.New(ctx, cfg.APIKey,
			gemini.WithModel(cfg.Model),
			gemini.WithTimeout(cfg.Timeout),
			gemini.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to init generation client: %w", err)
		}
		completer = c
	}

	app := &App{Config: cfg, Logger: logger}

	plannerOpts := []citywalk.Option{
		citywalk.WithLogger(logger),
		citywalk.WithLocator(NewLocator(cfg, logger)),
		citywalk.WithCompleter(completer),
		citywalk.WithMapLauncher(newLauncher(cfg, opts)),
		citywalk.WithMapsBaseURL(cfg.Maps.BaseURL),
		citywalk.WithAllowCustomPreferences(cfg.AllowCustom),
		citywalk.WithLifecycleHooks(observability.LoggingHooks(logger)),
	}
	if opts.Metrics {
		app.Metrics = observability.NewMetrics()
		plannerOpts = append(plannerOpts, citywalk.WithLifecycleHooks(app.Metrics.Hooks()))
	}

	planner, err := citywalk.New(plannerOpts...)
	if err != nil {
		return nil, err
	}
	app.Planner = planner
	return app, nil
}

// NewLocator selects the locator for the configured provider.
func NewLocator(cfg *config.Config, logger *slog.Logger) ports.Locator {
	switch cfg.Location.Provider {
	case config.ProviderStatic:
		return locator.Static(cfg.StaticLocation())
	case config.ProviderNone:
		return locator.Unsupported{}
	default:
		opts := []locator.IPAPIOption{locator.WithLogger(logger)}
		if cfg.Location.Endpoint != "" {
			opts = append(opts, locator.WithURL(cfg.Location.Endpoint))
		}
		return locator.NewIPAPI(opts...)
	}
}

func newLauncher(cfg *config.Config, opts AppOptions) ports.MapLauncher {
	switch {
	case opts.Launcher != nil:
		return opts.Launcher
	case cfg.Maps.Open:
		return maps.BrowserLauncher{}
	case opts.LinkWriter != nil:
		return maps.WriterLauncher{W: opts.LinkWriter}
	default:
		return nil
	}
}
