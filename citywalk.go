package citywalk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/citywalk/internal/logging"
	"github.com/aretw0/citywalk/internal/runtime"
	"github.com/aretw0/citywalk/pkg/domain"
	"github.com/aretw0/citywalk/pkg/ports"
	"github.com/aretw0/citywalk/pkg/routegen"
)

// ErrNoGenerator is returned by New when neither a generator nor a completer is configured.
var ErrNoGenerator = errors.New("citywalk: a route generator or completer is required")

// Planner is the high-level entry point of the library.
// It wraps the runtime controller and exposes the view state machine to hosts.
type Planner struct {
	*runtime.Controller

	locator     ports.Locator
	generator   ports.RouteGenerator
	completer   ports.Completer
	runtimeOpts []runtime.Option
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
}

var _ ports.Controller = (*Planner)(nil)

// Option defines a functional option for configuring the Planner.
type Option func(*Planner)

// WithLocator sets how the user's position is acquired. Without one, Start reports
// an unsupported platform.
func WithLocator(l ports.Locator) Option {
	return func(p *Planner) {
		p.locator = l
	}
}

// WithGenerator injects a route generator, bypassing the default prompt pipeline.
func WithGenerator(g ports.RouteGenerator) Option {
	return func(p *Planner) {
		p.generator = g
	}
}

// WithCompleter generates routes through the default prompt pipeline on this completer.
func WithCompleter(c ports.Completer) Option {
	return func(p *Planner) {
		p.completer = c
	}
}

// WithMapLauncher sets the application that opens map links.
func WithMapLauncher(l ports.MapLauncher) Option {
	return func(p *Planner) {
		p.runtimeOpts = append(p.runtimeOpts, runtime.WithMapLauncher(l))
	}
}

// WithMapsBaseURL overrides the directions endpoint.
func WithMapsBaseURL(base string) Option {
	return func(p *Planner) {
		p.runtimeOpts = append(p.runtimeOpts, runtime.WithMapsBaseURL(base))
	}
}

// WithAllowCustomPreferences accepts theme and duration labels outside the catalogs.
func WithAllowCustomPreferences(allow bool) Option {
	return func(p *Planner) {
		p.runtimeOpts = append(p.runtimeOpts, runtime.WithAllowCustomPreferences(allow))
	}
}

// WithInitialPreferences overrides the pre-selected preferences.
func WithInitialPreferences(prefs domain.UserPreferences) Option {
	return func(p *Planner) {
		p.runtimeOpts = append(p.runtimeOpts, runtime.WithInitialPreferences(prefs))
	}
}

// WithSessionID fixes the identifier reported on snapshots.
func WithSessionID(id string) Option {
	return func(p *Planner) {
		p.runtimeOpts = append(p.runtimeOpts, runtime.WithSessionID(id))
	}
}

// WithLifecycleHooks registers observability hooks. Multiple calls are merged.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Planner) {
		p.hooks = p.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		p.logger = logger
	}
}

// New initializes a Planner in the Welcome state.
func New(opts ...Option) (*Planner, error) {
	p := &Planner{}
	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = logging.NewNop()
	}

	if p.generator == nil {
		if p.completer == nil {
			return nil, ErrNoGenerator
		}
		p.generator = routegen.New(p.completer, routegen.WithLogger(p.logger))
	}

	runtimeOpts := []runtime.Option{
		runtime.WithLogger(p.logger),
		runtime.WithLifecycleHooks(p.hooks),
	}
	runtimeOpts = append(runtimeOpts, p.runtimeOpts...)

	p.Controller = runtime.NewController(p.locator, p.generator, runtimeOpts...)
	return p, nil
}

// Generate produces a route without touching the view state. It backs one-shot hosts
// (the generate command, the generate_route tool).
func (p *Planner) Generate(ctx context.Context, loc domain.Coordinates, prefs domain.UserPreferences) (*domain.WalkRoute, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	if err := prefs.Validate(true); err != nil {
		return nil, err
	}
	route, err := p.generator.Generate(ctx, loc, prefs)
	if err != nil {
		return nil, err
	}
	if err := route.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	return route, nil
}

// Locate acquires a position with the configured locator, outside the view flow.
func (p *Planner) Locate(ctx context.Context) (domain.Coordinates, error) {
	if p.locator == nil {
		return domain.Coordinates{}, fmt.Errorf("%w: %w", domain.ErrLocationUnavailable, domain.ErrLocationUnsupported)
	}
	loc, err := p.locator.Locate(ctx)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: %w", domain.ErrLocationUnavailable, err)
	}
	return loc, nil
}
