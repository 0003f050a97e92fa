package routegen

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/citywalk/internal/logging"
	"github.com/aretw0/citywalk/pkg/domain"
	"github.com/aretw0/citywalk/pkg/ports"
)

// Generator implements ports.RouteGenerator on top of a Completer.
type Generator struct {
	completer ports.Completer
	logger    *slog.Logger
}

// Option configures the Generator.
type Option func(*Generator)

// WithLogger configures a logger for the Generator.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

var _ ports.RouteGenerator = (*Generator)(nil)

// New creates a Generator backed by the given completer.
func New(completer ports.Completer, opts ...Option) *Generator {
	g := &Generator{
		completer: completer,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate performs one completion call and returns the validated route.
// Every failure is wrapped in domain.ErrGenerationFailed.
func (g *Generator) Generate(ctx context.Context, location domain.Coordinates, prefs domain.UserPreferences) (*domain.WalkRoute, error) {
	if g.completer == nil {
		return nil, fmt.Errorf("%w: no completer configured", domain.ErrGenerationFailed)
	}

	start := time.Now()
	req := BuildRequest(location, prefs)

	text, err := g.completer.Complete(ctx, req)
	if err != nil {
		g.logger.Error("completion request failed", "err", err, "elapsed", time.Since(start))
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	route, err := Parse(text)
	if err != nil {
		g.logger.Error("completion reply rejected", "err", err, "size", len(text))
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	g.logger.Debug("route generated",
		"title", route.Title,
		"stops", len(route.Stops),
		"elapsed", time.Since(start),
	)
	return route, nil
}
