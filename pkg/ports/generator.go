package ports

import (
	"context"

	"github.com/aretw0/citywalk/pkg/domain"
)

// RouteGenerator turns a position and preferences into a validated route.
// It performs exactly one external call and never returns a partial route.
type RouteGenerator interface {
	Generate(ctx context.Context, location domain.Coordinates, prefs domain.UserPreferences) (*domain.WalkRoute, error)
}
