package ports

import (
	"context"

	"github.com/aretw0/citywalk/pkg/domain"
)

// Locator defines how the controller acquires the user's position.
type Locator interface {
	// Locate returns the current position. Any failure (permission denied,
	// unsupported platform, lookup error) is reported as an error; the controller
	// folds all of them into domain.ErrLocationUnavailable.
	Locate(ctx context.Context) (domain.Coordinates, error)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(ctx context.Context) (domain.Coordinates, error)

// Locate calls f(ctx).
func (f LocatorFunc) Locate(ctx context.Context) (domain.Coordinates, error) {
	return f(ctx)
}
