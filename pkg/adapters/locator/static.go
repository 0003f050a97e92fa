// Package locator provides ports.Locator implementations: a fixed position,
// a platform without geolocation, and an IP-based lookup.
package locator

import (
	"context"

	"github.com/aretw0/citywalk/pkg/domain"
	"github.com/aretw0/citywalk/pkg/ports"
)

// Static always returns the same position (configuration, flags or a browser-supplied fix).
type Static domain.Coordinates

var _ ports.Locator = Static{}

// Locate returns the fixed position after checking its range.
func (s Static) Locate(ctx context.Context) (domain.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinates{}, err
	}
	c := domain.Coordinates(s)
	if err := c.Validate(); err != nil {
		return domain.Coordinates{}, err
	}
	return c, nil
}

// Unsupported models a host without any positioning capability.
type Unsupported struct{}

var _ ports.Locator = Unsupported{}

// Locate always fails with domain.ErrLocationUnsupported.
func (Unsupported) Locate(context.Context) (domain.Coordinates, error) {
	return domain.Coordinates{}, domain.ErrLocationUnsupported
}
