package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/citywalk/pkg/domain"
	"github.com/aretw0/citywalk/pkg/ports"
)

// Shanghai is the reference position used across tests.
var Shanghai = domain.Coordinates{Latitude: 31.23, Longitude: 121.47}

// CoffeeWalk is the reference preference selection.
var CoffeeWalk = domain.UserPreferences{Theme: domain.ThemeCoffee, Duration: domain.DurationMedium}

// SampleRoute returns a fresh three-stop route around Shanghai's former French Concession.
func SampleRoute() *domain.WalkRoute {
	return &domain.WalkRoute{
		Title:            "梧桐区咖啡漫步",
		TotalDistanceKm:  "2.5 km",
		TotalTimeMinutes: 90,
		Vibe:             "慵懒午后",
		Stops: []domain.WalkStop{
			{ID: "s1", Name: "武康大楼", Description: "地标建筑", SocialMediaTip: "对面街角拍全景",
				Coordinates: domain.Coordinates{Latitude: 31.2046, Longitude: 121.4375}, EstimatedTimeMinutes: 20, Tags: []string{"拍照", "建筑"}},
			{ID: "s2", Name: "Seesaw Coffee", Description: "精品咖啡", SocialMediaTip: "必点拿铁",
				Coordinates: domain.Coordinates{Latitude: 31.2061, Longitude: 121.4412}, EstimatedTimeMinutes: 30, Tags: []string{"咖啡"}},
			{ID: "s3", Name: "安福路", Description: "买手店与小剧场", SocialMediaTip: "傍晚光线最好",
				Coordinates: domain.Coordinates{Latitude: 31.2118, Longitude: 121.4439}, EstimatedTimeMinutes: 40},
		},
	}
}

// StaticLocator returns a locator answering with loc or err.
func StaticLocator(loc domain.Coordinates, err error) ports.Locator {
	return ports.LocatorFunc(func(ctx context.Context) (domain.Coordinates, error) {
		return loc, err
	})
}

// GeneratorFunc adapts a function to ports.RouteGenerator.
type GeneratorFunc func(ctx context.Context, loc domain.Coordinates, prefs domain.UserPreferences) (*domain.WalkRoute, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, loc domain.Coordinates, prefs domain.UserPreferences) (*domain.WalkRoute, error) {
	return f(ctx, loc, prefs)
}

// MockGenerator is a testify mock of ports.RouteGenerator.
type MockGenerator struct {
	mock.Mock
}

// Generate records the call and returns the configured route and error.
func (m *MockGenerator) Generate(ctx context.Context, loc domain.Coordinates, prefs domain.UserPreferences) (*domain.WalkRoute, error) {
	args := m.Called(ctx, loc, prefs)
	route, _ := args.Get(0).(*domain.WalkRoute)
	return route, args.Error(1)
}

// Gate blocks an external call until released, so tests can observe the loading flag.
type Gate struct {
	entered chan struct{}
	release chan struct{}
}

// NewGate creates a closed-until-released gate.
func NewGate() *Gate {
	return &Gate{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

// Wait signals entry and blocks until Release or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	g.entered <- struct{}{}
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AwaitEntered fails the test if no call entered the gate in time.
func (g *Gate) AwaitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-g.entered:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "call never reached the gate")
	}
}

// Release unblocks the waiting call.
func (g *Gate) Release() {
	close(g.release)
}
