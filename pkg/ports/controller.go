package ports

import (
	"context"

	"github.com/aretw0/citywalk/pkg/domain"
)

// Controller defines the view state machine as seen by the hosts (HTTP, MCP, terminal).
// Every method returns the snapshot taken after the call settled, even on error,
// so the host can always re-render.
type Controller interface {
	// Snapshot returns the current view model.
	Snapshot() *domain.Snapshot

	// Start acquires the location with the configured locator (Welcome -> Preferences).
	Start(ctx context.Context) (*domain.Snapshot, error)
	// StartWith acquires the location with the given locator, e.g. a browser-supplied position.
	StartWith(ctx context.Context, locator Locator) (*domain.Snapshot, error)
	// SetPreferences edits the selection while in Preferences.
	SetPreferences(prefs domain.UserPreferences) (*domain.Snapshot, error)
	// Submit generates a route for the given preferences (Preferences -> Preview).
	Submit(ctx context.Context, prefs domain.UserPreferences) (*domain.Snapshot, error)
	// StartNavigation enters the walkthrough (Preview -> Navigation).
	StartNavigation(ctx context.Context) (*domain.Snapshot, error)
	// Back returns to the preference screen (Preview -> Preferences).
	Back(ctx context.Context) (*domain.Snapshot, error)
	// Advance moves the walkthrough cursor to the next stop.
	Advance(ctx context.Context) (*domain.Snapshot, error)
	// OpenMap launches the maps application for the current stop and returns the link.
	OpenMap(ctx context.Context) (string, error)
	// End discards the route and returns to Welcome (Navigation -> Welcome).
	End(ctx context.Context) (*domain.Snapshot, error)
	// DismissError clears the error without touching the active state.
	DismissError() *domain.Snapshot

	// Watch streams a snapshot after every change until ctx is done.
	// Slow readers miss intermediate snapshots, never the channel close.
	Watch(ctx context.Context) <-chan *domain.Snapshot
}
