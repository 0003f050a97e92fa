package ports

import "context"

// MapLauncher opens a deep link in an external maps application.
// It is fire-and-forget: no result besides a launch error is consumed.
type MapLauncher interface {
	Launch(ctx context.Context, url string) error
}
