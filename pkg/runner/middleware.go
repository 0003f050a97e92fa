package runner

import (
	"context"
	"errors"
	"strings"

	"github.com/aretw0/citywalk/pkg/ports"
)

// ErrLaunchDeclined reports a map launch blocked by policy.
var ErrLaunchDeclined = errors.New("map launch declined")

// LaunchInterceptor is a middleware that can block a map launch.
// It returns true if the launch should proceed.
type LaunchInterceptor func(ctx context.Context, url string) (bool, error)

// MultiInterceptor chains multiple interceptors.
func MultiInterceptor(interceptors ...LaunchInterceptor) LaunchInterceptor {
	return func(ctx context.Context, url string) (bool, error) {
		for _, interceptor := range interceptors {
			allowed, err := interceptor(ctx, url)
			if err != nil {
				return false, err
			}
			if !allowed {
				return false, nil
			}
		}
		return true, nil
	}
}

// ConfirmationMiddleware asks the user through the handler before opening the map.
func ConfirmationMiddleware(handler IOHandler) LaunchInterceptor {
	return func(ctx context.Context, url string) (bool, error) {
		if err := handler.SystemOutput(ctx, "打开地图应用? (y/n)"); err != nil {
			return false, err
		}
		input, err := handler.Input(ctx)
		if err != nil {
			return false, err
		}
		input = strings.TrimSpace(strings.ToLower(input))
		return input == "y" || input == "yes", nil
	}
}

// AutoApproveMiddleware allows everything.
func AutoApproveMiddleware() LaunchInterceptor {
	return func(ctx context.Context, url string) (bool, error) {
		return true, nil
	}
}

// GuardedLauncher runs the interceptor before delegating to the launcher.
type GuardedLauncher struct {
	Launcher    ports.MapLauncher
	Interceptor LaunchInterceptor
}

var _ ports.MapLauncher = GuardedLauncher{}

// Launch opens url when the interceptor allows it, and returns ErrLaunchDeclined otherwise.
func (g GuardedLauncher) Launch(ctx context.Context, url string) error {
	if g.Interceptor != nil {
		allowed, err := g.Interceptor(ctx, url)
		if err != nil {
			return err
		}
		if !allowed {
			return ErrLaunchDeclined
		}
	}
	if g.Launcher == nil {
		return nil
	}
	return g.Launcher.Launch(ctx, url)
}
