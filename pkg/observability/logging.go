package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/citywalk/pkg/domain"
)

// LoggingHooks writes every lifecycle event to the logger.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.InfoContext(ctx, "transition",
				"session_id", e.SessionID,
				"from", e.From,
				"to", e.To,
				"trigger", e.Trigger,
			)
		},
		OnLocate: func(ctx context.Context, e *domain.LocateEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "locate failed", "session_id", e.SessionID, "elapsed", e.Elapsed, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "located", "session_id", e.SessionID, "elapsed", e.Elapsed, "location", e.Location.String())
		},
		OnGenerate: func(ctx context.Context, e *domain.GenerateEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "generate failed",
					"session_id", e.SessionID,
					"theme", e.Preferences.Theme,
					"elapsed", e.Elapsed,
					"err", e.Err,
				)
				return
			}
			logger.InfoContext(ctx, "generated",
				"session_id", e.SessionID,
				"theme", e.Preferences.Theme,
				"duration", e.Preferences.Duration,
				"stops", e.Stops,
				"elapsed", e.Elapsed,
			)
		},
		OnMapOpen: func(ctx context.Context, e *domain.MapEvent) {
			logger.DebugContext(ctx, "map opened", "session_id", e.SessionID, "stop_id", e.StopID, "url", e.URL, "err", e.Err)
		},
	}
}
