package runtime

import (
	"context"

	"github.com/aretw0/citywalk/pkg/domain"
)

func (c *Controller) base() domain.EventBase {
	return domain.EventBase{Timestamp: c.now(), SessionID: c.sessionID}
}

func (c *Controller) emitTransition(ctx context.Context, ev *domain.TransitionEvent) {
	if ev != nil && c.hooks.OnTransition != nil {
		c.hooks.OnTransition(ctx, ev)
	}
}

func (c *Controller) emitLocate(ctx context.Context, ev *domain.LocateEvent) {
	if c.hooks.OnLocate != nil {
		c.hooks.OnLocate(ctx, ev)
	}
}

func (c *Controller) emitGenerate(ctx context.Context, ev *domain.GenerateEvent) {
	if c.hooks.OnGenerate != nil {
		c.hooks.OnGenerate(ctx, ev)
	}
}

func (c *Controller) emitMapOpen(ctx context.Context, ev *domain.MapEvent) {
	if c.hooks.OnMapOpen != nil {
		c.hooks.OnMapOpen(ctx, ev)
	}
}
