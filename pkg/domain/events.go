package domain

import (
	"context"
	"time"
)

// Event is a user-level trigger fed to the state machine.
type Event string

const (
	EventStart           Event = "start"            // Welcome -> Preferences (locate)
	EventSubmit          Event = "submit"           // Preferences -> Preview (generate)
	EventStartNavigation Event = "start_navigation" // Preview -> Navigation
	EventBack            Event = "back"             // Preview -> Preferences
	EventEnd             Event = "end"              // Navigation -> Welcome
)

// EventBase contains common fields for all lifecycle events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
}

// TransitionEvent is emitted after the active state changed.
type TransitionEvent struct {
	EventBase
	From    AppState `json:"from"`
	To      AppState `json:"to"`
	Trigger Event    `json:"trigger"`
}

// LocateEvent is emitted when a location acquisition settles.
type LocateEvent struct {
	EventBase
	Location *Coordinates  `json:"location,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`
	Err      error         `json:"-"`
}

// GenerateEvent is emitted when a route generation settles.
type GenerateEvent struct {
	EventBase
	Preferences UserPreferences `json:"preferences"`
	Stops       int             `json:"stops"`
	Elapsed     time.Duration   `json:"elapsed"`
	Err         error           `json:"-"`
}

// MapEvent is emitted each time a map link is handed to the launcher.
type MapEvent struct {
	EventBase
	StopID string `json:"stop_id"`
	URL    string `json:"url"`
	Err    error  `json:"-"`
}

// LifecycleHooks defines callbacks for controller observability.
// Hooks run synchronously and must not call back into the controller.
type LifecycleHooks struct {
	OnTransition func(context.Context, *TransitionEvent)
	OnLocate     func(context.Context, *LocateEvent)
	OnGenerate   func(context.Context, *GenerateEvent)
	OnMapOpen    func(context.Context, *MapEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTransition: chain(h.OnTransition, other.OnTransition),
		OnLocate:     chain(h.OnLocate, other.OnLocate),
		OnGenerate:   chain(h.OnGenerate, other.OnGenerate),
		OnMapOpen:    chain(h.OnMapOpen, other.OnMapOpen),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
