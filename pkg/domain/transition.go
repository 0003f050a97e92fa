package domain

import "fmt"

// transitions is the complete table of the view state machine.
// Start and Submit name the target reached when their side effect succeeds.
var transitions = map[AppState]map[Event]AppState{
	StateWelcome: {
		EventStart: StatePreferences,
	},
	StatePreferences: {
		EventSubmit: StatePreview,
	},
	StatePreview: {
		EventStartNavigation: StateNavigation,
		EventBack:            StatePreferences,
	},
	StateNavigation: {
		EventEnd: StateWelcome,
	},
}

// eventOrder fixes the order in which accepted events are reported.
var eventOrder = []Event{EventStart, EventSubmit, EventStartNavigation, EventBack, EventEnd}

// Transition is the pure transition function: it returns the state reached from
// `from` on `ev`, or ErrInvalidTransition if the pair is not in the table.
func Transition(from AppState, ev Event) (AppState, error) {
	if to, ok := transitions[from][ev]; ok {
		return to, nil
	}
	return from, fmt.Errorf("%w: %q not accepted in %s", ErrInvalidTransition, ev, from)
}

// Accepts lists the events accepted by a state, in a stable order.
func Accepts(from AppState) []Event {
	row := transitions[from]
	out := make([]Event, 0, len(row))
	for _, ev := range eventOrder {
		if _, ok := row[ev]; ok {
			out = append(out, ev)
		}
	}
	return out
}

// IsAsync reports whether an event carries an asynchronous side effect
// (and therefore raises the loading flag).
func IsAsync(ev Event) bool {
	return ev == EventStart || ev == EventSubmit
}
