package domain

import (
	"errors"
	"testing"
)

func TestTransition_Table(t *testing.T) {
	allEvents := []Event{EventStart, EventSubmit, EventStartNavigation, EventBack, EventEnd}
	allStates := []AppState{StateWelcome, StatePreferences, StatePreview, StateNavigation}

	want := map[AppState]map[Event]AppState{
		StateWelcome:     {EventStart: StatePreferences},
		StatePreferences: {EventSubmit: StatePreview},
		StatePreview:     {EventStartNavigation: StateNavigation, EventBack: StatePreferences},
		StateNavigation:  {EventEnd: StateWelcome},
	}

	for _, from := range allStates {
		for _, ev := range allEvents {
			to, err := Transition(from, ev)
			expected, ok := want[from][ev]
			if ok {
				if err != nil || to != expected {
					t.Errorf("Transition(%s, %s) = (%s, %v), want %s", from, ev, to, err, expected)
				}
				continue
			}
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Transition(%s, %s) err = %v, want ErrInvalidTransition", from, ev, err)
			}
			if to != from {
				t.Errorf("Transition(%s, %s) moved to %s on rejection", from, ev, to)
			}
		}
	}
}

func TestAccepts(t *testing.T) {
	got := Accepts(StatePreview)
	if len(got) != 2 || got[0] != EventStartNavigation || got[1] != EventBack {
		t.Errorf("Accepts(Preview) = %v", got)
	}
	if got := Accepts(StateWelcome); len(got) != 1 || got[0] != EventStart {
		t.Errorf("Accepts(Welcome) = %v", got)
	}
	if got := Accepts(AppState("bogus")); len(got) != 0 {
		t.Errorf("Accepts(bogus) = %v, want empty", got)
	}
}

func TestIsAsync(t *testing.T) {
	if !IsAsync(EventStart) || !IsAsync(EventSubmit) {
		t.Error("start and submit must be asynchronous")
	}
	if IsAsync(EventBack) || IsAsync(EventEnd) || IsAsync(EventStartNavigation) {
		t.Error("back, end and start_navigation are synchronous")
	}
}
