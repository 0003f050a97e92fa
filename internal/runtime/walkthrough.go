package runtime

import "github.com/aretw0/citywalk/pkg/domain"

// Walkthrough is a cursor over the fixed, ordered stops of a route.
// The cursor stays in [0, len(stops)]; len(stops) means finished.
type Walkthrough struct {
	stops  []domain.WalkStop
	cursor int
}

// NewWalkthrough starts a walkthrough at the first stop.
func NewWalkthrough(stops []domain.WalkStop) *Walkthrough {
	return &Walkthrough{stops: stops}
}

// Advance moves to the next stop. It is a no-op once finished and reports whether it moved.
func (w *Walkthrough) Advance() bool {
	if w.cursor >= len(w.stops) {
		return false
	}
	w.cursor++
	return true
}

// Finished reports whether every stop has been visited.
func (w *Walkthrough) Finished() bool {
	return w.cursor >= len(w.stops)
}

// Current returns the stop under the cursor, or false once finished.
func (w *Walkthrough) Current() (domain.WalkStop, bool) {
	if w.Finished() {
		return domain.WalkStop{}, false
	}
	return w.stops[w.cursor], true
}

// Position returns the 1-based index of the current stop and the stop count.
func (w *Walkthrough) Position() (int, int) {
	return w.cursor + 1, len(w.stops)
}

// Progress renders the cursor for snapshots.
func (w *Walkthrough) Progress() domain.WalkProgress {
	return domain.WalkProgress{
		Index:    w.cursor,
		Total:    len(w.stops),
		Finished: w.Finished(),
	}
}
