package domain

import (
	"reflect"
)

// SnapshotDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	State   *AppState        `json:"state,omitempty"`
	Loading *bool            `json:"loading,omitempty"`
	Walk    *WalkProgress    `json:"walk,omitempty"`
	Prefs   *UserPreferences `json:"preferences,omitempty"`

	// Location and Route are sent whole when they change. A cleared route
	// is signalled by RouteCleared rather than a null, so omitempty keeps working.
	Location     *Coordinates `json:"location,omitempty"`
	Route        *WalkRoute   `json:"route,omitempty"`
	RouteCleared bool         `json:"route_cleared,omitempty"`

	// Error carries a new alert; ErrorCleared reports a dismissal.
	Error        *Alert `json:"error,omitempty"`
	ErrorCleared bool   `json:"error_cleared,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
// It returns nil when nothing changed.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}

	diff := &SnapshotDiff{SessionID: newSnap.SessionID}
	if oldSnap == nil {
		oldSnap = &Snapshot{}
	}

	if oldSnap.State != newSnap.State {
		s := newSnap.State
		diff.State = &s
	}
	if oldSnap.Loading != newSnap.Loading {
		l := newSnap.Loading
		diff.Loading = &l
	}
	if oldSnap.Preferences != newSnap.Preferences {
		p := newSnap.Preferences
		diff.Prefs = &p
	}
	if !reflect.DeepEqual(oldSnap.Location, newSnap.Location) && newSnap.Location != nil {
		loc := *newSnap.Location
		diff.Location = &loc
	}
	if !reflect.DeepEqual(oldSnap.Walk, newSnap.Walk) && newSnap.Walk != nil {
		w := *newSnap.Walk
		diff.Walk = &w
	}

	switch {
	case newSnap.Route == nil && oldSnap.Route != nil:
		diff.RouteCleared = true
	case newSnap.Route != nil && !reflect.DeepEqual(oldSnap.Route, newSnap.Route):
		diff.Route = newSnap.Route.Clone()
	}

	switch {
	case newSnap.Error == nil && oldSnap.Error != nil:
		diff.ErrorCleared = true
	case newSnap.Error != nil && !reflect.DeepEqual(oldSnap.Error, newSnap.Error):
		e := *newSnap.Error
		diff.Error = &e
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.State == nil &&
		d.Loading == nil &&
		d.Walk == nil &&
		d.Prefs == nil &&
		d.Location == nil &&
		d.Route == nil &&
		!d.RouteCleared &&
		d.Error == nil &&
		!d.ErrorCleared
}
