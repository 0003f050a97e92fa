package domain

// AppState identifies the active view. Exactly one is active at any time.
type AppState string

const (
	StateWelcome     AppState = "WELCOME"       // Initial state
	StatePreferences AppState = "PREFERENCES"   // Location captured, collecting preferences
	StatePreview     AppState = "ROUTE_PREVIEW" // Route generated, showing the timeline
	StateNavigation  AppState = "NAVIGATION"    // Guided walkthrough
)

// Valid reports whether s is one of the four known states.
func (s AppState) Valid() bool {
	switch s {
	case StateWelcome, StatePreferences, StatePreview, StateNavigation:
		return true
	}
	return false
}

// AlertKind tells the host how to surface an error.
type AlertKind string

const (
	// AlertBlocking is an immediate modal notice (location failures).
	AlertBlocking AlertKind = "blocking"
	// AlertBanner is a dismissible banner (generation failures).
	AlertBanner AlertKind = "banner"
)

// User-facing messages.
const (
	MsgLocationDenied      = "我们需要获取您的位置以规划附近的路线！请允许定位权限。"
	MsgLocationUnsupported = "您的浏览器不支持地理定位功能。"
	MsgGenerationFailed    = "生成路线失败，请重试。"
)

// Alert is the optional error attached to the controller, independent of the state.
type Alert struct {
	Kind    AlertKind `json:"kind"`
	Message string    `json:"message"`
}

// WalkProgress describes the walkthrough cursor while navigating.
type WalkProgress struct {
	// Index is the zero-based cursor, in [0, Total]. Index == Total means finished.
	Index    int  `json:"index"`
	Total    int  `json:"total"`
	Finished bool `json:"finished"`
}

// Snapshot represents an immutable copy of the controller, handed down to views.
type Snapshot struct {
	// SessionID identifies the controller instance (one per process).
	SessionID string `json:"session_id"`

	State       AppState        `json:"state"`
	Loading     bool            `json:"loading"`
	Location    *Coordinates    `json:"location,omitempty"`
	Preferences UserPreferences `json:"preferences"`
	Route       *WalkRoute      `json:"route,omitempty"`
	Walk        *WalkProgress   `json:"walk,omitempty"`
	Error       *Alert          `json:"error,omitempty"`

	// Actions lists the events accepted by the current state.
	Actions []Event `json:"actions"`
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	if s.Location != nil {
		loc := *s.Location
		c.Location = &loc
	}
	c.Route = s.Route.Clone()
	if s.Walk != nil {
		w := *s.Walk
		c.Walk = &w
	}
	if s.Error != nil {
		e := *s.Error
		c.Error = &e
	}
	c.Actions = append([]Event(nil), s.Actions...)
	return &c
}

// CurrentStop returns the stop under the walkthrough cursor, if any.
func (s *Snapshot) CurrentStop() (WalkStop, bool) {
	if s == nil || s.Route == nil || s.Walk == nil || s.Walk.Finished {
		return WalkStop{}, false
	}
	if s.Walk.Index < 0 || s.Walk.Index >= len(s.Route.Stops) {
		return WalkStop{}, false
	}
	return s.Route.Stops[s.Walk.Index], true
}
