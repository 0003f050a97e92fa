package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Stop count bounds agreed with the generator.
const (
	MinStops = 3
	MaxStops = 5
)

// WalkStop is a single point of interest of a generated route.
type WalkStop struct {
	ID                   string      `json:"id"`
	Name                 string      `json:"name"`
	Description          string      `json:"description"`
	SocialMediaTip       string      `json:"socialMediaTip"` // "Photo spot", "Must try latte", etc.
	Coordinates          Coordinates `json:"coordinates"`
	EstimatedTimeMinutes float64     `json:"estimatedTimeMinutes"`
	Tags                 []string    `json:"tags"`
}

// WalkRoute is a generated itinerary. Stops are in walking order.
type WalkRoute struct {
	Title            string     `json:"title"`
	TotalDistanceKm  string     `json:"totalDistanceKm"` // display string, e.g. "2.5 km"
	TotalTimeMinutes float64    `json:"totalTimeMinutes"`
	Vibe             string     `json:"vibe"`
	Stops            []WalkStop `json:"stops"`
}

// Validate checks field presence, stop count, non-negative minutes, unique stop IDs
// and coordinate ranges. All violations are joined into one ErrInvalidRoute.
func (r *WalkRoute) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil route", ErrInvalidRoute)
	}

	var errs []error
	if strings.TrimSpace(r.Title) == "" {
		errs = append(errs, errors.New("missing title"))
	}
	if strings.TrimSpace(r.TotalDistanceKm) == "" {
		errs = append(errs, errors.New("missing totalDistanceKm"))
	}
	if strings.TrimSpace(r.Vibe) == "" {
		errs = append(errs, errors.New("missing vibe"))
	}
	if r.TotalTimeMinutes < 0 || math.IsNaN(r.TotalTimeMinutes) {
		errs = append(errs, fmt.Errorf("totalTimeMinutes must be non-negative, got %v", r.TotalTimeMinutes))
	}
	if n := len(r.Stops); n < MinStops || n > MaxStops {
		errs = append(errs, fmt.Errorf("expected %d-%d stops, got %d", MinStops, MaxStops, n))
	}

	seen := make(map[string]struct{}, len(r.Stops))
	for i, s := range r.Stops {
		if strings.TrimSpace(s.ID) == "" {
			errs = append(errs, fmt.Errorf("stop %d: missing id", i))
		} else if _, dup := seen[s.ID]; dup {
			errs = append(errs, fmt.Errorf("stop %d: duplicate id %q", i, s.ID))
		} else {
			seen[s.ID] = struct{}{}
		}
		if strings.TrimSpace(s.Name) == "" {
			errs = append(errs, fmt.Errorf("stop %d: missing name", i))
		}
		if strings.TrimSpace(s.Description) == "" {
			errs = append(errs, fmt.Errorf("stop %d: missing description", i))
		}
		if strings.TrimSpace(s.SocialMediaTip) == "" {
			errs = append(errs, fmt.Errorf("stop %d: missing socialMediaTip", i))
		}
		if s.EstimatedTimeMinutes < 0 || math.IsNaN(s.EstimatedTimeMinutes) {
			errs = append(errs, fmt.Errorf("stop %d: estimatedTimeMinutes must be non-negative, got %v", i, s.EstimatedTimeMinutes))
		}
		if err := s.Coordinates.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("stop %d: %v", i, err))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidRoute, errors.Join(errs...))
}

// Clone returns a deep copy so that views can never mutate the stored route.
func (r *WalkRoute) Clone() *WalkRoute {
	if r == nil {
		return nil
	}
	c := *r
	c.Stops = make([]WalkStop, len(r.Stops))
	for i, s := range r.Stops {
		s.Tags = append([]string(nil), s.Tags...)
		c.Stops[i] = s
	}
	return &c
}

// PrimaryTag returns the first tag of the stop, shown as a chip on the timeline.
func (s WalkStop) PrimaryTag() string {
	if len(s.Tags) == 0 {
		return ""
	}
	return s.Tags[0]
}
