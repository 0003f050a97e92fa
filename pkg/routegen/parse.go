package routegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/citywalk/pkg/domain"
)

// wireRoute mirrors the response schema with pointer fields so that absent keys
// can be told apart from zero values.
type wireRoute struct {
	Title            *string    `json:"title"`
	TotalDistanceKm  *string    `json:"totalDistanceKm"`
	TotalTimeMinutes *float64   `json:"totalTimeMinutes"`
	Vibe             *string    `json:"vibe"`
	Stops            []wireStop `json:"stops"`
}

type wireStop struct {
	ID                   *string          `json:"id"`
	Name                 *string          `json:"name"`
	Description          *string          `json:"description"`
	SocialMediaTip       *string          `json:"socialMediaTip"`
	Coordinates          *wireCoordinates `json:"coordinates"`
	EstimatedTimeMinutes *float64         `json:"estimatedTimeMinutes"`
	Tags                 *[]string        `json:"tags"`
}

type wireCoordinates struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Parse decodes a reply into a route and validates it.
// Errors wrap domain.ErrEmptyResponse, a JSON error, or domain.ErrInvalidRoute.
// Every key the response schema marks as required must be present.
func Parse(text string) (*domain.WalkRoute, error) {
	body := unfence(text)
	if body == "" {
		return nil, domain.ErrEmptyResponse
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	var wire wireRoute
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode route: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("failed to decode route: trailing data after JSON object")
	}

	if missing := wire.missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", domain.ErrInvalidRoute, strings.Join(missing, ", "))
	}

	route := wire.route()
	if err := route.Validate(); err != nil {
		return nil, err
	}
	return route, nil
}

// missing lists the absent required keys as JSON paths.
func (w *wireRoute) missing() []string {
	var out []string
	check := func(present bool, path string) {
		if !present {
			out = append(out, path)
		}
	}
	check(w.Title != nil, "title")
	check(w.TotalDistanceKm != nil, "totalDistanceKm")
	check(w.TotalTimeMinutes != nil, "totalTimeMinutes")
	check(w.Vibe != nil, "vibe")
	check(w.Stops != nil, "stops")

	for i, s := range w.Stops {
		p := fmt.Sprintf("stops[%d].", i)
		check(s.ID != nil, p+"id")
		check(s.Name != nil, p+"name")
		check(s.Description != nil, p+"description")
		check(s.SocialMediaTip != nil, p+"socialMediaTip")
		check(s.EstimatedTimeMinutes != nil, p+"estimatedTimeMinutes")
		check(s.Tags != nil, p+"tags")
		if s.Coordinates == nil {
			out = append(out, p+"coordinates")
			continue
		}
		check(s.Coordinates.Latitude != nil, p+"coordinates.latitude")
		check(s.Coordinates.Longitude != nil, p+"coordinates.longitude")
	}
	return out
}

// route converts a complete wire route. Call missing first.
func (w *wireRoute) route() *domain.WalkRoute {
	r := &domain.WalkRoute{
		Title:            *w.Title,
		TotalDistanceKm:  *w.TotalDistanceKm,
		TotalTimeMinutes: *w.TotalTimeMinutes,
		Vibe:             *w.Vibe,
		Stops:            make([]domain.WalkStop, len(w.Stops)),
	}
	for i, s := range w.Stops {
		r.Stops[i] = domain.WalkStop{
			ID:             *s.ID,
			Name:           *s.Name,
			Description:    *s.Description,
			SocialMediaTip: *s.SocialMediaTip,
			Coordinates: domain.Coordinates{
				Latitude:  *s.Coordinates.Latitude,
				Longitude: *s.Coordinates.Longitude,
			},
			EstimatedTimeMinutes: *s.EstimatedTimeMinutes,
			Tags:                 append([]string{}, (*s.Tags)...),
		}
	}
	return r
}

// unfence strips a Markdown code fence (```json ... ```) some models wrap replies in.
func unfence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

