package domain

import "errors"

// ErrInvalidTransition is returned when an event is not accepted by the active state.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrBusy is returned when a trigger arrives while an asynchronous operation is in flight.
var ErrBusy = errors.New("operation already in progress")

// ErrLocationUnavailable covers both a denied permission and an unsupported platform.
var ErrLocationUnavailable = errors.New("location unavailable")

// ErrLocationUnsupported is a refinement of ErrLocationUnavailable for hosts without a locator.
var ErrLocationUnsupported = errors.New("geolocation not supported")

// ErrGenerationFailed is returned for any failure of the route generation call.
var ErrGenerationFailed = errors.New("route generation failed")

// ErrEmptyResponse is returned when the generation service answers without text.
var ErrEmptyResponse = errors.New("empty response from generation service")

// ErrInvalidRoute is returned when a parsed route violates the route invariants.
var ErrInvalidRoute = errors.New("invalid route")

// ErrInvalidPreferences is returned when submitted preferences are not in the catalog.
var ErrInvalidPreferences = errors.New("invalid preferences")

// ErrInvalidCoordinates is returned for latitude/longitude outside their ranges.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// ErrNoLocation is returned when a generation is requested before a location was captured.
var ErrNoLocation = errors.New("no location captured")

// ErrNoRoute is returned when a route is required but none is stored.
var ErrNoRoute = errors.New("no route generated")

// ErrWalkFinished is returned by stop-scoped actions once the walkthrough is finished.
var ErrWalkFinished = errors.New("walkthrough finished")
