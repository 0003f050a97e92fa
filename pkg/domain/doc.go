/*
Package domain contains the core models and the transition table of the city-walk flow.

It defines the passive data shapes shared by every host (terminal, HTTP, MCP) and the pure
state machine that decides which view is active. This package is kept free of I/O and
external dependencies, following Hexagonal Architecture principles.

# Key Entities

  - Coordinates: a captured geographic position.
  - UserPreferences: the theme and duration chosen before generation.
  - WalkRoute / WalkStop: the generated itinerary, in walking order.
  - AppState: the active view (Welcome, Preferences, Preview, Navigation).
  - Snapshot: an immutable copy of everything a view needs to render.
*/
package domain
