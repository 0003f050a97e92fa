/*
Package ports defines the driven and driving ports (interfaces) of the city-walk controller.

These interfaces decouple the flow from the external collaborators, allowing the controller
to run against a browser-supplied position or an IP lookup, the Gemini API or a fake, and a
real or recorded map launcher.

# Key Interfaces

  - Locator: acquires the user's position (geolocation boundary).
  - Completer: sends one prompt + schema to a generative model (generation service boundary).
  - RouteGenerator: turns a position and preferences into a validated route.
  - MapLauncher: opens a deep link in an external maps application.
  - Controller: the view state machine, as consumed by the HTTP, MCP and terminal hosts.
*/
package ports
