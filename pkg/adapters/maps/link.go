// Package maps builds map deep links and hands them to an external application.
package maps

import (
	"strings"

	"github.com/aretw0/citywalk/pkg/domain"
)

// DefaultBaseURL is the Google Maps directions endpoint.
const DefaultBaseURL = "https://www.google.com/maps/dir/"

// Link builds a directions deep link to the destination:
// https://www.google.com/maps/dir/?api=1&destination=lat,lng
// The same coordinates always produce the same link.
func Link(baseURL string, dest domain.Coordinates) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	// dest.String() only yields digits, dots, signs and the comma, all valid in a query.
	return baseURL + sep + "api=1&destination=" + dest.String()
}
