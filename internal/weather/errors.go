package weather

import (
	"fmt"
	"strings"
)

// StatusCodeDocs is where QWeather documents its status codes.
const StatusCodeDocs = "https://dev.qweather.com/docs/start/status-code/"

// ConfigError reports missing or inconsistent configuration. It is raised
// before any network call whenever possible.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Msg
}

// CityNotFoundError means the provider had no match for the location text.
type CityNotFoundError struct {
	Location string
}

func (e *CityNotFoundError) Error() string {
	return fmt.Sprintf("city not found: %q", e.Location)
}

// TransportError wraps a network failure or a non-2xx HTTP status.
// StatusCode is 0 when no response was received.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error: http status %d", e.StatusCode)
	}
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FacetStatus is the status code one facet reported.
type FacetStatus struct {
	Facet string
	Code  string
}

// APIError means the provider answered, but with a non-success status for
// the city lookup or for one or more facets.
type APIError struct {
	Code   string
	Facets []FacetStatus
}

func (e *APIError) Error() string {
	if len(e.Facets) == 0 {
		return fmt.Sprintf("api error code %s, refer to %s", e.Code, StatusCodeDocs)
	}
	parts := make([]string, 0, len(e.Facets))
	for _, f := range e.Facets {
		parts = append(parts, f.Facet+": "+f.Code)
	}
	return fmt.Sprintf("api validation failed: %s, refer to %s", strings.Join(parts, ", "), StatusCodeDocs)
}

// HasFacet reports whether the named facet is among the failing ones.
func (e *APIError) HasFacet(name string) bool {
	for _, f := range e.Facets {
		if f.Facet == name {
			return true
		}
	}
	return false
}
