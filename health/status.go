package health

import "fmt"

// Status represents the health status of a component.
type Status int

const (
	// StatusUnknown indicates the component has been seen but never reported.
	StatusUnknown Status = iota
	// StatusHealthy indicates the component is functioning normally.
	StatusHealthy
	// StatusDegraded indicates the component is functioning but with issues,
	// possibly through a fallback path.
	StatusDegraded
	// StatusFailed indicates the component is not functioning.
	StatusFailed
)

// String returns the stable string encoding of the status. This encoding is
// the serialization-boundary representation; internal logic dispatches on the
// typed value.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the status as its string form.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes a status from its string form.
func (s *Status) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"healthy"`:
		*s = StatusHealthy
	case `"degraded"`:
		*s = StatusDegraded
	case `"failed"`:
		*s = StatusFailed
	case `"unknown"`:
		*s = StatusUnknown
	default:
		return fmt.Errorf("health: invalid status %s", data)
	}
	return nil
}
