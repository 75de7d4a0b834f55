package health

import "time"

// Metadata is an open key-value mapping attached to a component record.
// Values must round-trip through encoding/json: strings, numbers, booleans,
// and nested maps or slices of the same.
type Metadata map[string]any

// merge copies the entries of other into m, overwriting existing keys and
// preserving untouched ones.
func (m Metadata) merge(other Metadata) {
	for k, v := range other {
		m[k] = v
	}
}

// clone returns a deep copy of m so callers cannot mutate registry state
// through a returned snapshot.
func (m Metadata) clone() Metadata {
	if m == nil {
		return Metadata{}
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = cloneValue(inner)
		}
		return out
	case Metadata:
		return map[string]any(val.clone())
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}

// ComponentHealth is the health record of a single component.
type ComponentHealth struct {
	// Name uniquely identifies the component.
	Name string `json:"name"`

	// Status is the component's current health status.
	Status Status `json:"status"`

	// LastUpdated is when the record was last mutated, including
	// auto-registration.
	LastUpdated time.Time `json:"last_updated"`

	// ErrorCount is how many times the component was marked failed.
	// Monotonic until a full registry reset.
	ErrorCount int `json:"error_count"`

	// WarningCount is how many times the component was marked degraded.
	// Monotonic until a full registry reset.
	WarningCount int `json:"warning_count"`

	// LastError is the most recent error message, empty until the first
	// degradation or failure.
	LastError string `json:"last_error,omitempty"`

	// LastErrorTime is when LastError was recorded.
	LastErrorTime *time.Time `json:"last_error_time,omitempty"`

	// FallbackActive reports whether the component is running a degraded
	// substitute code path. Cleared when the component is marked healthy.
	FallbackActive bool `json:"fallback_active"`

	// Metadata holds arbitrary component details, merged on each mutation.
	Metadata Metadata `json:"metadata"`
}

// clone returns a deep copy of the record.
func (c *ComponentHealth) clone() ComponentHealth {
	out := *c
	out.Metadata = c.Metadata.clone()
	if c.LastErrorTime != nil {
		t := *c.LastErrorTime
		out.LastErrorTime = &t
	}
	return out
}
