package audit

import "time"

// EventType identifies the kind of audit event. The taxonomy is closed:
// every recorded event carries one of these types.
type EventType string

const (
	EventAuthSuccess       EventType = "auth_success"
	EventAuthFailure       EventType = "auth_failure"
	EventAccessDenied      EventType = "access_denied"
	EventConfigChange      EventType = "config_change"
	EventPhaseChange       EventType = "phase_change"
	EventChaosInjection    EventType = "chaos_injection"
	EventAPIAccess         EventType = "api_access"
	EventAdminAction       EventType = "admin_action"
	EventSecurityViolation EventType = "security_violation"
)

// Severity is the leveled-logging severity of an audit event.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// DefaultSeverity returns the severity an event type carries unless the
// caller overrides it.
func DefaultSeverity(eventType EventType) Severity {
	switch eventType {
	case EventSecurityViolation:
		return SeverityError
	case EventAuthFailure, EventAccessDenied, EventChaosInjection:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Event is a single audit record.
type Event struct {
	// Timestamp is when the event occurred. Filled by the trail if zero.
	Timestamp time.Time `json:"timestamp"`

	// Type is the event's taxonomy entry.
	Type EventType `json:"type"`

	// Severity defaults to DefaultSeverity(Type) when empty.
	Severity Severity `json:"severity"`

	// User is the actor identity, "unknown" if not supplied.
	User string `json:"user"`

	// IP is the source address, "unknown" if not supplied.
	IP string `json:"ip"`

	// Resource is the target of the action.
	Resource string `json:"resource"`

	// Action is the verb performed on the resource.
	Action string `json:"action"`

	// Details is an open key-value payload, flattened at serialization.
	Details map[string]any `json:"details,omitempty"`
}
