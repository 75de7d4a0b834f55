package audit

import "errors"

var (
	// ErrEventDropped indicates an event was discarded because the sink is
	// unavailable and the breaker is open.
	ErrEventDropped = errors.New("audit: event dropped, sink unavailable")

	// ErrInvalidEventType indicates an event type outside the taxonomy.
	ErrInvalidEventType = errors.New("audit: invalid event type")
)
