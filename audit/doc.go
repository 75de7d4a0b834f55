// Package audit provides an append-only audit trail for security-relevant
// and administrative events.
//
// Events are drawn from a closed taxonomy (authentication outcomes, access
// denials, configuration changes, and so on), serialized as one structured
// line each, and appended to a durable sink. The default FileSink rotates by
// size and retains a bounded number of prior segments.
//
//	trail := audit.New(audit.Config{
//	    Sink: audit.NewFileSink(audit.FileSinkConfig{Path: "logs/audit.log"}),
//	})
//	defer trail.Close()
//
//	trail.AuthFailure(ctx, "mallory", "203.0.113.7", "bad password")
//
// Recording is best-effort: sink failures are logged and counted, never
// surfaced as panics, and a circuit breaker stops a persistently failing sink
// from stalling callers. Dropped reports how many events were lost that way.
package audit
