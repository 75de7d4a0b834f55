package audit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Config configures a Trail.
type Config struct {
	// Sink receives serialized events. Default: NewFileSink().
	Sink Sink

	// Logger receives operational output (write failures, breaker
	// transitions). Default: zap.NewNop().
	Logger *zap.Logger

	// MaxFailures is the number of consecutive sink failures before events
	// are dropped instead of written. Default: 5.
	MaxFailures int

	// Cooldown is how long to keep dropping before probing the sink again.
	// Default: 30 seconds.
	Cooldown time.Duration
}

// Trail records audit events to a durable sink. Recording is best-effort:
// failures are logged and counted, never panicked, and callers may ignore
// the returned errors. Safe for concurrent use.
type Trail struct {
	sink    Sink
	logger  *zap.Logger
	breaker *breaker
	dropped atomic.Int64
	now     func() time.Time
}

// New creates an audit trail.
func New(config ...Config) *Trail {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Sink == nil {
		cfg.Sink = NewFileSink()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Trail{
		sink:    cfg.Sink,
		logger:  cfg.Logger,
		breaker: newBreaker(cfg.MaxFailures, cfg.Cooldown),
		now:     time.Now,
	}
}

var validEventTypes = map[EventType]bool{
	EventAuthSuccess:       true,
	EventAuthFailure:       true,
	EventAccessDenied:      true,
	EventConfigChange:      true,
	EventPhaseChange:       true,
	EventChaosInjection:    true,
	EventAPIAccess:         true,
	EventAdminAction:       true,
	EventSecurityViolation: true,
}

// RecordEvent records one audit event. Zero-value fields are filled in:
// timestamp, default severity for the type, and "unknown" actor/address.
func (t *Trail) RecordEvent(ctx context.Context, event Event) error {
	if !validEventTypes[event.Type] {
		return fmt.Errorf("%w: %q", ErrInvalidEventType, event.Type)
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = t.now()
	}
	if event.Severity == "" {
		event.Severity = DefaultSeverity(event.Type)
	}
	if event.User == "" {
		event.User = "unknown"
	}
	if event.IP == "" {
		event.IP = "unknown"
	}

	if !t.breaker.allow() {
		t.dropped.Add(1)
		return ErrEventDropped
	}

	err := t.sink.Write(ctx, event)
	if t.breaker.record(err) {
		t.logger.Error("audit sink failing, dropping events until it recovers",
			zap.String("sink", t.sink.Name()),
			zap.Error(err))
	}
	if err != nil {
		t.dropped.Add(1)
		t.logger.Warn("audit event write failed",
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return fmt.Errorf("audit: record event: %w", err)
	}
	return nil
}

// Dropped returns how many events were lost to sink failures or an open
// breaker.
func (t *Trail) Dropped() int64 {
	return t.dropped.Load()
}

// Close closes the underlying sink.
func (t *Trail) Close() error {
	return t.sink.Close()
}

// AuthSuccess records a successful authentication.
func (t *Trail) AuthSuccess(ctx context.Context, user, ip, method string) error {
	return t.RecordEvent(ctx, Event{
		Type:     EventAuthSuccess,
		User:     user,
		IP:       ip,
		Resource: "authentication",
		Action:   "login",
		Details:  map[string]any{"method": method},
	})
}

// AuthFailure records a failed authentication attempt.
func (t *Trail) AuthFailure(ctx context.Context, user, ip, reason string) error {
	return t.RecordEvent(ctx, Event{
		Type:     EventAuthFailure,
		User:     user,
		IP:       ip,
		Resource: "authentication",
		Action:   "login_attempt",
		Details:  map[string]any{"reason": reason},
	})
}

// AccessDenied records a denied access attempt on a resource.
func (t *Trail) AccessDenied(ctx context.Context, user, ip, resource, requiredPermission string) error {
	return t.RecordEvent(ctx, Event{
		Type:     EventAccessDenied,
		User:     user,
		IP:       ip,
		Resource: resource,
		Action:   "access_denied",
		Details:  map[string]any{"required_permission": requiredPermission},
	})
}

// ConfigChange records a configuration value change.
func (t *Trail) ConfigChange(ctx context.Context, user, ip, key string, oldValue, newValue any) error {
	return t.RecordEvent(ctx, Event{
		Type:     EventConfigChange,
		User:     user,
		IP:       ip,
		Resource: "configuration",
		Action:   "change",
		Details: map[string]any{
			"config_key": key,
			"old_value":  fmt.Sprintf("%v", oldValue),
			"new_value":  fmt.Sprintf("%v", newValue),
		},
	})
}

// PhaseChange records an operational phase transition.
func (t *Trail) PhaseChange(ctx context.Context, user, ip, oldPhase, newPhase string, force bool) error {
	return t.RecordEvent(ctx, Event{
		Type:     EventPhaseChange,
		User:     user,
		IP:       ip,
		Resource: "mission_phase",
		Action:   "change",
		Details: map[string]any{
			"old_phase": oldPhase,
			"new_phase": newPhase,
			"force":     force,
		},
	})
}

// ChaosInjection records a fault injection.
func (t *Trail) ChaosInjection(ctx context.Context, user, ip, faultType string, duration time.Duration) error {
	return t.RecordEvent(ctx, Event{
		Type:     EventChaosInjection,
		User:     user,
		IP:       ip,
		Resource: "chaos_engine",
		Action:   "inject_fault",
		Details: map[string]any{
			"fault_type":       faultType,
			"duration_seconds": int(duration.Seconds()),
		},
	})
}

// APIAccess records an API request.
func (t *Trail) APIAccess(ctx context.Context, user, ip, endpoint, method string, statusCode int) error {
	return t.RecordEvent(ctx, Event{
		Type:     EventAPIAccess,
		User:     user,
		IP:       ip,
		Resource: endpoint,
		Action:   method,
		Details:  map[string]any{"status_code": statusCode},
	})
}

// AdminAction records an administrative action.
func (t *Trail) AdminAction(ctx context.Context, user, ip, action string, details map[string]any) error {
	return t.RecordEvent(ctx, Event{
		Type:     EventAdminAction,
		User:     user,
		IP:       ip,
		Resource: "admin",
		Action:   action,
		Details:  details,
	})
}

// SecurityViolation records a detected security violation.
func (t *Trail) SecurityViolation(ctx context.Context, user, ip, violationType string, details map[string]any) error {
	merged := map[string]any{"violation_type": violationType}
	for k, v := range details {
		merged[k] = v
	}
	return t.RecordEvent(ctx, Event{
		Type:     EventSecurityViolation,
		User:     user,
		IP:       ip,
		Resource: "security",
		Action:   "violation",
		Details:  merged,
	})
}
