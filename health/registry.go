package health

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Config configures a Registry.
type Config struct {
	// Logger receives operational log output. Default: zap.NewNop().
	Logger *zap.Logger

	// Meter instruments status transitions. Default: no-op meter.
	Meter metric.Meter

	// Resources is the optional resource-metrics collaborator merged into
	// snapshots as the "system_resources" entry. Default: none; the entry
	// is then reported with StatusUnknown.
	Resources ResourceChecker
}

// Registry tracks per-component health records and derives one system-wide
// status from them. All methods are safe for concurrent use; mutations are
// atomic and readers always observe a consistent snapshot.
type Registry struct {
	logger    *zap.Logger
	metrics   *registryMetrics
	resources ResourceChecker

	mu         sync.Mutex
	components map[string]*ComponentHealth
	system     Status
}

// New creates a new health registry.
func New(config ...Config) *Registry {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := &Registry{
		logger:     cfg.Logger,
		resources:  cfg.Resources,
		components: make(map[string]*ComponentHealth),
		system:     StatusHealthy,
	}
	r.metrics = newRegistryMetrics(cfg.Meter)
	return r
}

// Register inserts (or overwrites) a component record with StatusHealthy,
// the current timestamp, zero counters, and the given metadata.
// Re-registration resets counters.
func (r *Registry) Register(name string, metadata Metadata) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.registerLocked(name, metadata)
	r.logger.Debug("component registered", zap.String("component", name))
}

// MarkHealthy sets the component to StatusHealthy, clears its fallback flag,
// and merges metadata. The component is registered first if unseen.
func (r *Registry) MarkHealthy(name string, metadata Metadata) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.componentForMarkLocked(name, metadata)
	c.Status = StatusHealthy
	c.LastUpdated = time.Now()
	c.FallbackActive = false
	c.Metadata.merge(metadata)

	r.recomputeLocked()
	r.metrics.recordTransition(name, StatusHealthy)
	r.logger.Debug("component marked healthy", zap.String("component", name))
}

// MarkDegraded sets the component to StatusDegraded, increments its warning
// counter, records the error message, sets its fallback flag to
// fallbackActive, and merges metadata. The component is registered first if
// unseen.
func (r *Registry) MarkDegraded(name, errMsg string, fallbackActive bool, metadata Metadata) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	c := r.componentForMarkLocked(name, metadata)
	c.Status = StatusDegraded
	c.WarningCount++
	c.LastError = errMsg
	c.LastErrorTime = &now
	c.LastUpdated = now
	c.FallbackActive = fallbackActive
	c.Metadata.merge(metadata)

	r.recomputeLocked()
	r.metrics.recordTransition(name, StatusDegraded)
	r.logger.Warn("component marked degraded",
		zap.String("component", name),
		zap.String("error", errMsg),
		zap.Bool("fallback_active", fallbackActive))
}

// MarkFailed sets the component to StatusFailed, increments its error
// counter, records the error message, and merges metadata. The fallback flag
// is left untouched: failure does not imply a fallback state change, callers
// who activate a fallback say so via MarkDegraded. The component is
// registered first if unseen.
func (r *Registry) MarkFailed(name, errMsg string, metadata Metadata) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	c := r.componentForMarkLocked(name, metadata)
	c.Status = StatusFailed
	c.ErrorCount++
	c.LastError = errMsg
	c.LastErrorTime = &now
	c.LastUpdated = now
	c.Metadata.merge(metadata)

	r.recomputeLocked()
	r.metrics.recordTransition(name, StatusFailed)
	r.logger.Error("component marked failed",
		zap.String("component", name),
		zap.String("error", errMsg))
}

// Component returns the current record for name as an independent copy.
// An unseen name is auto-registered with StatusUnknown: lookups never report
// absence, and the auto-registration is itself a recorded mutation.
func (r *Registry) Component(name string) ComponentHealth {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.components[name]
	if !ok {
		c = &ComponentHealth{
			Name:        name,
			Status:      StatusUnknown,
			LastUpdated: time.Now(),
			Metadata:    Metadata{},
		}
		r.components[name] = c
		r.logger.Debug("component auto-registered", zap.String("component", name))
	}
	return c.clone()
}

// All returns a snapshot of every component record plus the synthetic
// "system_resources" entry derived from the resource collaborator. The
// returned records share no state with the registry. A collaborator failure
// never propagates: the synthetic entry is then StatusUnknown with the
// failure reason as its last error.
func (r *Registry) All(ctx context.Context) map[string]ComponentHealth {
	r.mu.Lock()
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	// Collaborator call stays outside the lock: it may be slow or faulty
	// and must not stall concurrent mutations.
	snapshot[ResourceComponentName] = r.resourceComponent(ctx)
	return snapshot
}

// SystemReport is the full system view returned by SystemStatus, shaped for
// direct JSON serialization.
type SystemReport struct {
	OverallStatus   Status                     `json:"overall_status"`
	Timestamp       time.Time                  `json:"timestamp"`
	ComponentCounts ComponentCounts            `json:"component_counts"`
	Components      map[string]ComponentHealth `json:"components"`
}

// ComponentCounts tallies components by status. Total counts every distinct
// component ever registered or mutated; the synthetic resource entry is not
// included.
type ComponentCounts struct {
	Healthy  int `json:"healthy"`
	Degraded int `json:"degraded"`
	Failed   int `json:"failed"`
	Total    int `json:"total"`
}

// SystemStatus returns the aggregate status together with per-status counts
// and the full component snapshot.
func (r *Registry) SystemStatus(ctx context.Context) SystemReport {
	r.mu.Lock()
	overall := r.system
	counts := ComponentCounts{Total: len(r.components)}
	for _, c := range r.components {
		switch c.Status {
		case StatusHealthy:
			counts.Healthy++
		case StatusDegraded:
			counts.Degraded++
		case StatusFailed:
			counts.Failed++
		}
	}
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	snapshot[ResourceComponentName] = r.resourceComponent(ctx)

	return SystemReport{
		OverallStatus:   overall,
		Timestamp:       time.Now(),
		ComponentCounts: counts,
		Components:      snapshot,
	}
}

// ResourceHealth returns the detailed resource view from the collaborator.
// Collaborator errors are reported in the Error field, never returned.
func (r *Registry) ResourceHealth(ctx context.Context) ResourceReport {
	report := ResourceReport{Status: VerdictUnknown, Timestamp: time.Now()}

	if r.resources == nil {
		report.Error = ErrNoResourceChecker.Error()
		return report
	}

	status, err := r.resources.CheckResources(ctx)
	if err != nil {
		r.logger.Warn("resource health check failed", zap.Error(err))
		report.Error = err.Error()
		return report
	}

	report.Status = status.Overall
	report.Metrics = status.Metrics.clone()
	report.Thresholds = status.Thresholds.clone()
	report.Checks = status.Checks
	return report
}

// IsHealthy reports whether the aggregate status is healthy.
func (r *Registry) IsHealthy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.system == StatusHealthy
}

// IsDegraded reports whether the aggregate status is degraded.
func (r *Registry) IsDegraded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.system == StatusDegraded
}

// Reset clears every component record and restores the aggregate to healthy.
// Intended for test harness isolation, not production recovery.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.components = make(map[string]*ComponentHealth)
	r.system = StatusHealthy
	r.logger.Info("health registry reset")
}

// registerLocked inserts a fresh healthy record for name, overwriting any
// existing one.
func (r *Registry) registerLocked(name string, metadata Metadata) *ComponentHealth {
	c := &ComponentHealth{
		Name:        name,
		Status:      StatusHealthy,
		LastUpdated: time.Now(),
		Metadata:    metadata.clone(),
	}
	r.components[name] = c
	return c
}

// componentForMarkLocked is the get-or-create step shared by the mark
// operations: an unseen name is registered healthy before the caller applies
// the transition.
func (r *Registry) componentForMarkLocked(name string, metadata Metadata) *ComponentHealth {
	if c, ok := r.components[name]; ok {
		return c
	}
	return r.registerLocked(name, metadata)
}

// recomputeLocked derives the aggregate from the current records. Runs under
// the same critical section as the triggering mutation so the aggregate is
// never computed from a half-updated view.
func (r *Registry) recomputeLocked() {
	r.system = aggregate(r.components)
}

// aggregate applies the system-status policy: no components means unknown;
// any failed or degraded component degrades the whole system; otherwise the
// system is healthy. A failed component is deliberately downgraded to a
// system-level degraded, never failed: the aggregate models partial-failure
// tolerance and per-component failure detail lives in the records themselves.
func aggregate(components map[string]*ComponentHealth) Status {
	if len(components) == 0 {
		return StatusUnknown
	}

	degraded := false
	for _, c := range components {
		switch c.Status {
		case StatusFailed, StatusDegraded:
			degraded = true
		}
	}

	if degraded {
		return StatusDegraded
	}
	return StatusHealthy
}

func (r *Registry) snapshotLocked() map[string]ComponentHealth {
	out := make(map[string]ComponentHealth, len(r.components)+1)
	for name, c := range r.components {
		out[name] = c.clone()
	}
	return out
}

// resourceComponent builds the synthetic record for the resource
// collaborator. Never called while holding the registry lock.
func (r *Registry) resourceComponent(ctx context.Context) ComponentHealth {
	now := time.Now()

	fail := func(err error) ComponentHealth {
		return ComponentHealth{
			Name:          ResourceComponentName,
			Status:        StatusUnknown,
			LastUpdated:   now,
			LastError:     err.Error(),
			LastErrorTime: &now,
			Metadata:      Metadata{"error": "resource monitoring unavailable"},
		}
	}

	if r.resources == nil {
		return fail(ErrNoResourceChecker)
	}

	status, err := r.resources.CheckResources(ctx)
	if err != nil {
		r.logger.Warn("resource health check failed", zap.Error(err))
		return fail(err)
	}

	meta := status.Metrics.clone()
	meta["resource_status"] = string(status.Overall)
	for probe, verdict := range status.Checks {
		meta["check_"+probe] = string(verdict)
	}

	return ComponentHealth{
		Name:        ResourceComponentName,
		Status:      status.Overall.Status(),
		LastUpdated: now,
		Metadata:    meta,
	}
}
