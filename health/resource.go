package health

import (
	"context"
	"time"
)

// ResourceComponentName is the synthetic component under which resource
// monitoring results appear in All and SystemStatus snapshots.
const ResourceComponentName = "system_resources"

// Verdict is the overall outcome of a resource check.
type Verdict string

const (
	// VerdictOK means all resource probes are below their warning thresholds.
	VerdictOK Verdict = "ok"
	// VerdictWarning means at least one probe crossed its warning threshold.
	VerdictWarning Verdict = "warning"
	// VerdictCritical means at least one probe crossed its critical threshold.
	VerdictCritical Verdict = "critical"
	// VerdictUnknown means the check could not be performed.
	VerdictUnknown Verdict = "unknown"
)

// Status maps a resource verdict onto a component status.
func (v Verdict) Status() Status {
	switch v {
	case VerdictOK:
		return StatusHealthy
	case VerdictWarning:
		return StatusDegraded
	case VerdictCritical:
		return StatusFailed
	default:
		return StatusUnknown
	}
}

// ResourceStatus is the result of a resource check.
type ResourceStatus struct {
	// Overall is the worst verdict across all probes.
	Overall Verdict `json:"overall"`

	// Checks holds the per-probe verdicts (cpu, memory, disk).
	Checks map[string]Verdict `json:"checks,omitempty"`

	// Metrics holds the raw samples behind the verdicts.
	Metrics Metadata `json:"metrics,omitempty"`

	// Thresholds holds the configured warning/critical levels, for
	// introspection by dashboards.
	Thresholds Metadata `json:"thresholds,omitempty"`
}

// ResourceChecker samples system resources and evaluates them against
// configured thresholds. The registry treats it as a read-only, potentially
// slow or faulty collaborator: it is invoked outside the registry's lock and
// any error is converted into an Unknown-status record rather than
// propagated.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines.
type ResourceChecker interface {
	CheckResources(ctx context.Context) (ResourceStatus, error)
}

// ResourceReport is the detailed resource view returned by
// Registry.ResourceHealth, shaped for direct JSON serialization.
type ResourceReport struct {
	Status     Verdict            `json:"status"`
	Metrics    Metadata           `json:"metrics,omitempty"`
	Thresholds Metadata           `json:"thresholds,omitempty"`
	Checks     map[string]Verdict `json:"checks,omitempty"`
	Error      string             `json:"error,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}
