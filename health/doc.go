// Package health provides a live health registry for operational components.
//
// This package implements a push-based health registry: components report
// their own status transitions (healthy, degraded, failed) and the registry
// derives a single system-wide status from the full set of reports. Status
// endpoints and dashboards read consistent snapshots at any time, concurrently
// with reporters.
//
// # Core Concepts
//
// A component is any named subsystem that reports its operational state.
// Each component has exactly one ComponentHealth record, keyed by name.
// Records are never absent: referencing an unseen name auto-registers it
// with StatusUnknown.
//
// # Basic Usage
//
//	reg := health.New()
//
//	reg.Register("telemetry", health.Metadata{"version": "1.2.0"})
//	reg.MarkDegraded("telemetry", "uplink timeout", true, nil)
//
//	if reg.IsDegraded() {
//	    log.Println("system degraded")
//	}
//
// # System Status
//
// The aggregate is recomputed after every mutation, under the same critical
// section. A failed component degrades the system rather than failing it:
// the aggregate models partial-failure tolerance, and callers needing
// per-component failure detail use Component or All.
//
//	report := reg.SystemStatus(ctx)
//	fmt.Println(report.OverallStatus, report.ComponentCounts.Total)
//
// # Resource Monitoring
//
// A ResourceChecker collaborator can be wired in via Config. All and
// SystemStatus then include a synthetic "system_resources" entry derived
// from the collaborator's verdict. Collaborator failures never propagate:
// they surface as an Unknown-status entry with the failure reason attached.
//
// # Shared Handle
//
// Most programs construct a Registry at their composition root and inject
// it. Where one shared handle is genuinely required, Default returns a
// lazily-initialized package-level instance, and Reset swaps it out so test
// suites start from a clean state.
package health
