package health

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestRegistry_Register(t *testing.T) {
	reg := New()
	reg.Register("telemetry", Metadata{"version": "1.0"})

	c := reg.Component("telemetry")
	if c.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy", c.Status)
	}
	if c.LastUpdated.IsZero() {
		t.Error("LastUpdated should be set")
	}
	if c.ErrorCount != 0 || c.WarningCount != 0 {
		t.Errorf("counters = %d/%d, want 0/0", c.ErrorCount, c.WarningCount)
	}
	if c.Metadata["version"] != "1.0" {
		t.Errorf("Metadata[version] = %v, want '1.0'", c.Metadata["version"])
	}
}

func TestRegistry_ReRegisterResetsCounters(t *testing.T) {
	reg := New()
	reg.MarkFailed("comms", "link down", nil)
	reg.MarkDegraded("comms", "link flapping", true, nil)

	reg.Register("comms", nil)

	c := reg.Component("comms")
	if c.ErrorCount != 0 || c.WarningCount != 0 {
		t.Errorf("counters after re-register = %d/%d, want 0/0", c.ErrorCount, c.WarningCount)
	}
	if c.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy", c.Status)
	}
}

func TestRegistry_MarkHealthy_MergesMetadata(t *testing.T) {
	reg := New()
	reg.Register("c", Metadata{"a": 1})
	reg.MarkHealthy("c", Metadata{"b": 2})

	c := reg.Component("c")
	if c.Metadata["a"] != 1 {
		t.Errorf("Metadata[a] = %v, want 1", c.Metadata["a"])
	}
	if c.Metadata["b"] != 2 {
		t.Errorf("Metadata[b] = %v, want 2", c.Metadata["b"])
	}
}

func TestRegistry_MarkHealthy_ClearsFallback(t *testing.T) {
	reg := New()
	reg.MarkDegraded("cache", "evicting", true, nil)

	if c := reg.Component("cache"); !c.FallbackActive {
		t.Fatal("FallbackActive should be true after MarkDegraded")
	}

	reg.MarkHealthy("cache", nil)

	if c := reg.Component("cache"); c.FallbackActive {
		t.Error("FallbackActive should be cleared by MarkHealthy")
	}
}

func TestRegistry_MarkDegraded(t *testing.T) {
	reg := New()
	reg.MarkDegraded("uplink", "timeout", true, Metadata{"retries": 3})

	c := reg.Component("uplink")
	if c.Status != StatusDegraded {
		t.Errorf("Status = %v, want StatusDegraded", c.Status)
	}
	if c.WarningCount != 1 {
		t.Errorf("WarningCount = %d, want 1", c.WarningCount)
	}
	if c.LastError != "timeout" {
		t.Errorf("LastError = %q, want 'timeout'", c.LastError)
	}
	if c.LastErrorTime == nil {
		t.Error("LastErrorTime should be set")
	}
	if !c.FallbackActive {
		t.Error("FallbackActive should be true")
	}
	if c.Metadata["retries"] != 3 {
		t.Errorf("Metadata[retries] = %v, want 3", c.Metadata["retries"])
	}
}

func TestRegistry_MarkFailed(t *testing.T) {
	reg := New()
	reg.MarkDegraded("x", "slow", true, nil)
	reg.MarkFailed("x", "dead", nil)

	c := reg.Component("x")
	if c.Status != StatusFailed {
		t.Errorf("Status = %v, want StatusFailed", c.Status)
	}
	if c.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", c.ErrorCount)
	}
	if c.LastError != "dead" {
		t.Errorf("LastError = %q, want 'dead'", c.LastError)
	}
	// Failure does not imply a fallback change.
	if !c.FallbackActive {
		t.Error("FallbackActive should be unchanged by MarkFailed")
	}
}

func TestRegistry_MarkFailed_EmptyMessage(t *testing.T) {
	reg := New()
	reg.MarkFailed("y", "", nil)

	c := reg.Component("y")
	if c.Status != StatusFailed {
		t.Errorf("Status = %v, want StatusFailed", c.Status)
	}
	if c.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", c.ErrorCount)
	}
}

func TestRegistry_Component_AutoRegisters(t *testing.T) {
	reg := New()

	c := reg.Component("never-seen")
	if c.Status != StatusUnknown {
		t.Errorf("Status = %v, want StatusUnknown", c.Status)
	}
	if c.LastUpdated.IsZero() {
		t.Error("auto-registration should stamp LastUpdated")
	}

	all := reg.All(context.Background())
	if _, ok := all["never-seen"]; !ok {
		t.Error("All() should include the auto-registered component")
	}
}

func TestRegistry_ComponentSnapshotIsDetached(t *testing.T) {
	reg := New()
	reg.Register("svc", Metadata{"n": 1})

	c := reg.Component("svc")
	c.Metadata["n"] = 99

	if got := reg.Component("svc"); got.Metadata["n"] != 1 {
		t.Error("mutating a returned record leaked into the registry")
	}
}

func TestAggregate(t *testing.T) {
	mk := func(statuses ...Status) map[string]*ComponentHealth {
		out := make(map[string]*ComponentHealth, len(statuses))
		for i, s := range statuses {
			name := fmt.Sprintf("c%d", i)
			out[name] = &ComponentHealth{Name: name, Status: s}
		}
		return out
	}

	tests := []struct {
		name       string
		components map[string]*ComponentHealth
		want       Status
	}{
		{"empty", mk(), StatusUnknown},
		{"all healthy", mk(StatusHealthy), StatusHealthy},
		{"one failed", mk(StatusHealthy, StatusFailed), StatusDegraded},
		{"one degraded", mk(StatusHealthy, StatusDegraded), StatusDegraded},
		{"failed and degraded", mk(StatusFailed, StatusDegraded), StatusDegraded},
		{"unknown counts as healthy", mk(StatusUnknown, StatusHealthy), StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := aggregate(tt.components); got != tt.want {
				t.Errorf("aggregate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegistry_SystemDegradedOnFailure(t *testing.T) {
	reg := New()
	reg.MarkHealthy("a", nil)
	reg.MarkFailed("b", "down", nil)

	// A failed component degrades the system, it never fails it.
	if reg.IsHealthy() {
		t.Error("IsHealthy() should be false with a failed component")
	}
	if !reg.IsDegraded() {
		t.Error("IsDegraded() should be true with a failed component")
	}

	report := reg.SystemStatus(context.Background())
	if report.OverallStatus != StatusDegraded {
		t.Errorf("OverallStatus = %v, want StatusDegraded", report.OverallStatus)
	}
}

func TestRegistry_SystemHealthyWhenAllHealthy(t *testing.T) {
	reg := New()
	reg.MarkHealthy("a", nil)
	reg.MarkHealthy("b", nil)

	if !reg.IsHealthy() {
		t.Error("IsHealthy() should be true")
	}
	if reg.IsDegraded() {
		t.Error("IsDegraded() should be false")
	}
}

func TestRegistry_SystemRecovers(t *testing.T) {
	reg := New()
	reg.MarkDegraded("a", "blip", true, nil)
	reg.MarkHealthy("a", nil)

	if !reg.IsHealthy() {
		t.Error("system should recover to healthy once all components are healthy")
	}
}

func TestRegistry_SystemStatus_Counts(t *testing.T) {
	reg := New()
	reg.MarkHealthy("a", nil)
	reg.MarkHealthy("b", nil)
	reg.MarkDegraded("c", "slow", true, nil)
	reg.MarkFailed("d", "down", nil)
	reg.Component("e") // auto-registered, unknown

	report := reg.SystemStatus(context.Background())

	counts := report.ComponentCounts
	if counts.Healthy != 2 {
		t.Errorf("Healthy = %d, want 2", counts.Healthy)
	}
	if counts.Degraded != 1 {
		t.Errorf("Degraded = %d, want 1", counts.Degraded)
	}
	if counts.Failed != 1 {
		t.Errorf("Failed = %d, want 1", counts.Failed)
	}
	if counts.Total != 5 {
		t.Errorf("Total = %d, want 5", counts.Total)
	}

	// Snapshot carries the synthetic resource entry on top of the records.
	if len(report.Components) != 6 {
		t.Errorf("len(Components) = %d, want 6", len(report.Components))
	}
	if _, ok := report.Components[ResourceComponentName]; !ok {
		t.Error("Components should include the system_resources entry")
	}
}

func TestRegistry_Reset(t *testing.T) {
	reg := New()
	reg.MarkFailed("a", "down", nil)
	reg.Reset()

	if !reg.IsHealthy() {
		t.Error("IsHealthy() should be true after Reset")
	}

	report := reg.SystemStatus(context.Background())
	if report.OverallStatus != StatusHealthy {
		t.Errorf("OverallStatus = %v, want StatusHealthy", report.OverallStatus)
	}
	if report.ComponentCounts.Total != 0 {
		t.Errorf("Total = %d, want 0", report.ComponentCounts.Total)
	}
}

func TestRegistry_ConcurrentDistinctComponents(t *testing.T) {
	const n = 64

	reg := New()

	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(n)

	for i := 0; i < n; i++ {
		go func(i int) {
			defer done.Done()
			start.Wait()

			name := fmt.Sprintf("worker-%d", i)
			switch i % 3 {
			case 0:
				reg.MarkHealthy(name, Metadata{"idx": i})
			case 1:
				reg.MarkDegraded(name, "wobbly", true, Metadata{"idx": i})
			default:
				reg.MarkFailed(name, "broken", Metadata{"idx": i})
			}
		}(i)
	}

	start.Done()
	done.Wait()

	all := reg.All(context.Background())
	delete(all, ResourceComponentName)

	if len(all) != n {
		t.Fatalf("len(All()) = %d, want %d", len(all), n)
	}
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("worker-%d", i)
		c, ok := all[name]
		if !ok {
			t.Fatalf("lost update: %s missing", name)
		}
		if c.Metadata["idx"] != i {
			t.Errorf("%s Metadata[idx] = %v, want %d", name, c.Metadata["idx"], i)
		}
		want := []Status{StatusHealthy, StatusDegraded, StatusFailed}[i%3]
		if c.Status != want {
			t.Errorf("%s Status = %v, want %v (fields from two calls?)", name, c.Status, want)
		}
	}
}

func TestRegistry_ConcurrentSameComponent(t *testing.T) {
	const n = 32

	reg := New()

	var wg sync.WaitGroup
	wg.Add(n * 2)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			reg.MarkDegraded("shared", "contended", true, nil)
		}()
		go func() {
			defer wg.Done()
			_ = reg.SystemStatus(context.Background())
		}()
	}
	wg.Wait()

	c := reg.Component("shared")
	if c.WarningCount != n {
		t.Errorf("WarningCount = %d, want %d", c.WarningCount, n)
	}
}
