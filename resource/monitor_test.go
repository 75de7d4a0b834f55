package resource

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonwraymond/opswatch/health"
)

func staticSample(m Metrics) func(context.Context) (Metrics, error) {
	return func(context.Context) (Metrics, error) {
		return m, nil
	}
}

func TestNewMonitor_Defaults(t *testing.T) {
	mon := NewMonitor()

	th := mon.Thresholds()
	if th["cpu_warning"] != 80.0 {
		t.Errorf("cpu_warning = %v, want 80", th["cpu_warning"])
	}
	if th["cpu_critical"] != 95.0 {
		t.Errorf("cpu_critical = %v, want 95", th["cpu_critical"])
	}
	if th["disk_warning"] != 85.0 {
		t.Errorf("disk_warning = %v, want 85", th["disk_warning"])
	}
	if mon.config.DiskPath != "/" {
		t.Errorf("DiskPath = %q, want '/'", mon.config.DiskPath)
	}
}

func TestNewMonitor_ClampsInvertedThresholds(t *testing.T) {
	mon := NewMonitor(Config{CPUWarning: 90, CPUCritical: 50})

	th := mon.Thresholds()
	if th["cpu_warning"] != 90.0 {
		t.Errorf("cpu_warning = %v, want 90", th["cpu_warning"])
	}
	if th["cpu_critical"].(float64) < 90 {
		t.Errorf("cpu_critical = %v, want >= warning", th["cpu_critical"])
	}
}

func TestCheckResources_Grades(t *testing.T) {
	tests := []struct {
		name    string
		metrics Metrics
		want    health.Verdict
	}{
		{"all ok", Metrics{CPUPercent: 10, MemoryPercent: 20, DiskUsagePercent: 30}, health.VerdictOK},
		{"cpu warning", Metrics{CPUPercent: 85, MemoryPercent: 20, DiskUsagePercent: 30}, health.VerdictWarning},
		{"memory critical", Metrics{CPUPercent: 10, MemoryPercent: 96, DiskUsagePercent: 30}, health.VerdictCritical},
		{"critical beats warning", Metrics{CPUPercent: 85, MemoryPercent: 96, DiskUsagePercent: 30}, health.VerdictCritical},
		{"disk at threshold", Metrics{CPUPercent: 10, MemoryPercent: 20, DiskUsagePercent: 85}, health.VerdictWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mon := NewMonitor(Config{Sample: staticSample(tt.metrics)})

			status, err := mon.CheckResources(context.Background())
			if err != nil {
				t.Fatalf("CheckResources() error = %v", err)
			}
			if status.Overall != tt.want {
				t.Errorf("Overall = %v, want %v", status.Overall, tt.want)
			}
		})
	}
}

func TestCheckResources_MetricsRounded(t *testing.T) {
	mon := NewMonitor(Config{Sample: staticSample(Metrics{
		CPUPercent:        12.3456,
		MemoryPercent:     45.678,
		DiskUsagePercent:  7.01,
		MemoryAvailableMB: 2048.7,
	})})

	status, err := mon.CheckResources(context.Background())
	if err != nil {
		t.Fatalf("CheckResources() error = %v", err)
	}

	if status.Metrics["cpu_percent"] != 12.3 {
		t.Errorf("cpu_percent = %v, want 12.3", status.Metrics["cpu_percent"])
	}
	if status.Metrics["memory_percent"] != 45.7 {
		t.Errorf("memory_percent = %v, want 45.7", status.Metrics["memory_percent"])
	}
	if status.Metrics["memory_available_mb"] != 2049.0 {
		t.Errorf("memory_available_mb = %v, want 2049", status.Metrics["memory_available_mb"])
	}
	if status.Thresholds["memory_critical"] != 95.0 {
		t.Errorf("memory_critical = %v, want 95", status.Thresholds["memory_critical"])
	}
}

func TestCheckResources_SampleError(t *testing.T) {
	sampleErr := errors.New("proc unreadable")
	mon := NewMonitor(Config{Sample: func(context.Context) (Metrics, error) {
		return Metrics{}, sampleErr
	}})

	status, err := mon.CheckResources(context.Background())
	if !errors.Is(err, sampleErr) {
		t.Errorf("error = %v, want %v", err, sampleErr)
	}
	if status.Overall != health.VerdictUnknown {
		t.Errorf("Overall = %v, want VerdictUnknown", status.Overall)
	}
}

func TestCurrentMetrics_CollapsesConcurrentSamples(t *testing.T) {
	var calls atomic.Int64
	started := make(chan struct{})
	release := make(chan struct{})

	mon := NewMonitor(Config{Sample: func(context.Context) (Metrics, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return Metrics{CPUPercent: 1}, nil
	}})

	const n = 5
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := mon.CurrentMetrics(context.Background()); err != nil {
				t.Errorf("CurrentMetrics() error = %v", err)
			}
		}()
	}

	<-started
	// Let the remaining callers pile onto the in-flight sample.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("sampler calls = %d, want 1", got)
	}
}

func TestMonitor_ImplementsResourceChecker(t *testing.T) {
	var _ health.ResourceChecker = NewMonitor()
}
