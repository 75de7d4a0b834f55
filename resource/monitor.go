package resource

import (
	"context"
	"math"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/opswatch/health"
)

// Config configures the resource monitor. All thresholds are percentages in
// (0, 100); zero or out-of-range values fall back to defaults, and a critical
// threshold below its warning threshold is raised above it.
type Config struct {
	// CPUWarning and CPUCritical bound total CPU utilization.
	// Defaults: 80, 95.
	CPUWarning  float64
	CPUCritical float64

	// MemoryWarning and MemoryCritical bound virtual memory utilization.
	// Defaults: 80, 95.
	MemoryWarning  float64
	MemoryCritical float64

	// DiskWarning and DiskCritical bound usage of the filesystem at DiskPath.
	// Defaults: 85, 95.
	DiskWarning  float64
	DiskCritical float64

	// DiskPath is the mount point to measure. Default: "/".
	DiskPath string

	// Sample overrides the gopsutil sampler. Intended for tests.
	Sample func(ctx context.Context) (Metrics, error)
}

// Metrics is one resource sample.
type Metrics struct {
	CPUPercent        float64   `json:"cpu_percent"`
	MemoryPercent     float64   `json:"memory_percent"`
	DiskUsagePercent  float64   `json:"disk_usage_percent"`
	MemoryAvailableMB float64   `json:"memory_available_mb"`
	Timestamp         time.Time `json:"timestamp"`
}

// Monitor samples system resources and grades them against thresholds.
// Safe for concurrent use.
type Monitor struct {
	config Config
	group  singleflight.Group
}

// NewMonitor creates a resource monitor.
func NewMonitor(config ...Config) *Monitor {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	cfg.CPUWarning, cfg.CPUCritical = clampThresholds(cfg.CPUWarning, cfg.CPUCritical, 80, 95)
	cfg.MemoryWarning, cfg.MemoryCritical = clampThresholds(cfg.MemoryWarning, cfg.MemoryCritical, 80, 95)
	cfg.DiskWarning, cfg.DiskCritical = clampThresholds(cfg.DiskWarning, cfg.DiskCritical, 85, 95)
	if cfg.DiskPath == "" {
		cfg.DiskPath = "/"
	}
	if cfg.Sample == nil {
		cfg.Sample = sampleSystem(cfg.DiskPath)
	}

	return &Monitor{config: cfg}
}

func clampThresholds(warning, critical, defWarning, defCritical float64) (float64, float64) {
	if warning <= 0 || warning >= 100 {
		warning = defWarning
	}
	if critical <= 0 || critical >= 100 {
		critical = defCritical
	}
	if critical < warning {
		critical = math.Min(warning+5, 99)
	}
	return warning, critical
}

// Thresholds returns the effective threshold configuration.
func (m *Monitor) Thresholds() health.Metadata {
	return health.Metadata{
		"cpu_warning":     m.config.CPUWarning,
		"cpu_critical":    m.config.CPUCritical,
		"memory_warning":  m.config.MemoryWarning,
		"memory_critical": m.config.MemoryCritical,
		"disk_warning":    m.config.DiskWarning,
		"disk_critical":   m.config.DiskCritical,
	}
}

// CurrentMetrics returns a fresh resource sample. Concurrent callers share
// one underlying sample.
func (m *Monitor) CurrentMetrics(ctx context.Context) (Metrics, error) {
	v, err, _ := m.group.Do("sample", func() (any, error) {
		return m.config.Sample(ctx)
	})
	if err != nil {
		return Metrics{}, err
	}
	return v.(Metrics), nil
}

// CheckResources samples the system and grades each probe. The overall
// verdict is the worst individual one. Implements health.ResourceChecker.
func (m *Monitor) CheckResources(ctx context.Context) (health.ResourceStatus, error) {
	metrics, err := m.CurrentMetrics(ctx)
	if err != nil {
		return health.ResourceStatus{Overall: health.VerdictUnknown}, err
	}

	checks := map[string]health.Verdict{
		"cpu":    grade(metrics.CPUPercent, m.config.CPUWarning, m.config.CPUCritical),
		"memory": grade(metrics.MemoryPercent, m.config.MemoryWarning, m.config.MemoryCritical),
		"disk":   grade(metrics.DiskUsagePercent, m.config.DiskWarning, m.config.DiskCritical),
	}

	overall := health.VerdictOK
	for _, v := range checks {
		switch v {
		case health.VerdictCritical:
			overall = health.VerdictCritical
		case health.VerdictWarning:
			if overall != health.VerdictCritical {
				overall = health.VerdictWarning
			}
		}
	}

	return health.ResourceStatus{
		Overall: overall,
		Checks:  checks,
		Metrics: health.Metadata{
			"cpu_percent":         round1(metrics.CPUPercent),
			"memory_percent":      round1(metrics.MemoryPercent),
			"disk_usage_percent":  round1(metrics.DiskUsagePercent),
			"memory_available_mb": math.Round(metrics.MemoryAvailableMB),
		},
		Thresholds: m.Thresholds(),
	}, nil
}

func grade(value, warning, critical float64) health.Verdict {
	switch {
	case value >= critical:
		return health.VerdictCritical
	case value >= warning:
		return health.VerdictWarning
	default:
		return health.VerdictOK
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// sampleSystem returns the gopsutil-backed sampler for the given disk path.
func sampleSystem(diskPath string) func(ctx context.Context) (Metrics, error) {
	return func(ctx context.Context) (Metrics, error) {
		percents, err := cpu.PercentWithContext(ctx, 0, false)
		if err != nil {
			return Metrics{}, err
		}
		var cpuPercent float64
		if len(percents) > 0 {
			cpuPercent = percents[0]
		}

		vm, err := mem.VirtualMemoryWithContext(ctx)
		if err != nil {
			return Metrics{}, err
		}

		du, err := disk.UsageWithContext(ctx, diskPath)
		if err != nil {
			return Metrics{}, err
		}

		return Metrics{
			CPUPercent:        cpuPercent,
			MemoryPercent:     vm.UsedPercent,
			DiskUsagePercent:  du.UsedPercent,
			MemoryAvailableMB: float64(vm.Available) / (1024 * 1024),
			Timestamp:         time.Now(),
		}, nil
	}
}
