// Package resource samples system resource usage (CPU, memory, disk) and
// evaluates it against configured warning/critical thresholds.
//
// Monitor implements health.ResourceChecker, so it plugs directly into a
// health registry:
//
//	mon := resource.NewMonitor(resource.Config{
//	    CPUWarning:  80,
//	    CPUCritical: 95,
//	})
//	reg := health.New(health.Config{Resources: mon})
//
// Sampling goes through gopsutil. Concurrent checks are collapsed into a
// single sample, so a burst of status requests costs one read of the
// underlying counters.
package resource
