package audit

import "sync"

// Package-level shared handle, mirroring the health package's. Prefer
// constructing a Trail with New and injecting it.
var (
	defaultMu    sync.Mutex
	defaultTrail *Trail
)

// Default returns the shared trail, constructing one with default settings
// (rotating logs/audit.log sink) on first access.
func Default() *Trail {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultTrail == nil {
		defaultTrail = New()
	}
	return defaultTrail
}

// Init installs a trail built from cfg as the shared instance and returns
// it. The previous trail, if any, is closed.
func Init(cfg Config) *Trail {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultTrail != nil {
		_ = defaultTrail.Close()
	}
	defaultTrail = New(cfg)
	return defaultTrail
}
