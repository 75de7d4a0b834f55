package health

import "sync"

// Package-level shared handle. Prefer constructing a Registry with New and
// injecting it; Default exists for programs that genuinely need one shared
// instance.
var (
	defaultMu       sync.Mutex
	defaultRegistry *Registry
)

// Default returns the shared registry, constructing it on first access.
// Construction under the package mutex guarantees exactly one instance is
// visible to concurrent first callers.
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultRegistry == nil {
		defaultRegistry = New()
	}
	return defaultRegistry
}

// Init installs a registry built from cfg as the shared instance, replacing
// any existing one, and returns it.
func Init(cfg Config) *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultRegistry = New(cfg)
	return defaultRegistry
}

// Reset clears the shared registry and invalidates the handle: the next
// Default call constructs a fresh instance with no memory of prior
// components. Holders of the old instance see it emptied but detached.
func Reset() {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultRegistry != nil {
		defaultRegistry.Reset()
	}
	defaultRegistry = nil
}
