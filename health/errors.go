package health

import "errors"

var (
	// ErrNoResourceChecker indicates no resource checker is wired into the
	// registry. Surfaced as the synthetic resource entry's last error.
	ErrNoResourceChecker = errors.New("health: no resource checker configured")
)
