package evaluation

import "time"

// RunLimits describes the resource boundaries enforced on a single sandbox run.
type RunLimits struct {
	// WallClock caps how long the run may take before it is forcibly killed.
	WallClock time.Duration
	// MemoryBytes caps sandbox memory usage in bytes. Zero means no limit.
	MemoryBytes int64
	// CPUQuota and CPUPeriod throttle CPU time (microseconds per period).
	CPUQuota  int64
	CPUPeriod int64
	// NetworkDisabled removes network access from the sandbox entirely.
	NetworkDisabled bool
}

// DefaultLimits returns the fixed limits applied to every run of the given
// submission language. Both sandboxed languages share the same bounds.
func DefaultLimits(lang Language) RunLimits {
	switch lang {
	case LanguageCode, LanguageQuery:
		return RunLimits{
			WallClock:       5 * time.Second,
			MemoryBytes:     512 * 1024 * 1024,
			CPUQuota:        50_000,
			CPUPeriod:       100_000,
			NetworkDisabled: true,
		}
	default:
		return RunLimits{}
	}
}
