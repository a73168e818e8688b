package rslimiter

import (
	"errors"
	"fmt"

	"github.com/aleister1102/contacthound/internal/config"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"
)

// ErrResourceExhausted is returned by Acquire when system memory is above the threshold.
var ErrResourceExhausted = errors.New("system resources exhausted")

// MemoryProbe reports system memory usage as a fraction in [0,1].
type MemoryProbe func() (float64, error)

// SystemMemoryProbe reads virtual memory usage with gopsutil.
func SystemMemoryProbe() (float64, error) {
	vmStat, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("failed to get system memory stats: %w", err)
	}
	return vmStat.UsedPercent / 100.0, nil
}

// ResourceLimiter refuses expensive work, such as starting a browser session,
// while system memory is above a threshold.
type ResourceLimiter struct {
	config config.ResourceLimiterConfig
	probe  MemoryProbe
	logger zerolog.Logger
}

// NewResourceLimiter creates a limiter backed by SystemMemoryProbe.
func NewResourceLimiter(cfg config.ResourceLimiterConfig, logger zerolog.Logger) *ResourceLimiter {
	if cfg.SystemMemThreshold <= 0 {
		cfg.SystemMemThreshold = config.DefaultResourceLimiterSystemMemThreshold
	}
	return &ResourceLimiter{
		config: cfg,
		probe:  SystemMemoryProbe,
		logger: logger.With().Str("component", "ResourceLimiter").Logger(),
	}
}

// WithProbe replaces the memory probe.
func (rl *ResourceLimiter) WithProbe(probe MemoryProbe) *ResourceLimiter {
	rl.probe = probe
	return rl
}

// Acquire returns ErrResourceExhausted when memory usage is above the threshold.
// A disabled or nil limiter always admits, and so does a failing probe.
func (rl *ResourceLimiter) Acquire(task string) error {
	if rl == nil || !rl.config.Enabled {
		return nil
	}

	used, err := rl.probe()
	if err != nil {
		rl.logger.Debug().Err(err).Str("task", task).Msg("Memory probe failed, admitting task")
		return nil
	}

	if used > rl.config.SystemMemThreshold {
		rl.logger.Warn().
			Str("task", task).
			Float64("used_percent", used*100).
			Float64("threshold_percent", rl.config.SystemMemThreshold*100).
			Msg("System memory usage exceeded threshold")
		return fmt.Errorf("%w: memory at %.1f%%", ErrResourceExhausted, used*100)
	}
	return nil
}
