package config

// ResourceLimiterConfig gates headless sessions on host memory pressure
type ResourceLimiterConfig struct {
	Enabled            bool    `json:"enabled" yaml:"enabled"`
	SystemMemThreshold float64 `json:"system_mem_threshold,omitempty" yaml:"system_mem_threshold,omitempty" validate:"omitempty,min=0.1,max=1.0"`
}

// NewDefaultResourceLimiterConfig creates default resource limiter configuration
func NewDefaultResourceLimiterConfig() ResourceLimiterConfig {
	return ResourceLimiterConfig{
		Enabled:            DefaultResourceLimiterEnabled,
		SystemMemThreshold: DefaultResourceLimiterSystemMemThreshold,
	}
}
