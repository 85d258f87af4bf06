package models

// UsageConfig controls the operation log
type UsageConfig struct {
	Enabled                bool `json:"enabled,omitzero" yaml:"enabled"`
	Workers                int  `json:"workers,omitzero" yaml:"workers"`
	BufferSize             int  `json:"buffer_size,omitzero" yaml:"buffer_size"`
	RetentionDays          int  `json:"retention_days,omitzero" yaml:"retention_days"`
	CleanupIntervalMinutes int  `json:"cleanup_interval_minutes,omitzero" yaml:"cleanup_interval_minutes"`
}
