package repositories

import (
	"context"
	"time"
)

// MigrationStatus represents the schema version recorded by the migration tool
type MigrationStatus struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
	Applied bool `json:"applied"`
}

// HealthChecker provides health checking capabilities for repositories
type HealthChecker interface {
	// CheckHealth performs a health check on the repository
	CheckHealth(ctx context.Context) error

	// GetHealthStatus returns detailed health status
	GetHealthStatus(ctx context.Context) *HealthStatus
}

// HealthStatus represents the health status of a repository
type HealthStatus struct {
	Healthy      bool              `json:"healthy"`
	Message      string            `json:"message,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
	CheckedAt    time.Time         `json:"checked_at"`
	ResponseTime time.Duration     `json:"response_time"`
}
