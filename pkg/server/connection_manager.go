package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/config"
)

// ConnectionManager keeps one service container alive across warm invocations
type ConnectionManager struct {
	mu        sync.Mutex
	container *Container
	lastUsed  time.Time
	load      func() (*config.Config, error)
}

var (
	globalConnectionManager *ConnectionManager
	connectionManagerOnce   sync.Once
)

// GetConnectionManager returns the global connection manager instance
func GetConnectionManager() *ConnectionManager {
	connectionManagerOnce.Do(func() {
		globalConnectionManager = NewConnectionManager(config.GetOptimizedConfig)
	})
	return globalConnectionManager
}

// NewConnectionManager creates a manager that builds its container from load
func NewConnectionManager(load func() (*config.Config, error)) *ConnectionManager {
	return &ConnectionManager{load: load}
}

// GetContainer returns the service container, initializing it on first use. A failed
// initialization is retried on the next call.
func (cm *ConnectionManager) GetContainer(ctx context.Context) (*Container, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cm.container == nil {
		cfg, err := cm.load()
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		container, err := NewContainer(cfg)
		if err != nil {
			return nil, err
		}
		cm.container = container
	}

	cm.lastUsed = time.Now()
	return cm.container, nil
}

// IsHealthy reports whether a container is initialized and was used recently
func (cm *ConnectionManager) IsHealthy() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	return cm.container != nil && time.Since(cm.lastUsed) < 5*time.Minute
}

// Cleanup closes the container; the next GetContainer builds a fresh one
func (cm *ConnectionManager) Cleanup() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container == nil {
		return nil
	}
	err := cm.container.Close()
	cm.container = nil
	return err
}
