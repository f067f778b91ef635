package utils

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HealthCheck pings one external dependency.
type HealthCheck func(ctx context.Context) error

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Services  map[string]bool `json:"services"`
	CheckedAt time.Time       `json:"checkedAt"`
}

// HealthMonitor performs periodic health checks and keeps the latest snapshot in memory.
type HealthMonitor struct {
	checks   map[string]HealthCheck
	interval time.Duration
	logger   *zap.Logger

	mu      sync.RWMutex
	current HealthStatus
}

func NewHealthMonitor(checks map[string]HealthCheck, interval time.Duration, logger *zap.Logger) *HealthMonitor {
	return &HealthMonitor{
		checks:   checks,
		interval: interval,
		logger:   logger,
	}
}

// Status returns latest stored health snapshot.
func (m *HealthMonitor) Status() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Start runs one check immediately and then on every interval until ctx is done.
func (m *HealthMonitor) Start(ctx context.Context) {
	m.CheckNow(ctx)

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.CheckNow(ctx)
			}
		}
	}()
}

// CheckNow runs every check once and stores the result.
func (m *HealthMonitor) CheckNow(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Services:  make(map[string]bool, len(m.checks)),
		CheckedAt: time.Now(),
	}
	for name, check := range m.checks {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := check(checkCtx)
		cancel()
		if err != nil {
			m.logger.Warn("health check failed", zap.String("service", name), zap.Error(err))
		}
		status.Services[name] = err == nil
	}

	m.mu.Lock()
	m.current = status
	m.mu.Unlock()
	return status
}
