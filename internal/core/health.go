package core

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/coregx/sqlcond/internal/logger"
)

const healthPingTimeout = 5 * time.Second

// healthChecker pings the database at a fixed interval and remembers
// the outcome of the last ping.
type healthChecker struct {
	db       *sql.DB
	logger   logger.Logger
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}

	mu       sync.RWMutex
	lastErr  error
	lastPing time.Time
}

func newHealthChecker(db *sql.DB, interval time.Duration) *healthChecker {
	return &healthChecker{
		db:       db,
		logger:   logger.NoopLogger{},
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (h *healthChecker) start() {
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go h.run(ctx)
}

func (h *healthChecker) run(ctx context.Context) {
	defer close(h.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.ping(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (h *healthChecker) ping(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()

	err := h.db.PingContext(ctx)

	h.mu.Lock()
	h.lastErr = err
	h.lastPing = time.Now()
	h.mu.Unlock()

	if err != nil {
		h.logger.Warn("database health check failed", "error", err, "interval", h.interval)
		return
	}
	h.logger.Debug("database health check passed", "interval", h.interval)
}

// shutdown stops the loop and waits for it to exit.
func (h *healthChecker) shutdown() {
	if h.cancel == nil {
		return
	}
	h.cancel()
	<-h.done
}

func (h *healthChecker) isHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastErr == nil
}

func (h *healthChecker) lastCheck() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastPing
}
