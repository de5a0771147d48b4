// Package netstatus tracks whether the remote entry API is reachable.
package netstatus

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/coffeelog/internal/logging"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

const (
	defaultProbeTimeout = 3 * time.Second
	DefaultInterval     = 3 * time.Second
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor holds the current connectivity mode. It starts offline; Check or
// Run moves it online once the server answers. A disabled monitor never
// probes and always reports offline.
type Monitor struct {
	pinger  Pinger
	log     logging.Logger
	timeout time.Duration

	mu   sync.RWMutex
	mode Mode
}

func NewMonitor(p Pinger, log logging.Logger) *Monitor {
	return &Monitor{pinger: p, log: log, timeout: defaultProbeTimeout, mode: ModeOffline}
}

// WithProbeTimeout bounds a single probe.
func (m *Monitor) WithProbeTimeout(d time.Duration) *Monitor {
	if d > 0 {
		m.timeout = d
	}
	return m
}

func (m *Monitor) Mode() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

func (m *Monitor) Online() bool {
	return m.Mode() == ModeOnline
}

// Disable forces offline mode for the rest of the process.
func (m *Monitor) Disable(ctx context.Context) {
	m.setMode(ctx, ModeDisabled)
}

// Check probes the server once and returns the resulting mode.
func (m *Monitor) Check(ctx context.Context) Mode {
	if m.Mode() == ModeDisabled {
		return ModeDisabled
	}

	pctx, cancel := context.WithTimeout(ctx, m.timeout)
	err := m.pinger.Ping(pctx)
	cancel()

	if err != nil {
		m.log.Debug(ctx, "server probe failed", "error", err)
		m.setMode(ctx, ModeOffline)
	} else {
		m.setMode(ctx, ModeOnline)
	}
	return m.Mode()
}

// Run probes on every tick until ctx is done. A non-positive interval
// means DefaultInterval.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) setMode(ctx context.Context, mode Mode) {
	m.mu.Lock()
	if m.mode == mode || m.mode == ModeDisabled {
		m.mu.Unlock()
		return
	}
	m.mode = mode
	m.mu.Unlock()

	m.log.Info(ctx, "switched mode", "mode", string(mode))
}
