package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/portscout/portscout/internal/logging"
)

// Poller errors.
var (
	ErrPollerAlreadyRunning = errors.New("poller already running")
	ErrPollerNotRunning     = errors.New("poller not running")
)

// PollerConfig contains configuration for the catalog poller.
type PollerConfig struct {
	// Interval is how often to refresh the catalog.
	// Default: 30s
	Interval time.Duration

	// Timeout bounds a single refresh.
	// Default: 10s
	Timeout time.Duration
}

// DefaultPollerConfig returns sensible defaults.
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		Interval: 30 * time.Second,
		Timeout:  10 * time.Second,
	}
}

// Poller refreshes a Source on a fixed interval. The TUI runs one so the
// grid tracks agent-side changes without user interaction.
type Poller struct {
	config PollerConfig
	source Source
	logger zerolog.Logger

	mu      sync.RWMutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewPoller creates a poller over source.
func NewPoller(config PollerConfig, source Source) *Poller {
	if config.Interval <= 0 {
		config.Interval = DefaultPollerConfig().Interval
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultPollerConfig().Timeout
	}

	return &Poller{
		config: config,
		source: source,
		logger: logging.Component("catalog-poller"),
	}
}

// Start begins the polling loop. The first refresh runs immediately.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrPollerAlreadyRunning
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.running = true

	p.logger.Info().
		Dur("interval", p.config.Interval).
		Msg("catalog poller starting")

	p.wg.Add(1)
	go p.runLoop()

	return nil
}

// Stop halts the polling loop and waits for the in-flight refresh.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return ErrPollerNotRunning
	}

	p.cancel()
	p.running = false
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info().Msg("catalog poller stopped")
	return nil
}

// IsRunning returns true if the poller is running.
func (p *Poller) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// runLoop is the main polling loop.
func (p *Poller) runLoop() {
	defer p.wg.Done()

	p.refreshOnce()

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.refreshOnce()
		}
	}
}

// refreshOnce performs one bounded refresh. Failures are already logged by
// the source; the poller only cares about shutdown.
func (p *Poller) refreshOnce() {
	ctx, cancel := context.WithTimeout(p.ctx, p.config.Timeout)
	defer cancel()

	if err := p.source.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Debug().Err(err).Msg("scheduled refresh failed")
	}
}
