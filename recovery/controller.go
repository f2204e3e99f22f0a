// ABOUTME: Background recovery controller for the degraded fallback mode
// ABOUTME: Probes /health at 10s, 30s, 60s, then waits for a manual retry
package recovery

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// probeDelays are measured from each entry into the degraded state: the
// first probe fires 10s after degrading, the second 30s after that failure,
// the third 60s after the second. After three failed scheduled probes the
// controller stays degraded until a manual retry succeeds.
var probeDelays = []time.Duration{10 * time.Second, 30 * time.Second, 60 * time.Second}

const maxRetries = 3

// Prober is the connectivity check, satisfied by remote.Gateway.
type Prober interface {
	Health(ctx context.Context) error
}

// Switchboard is the mode owner, satisfied by api.Service.
type Switchboard interface {
	UsingLocalFallback() bool
	SetLocalFallback(bool)
	OnModeChange(func(localMode bool))
}

// Controller watches for the degraded mode flip and probes the remote until
// connectivity comes back. One controller per session.
type Controller struct {
	prober Prober
	modes  Switchboard
	logger *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	retryCount int
	probing    bool
	stopped    bool
	timer      *time.Timer
	gen        uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New builds a controller and subscribes it to mode transitions. Call Stop
// when the owning surface goes away.
func New(prober Prober, modes Switchboard, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		prober: prober,
		modes:  modes,
		logger: log.Default(),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	modes.OnModeChange(func(localMode bool) {
		if localMode {
			c.degraded()
		} else {
			c.recovered()
		}
	})
	return c
}

// RetryCount reports how many scheduled probes have failed since the last
// entry into the degraded state.
func (c *Controller) RetryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retryCount
}

// RetryNow runs a probe immediately, skipping the timer. It is a no-op when
// the session is healthy or a probe is already in flight.
func (c *Controller) RetryNow() {
	if !c.modes.UsingLocalFallback() {
		return
	}
	c.logger.Info("manual connectivity retry requested")
	c.probe(true)
}

// Stop cancels any pending probe. A timer that already fired becomes a
// no-op via the generation check.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.stopped = true
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.cancel()
}

// degraded resets the retry window and schedules the first probe.
func (c *Controller) degraded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.retryCount = 0
	c.scheduleLocked(probeDelays[0])
}

// recovered clears any pending probe once the mode flips back to remote.
func (c *Controller) recovered() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retryCount = 0
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// scheduleLocked arms the probe timer. Callers hold c.mu.
func (c *Controller) scheduleLocked(d time.Duration) {
	c.gen++
	gen := c.gen
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(d, func() {
		c.mu.Lock()
		stale := c.stopped || gen != c.gen
		c.mu.Unlock()
		if stale || !c.modes.UsingLocalFallback() {
			return
		}
		c.probe(false)
	})
	c.logger.Debug("connectivity probe scheduled", "in", d)
}

// probe runs one health check. Scheduled probes advance the retry window on
// failure; manual probes do not, so a user hammering retry cannot exhaust
// the automatic attempts.
func (c *Controller) probe(manual bool) {
	c.mu.Lock()
	if c.probing || c.stopped {
		c.mu.Unlock()
		return
	}
	c.probing = true
	c.mu.Unlock()

	err := c.prober.Health(c.ctx)

	c.mu.Lock()
	c.probing = false
	if err == nil {
		c.retryCount = 0
		c.gen++
		if c.timer != nil {
			c.timer.Stop()
			c.timer = nil
		}
		c.mu.Unlock()
		c.logger.Info("connectivity probe succeeded")
		c.modes.SetLocalFallback(false)
		return
	}
	if !manual && c.retryCount < maxRetries {
		c.retryCount++
		if c.retryCount < maxRetries {
			c.scheduleLocked(probeDelays[c.retryCount])
		} else {
			c.logger.Warn("automatic connectivity retries exhausted, waiting for manual retry")
		}
	}
	count := c.retryCount
	c.mu.Unlock()
	c.logger.Debug("connectivity probe failed", "retryCount", count, "err", err)
}
