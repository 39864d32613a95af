package widget

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/novavoice/nova-voice/internal/observability/metrics"
	"github.com/novavoice/nova-voice/pkg/logging"
)

// Host is the page the voice-agent widget renders into. Implementations must
// make Relocate a no-op when the widget already sits in the container.
type Host interface {
	// Inspect reports whether the widget has rendered and whether it is already
	// inside containerSelector.
	Inspect(ctx context.Context, containerSelector string) (found bool, relocated bool, err error)
	// Relocate moves and restyles the widget into containerSelector.
	Relocate(ctx context.Context, containerSelector string) error
	// RemoveStrays deletes floating launcher leftovers and returns how many it removed.
	RemoveStrays(ctx context.Context) (int, error)
}

// TickResult describes what one poll did.
type TickResult string

const (
	TickWaiting   TickResult = "waiting"
	TickRelocated TickResult = "relocated"
	TickIdle      TickResult = "idle"
	TickError     TickResult = "error"
)

// Relocator polls a Host on a fixed interval and keeps the widget inside the
// styled container until Stop is called or the context ends.
type Relocator struct {
	host      Host
	container string
	interval  time.Duration
	logger    *logging.Logger
	metrics   *metrics.LandingMetrics

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewRelocator(host Host, cfg EmbedConfig, logger *logging.Logger) *Relocator {
	if logger == nil {
		logger = logging.Default()
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	container := cfg.ContainerSelector
	if container == "" {
		container = DefaultContainerSelector
	}
	return &Relocator{
		host:      host,
		container: container,
		interval:  interval,
		logger:    logger,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (r *Relocator) WithMetrics(m *metrics.LandingMetrics) *Relocator {
	r.metrics = m
	return r
}

// Run ticks until ctx is cancelled or Stop is called. Only the first call
// runs; later calls return immediately.
func (r *Relocator) Run(ctx context.Context) {
	if !r.started.CompareAndSwap(false, true) {
		r.logger.Warn("widget relocator already running")
		return
	}
	defer close(r.done)
	if r.host == nil {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Stop ends Run. Safe to call more than once, and before Run has started;
// wait on Done to know Run has returned.
func (r *Relocator) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// Done is closed once Run returns.
func (r *Relocator) Done() <-chan struct{} {
	return r.done
}

// Tick runs one poll: stray cleanup always, relocation only when needed.
func (r *Relocator) Tick(ctx context.Context) TickResult {
	result := r.tick(ctx)
	r.metrics.ObserveWidgetTick(string(result))
	return result
}

func (r *Relocator) tick(ctx context.Context) TickResult {
	if removed, err := r.host.RemoveStrays(ctx); err != nil {
		r.logger.Warn("widget stray cleanup failed", "error", err)
	} else if removed > 0 {
		r.logger.Debug("removed stray widget elements", "count", removed)
	}

	found, relocated, err := r.host.Inspect(ctx, r.container)
	if err != nil {
		r.logger.Warn("widget inspect failed", "error", err)
		return TickError
	}
	if !found {
		return TickWaiting
	}
	if relocated {
		return TickIdle
	}
	if err := r.host.Relocate(ctx, r.container); err != nil {
		r.logger.Warn("widget relocate failed", "error", err, "container", r.container)
		return TickError
	}
	r.logger.Info("widget relocated", "container", r.container)
	return TickRelocated
}
