package provider

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/Ckrest/graph-lib/internal/errors"
	"github.com/Ckrest/graph-lib/internal/logger"
	"github.com/Ckrest/graph-lib/internal/series"
)

const (
	defaultPollInterval = time.Second
	defaultReadTimeout  = 5 * time.Second
	stopJoinTimeout     = 10 * time.Second
)

// readFunc performs one poll cycle and returns the sampled value. Every
// invocation runs under a deadline so the loop can never stall a cycle
// indefinitely.
type readFunc func(ctx context.Context) (float64, error)

// poller owns the background production loop shared by the command, GPU
// and NVML providers: fixed cadence, bounded reads, append to a rolling
// history, push to the single subscriber. A failed cycle appends nothing,
// notifies nobody and keeps the schedule.
type poller struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	history  *series.History
	read     readFunc

	mu       sync.Mutex
	callback func([]series.Sample)
	running  bool
	lastErr  error
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func newPoller(name string, interval, timeout time.Duration, historySize int, read readFunc) *poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if timeout <= 0 {
		timeout = defaultReadTimeout
	}

	return &poller{
		name:     name,
		interval: interval,
		timeout:  timeout,
		history:  series.NewHistory(historySize),
		read:     read,
	}
}

// Fetch returns the rolling history. When the worker is not running it
// performs one synchronous bounded read first, so pull-only use still
// yields fresh data.
func (p *poller) Fetch() []series.Sample {
	p.mu.Lock()
	running := p.running
	p.mu.Unlock()

	if !running {
		p.cycle()
	}

	return p.history.Snapshot()
}

func (p *poller) Subscribe(fn func(batch []series.Sample)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callback = fn
}

func (p *poller) Unsubscribe() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callback = nil
}

// Start launches the poll worker. Calling Start on a running poller is a
// no-op.
func (p *poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}

	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})

	go p.loop(p.stopCh, p.doneCh)

	logger.Debug().Str("provider", p.name).Dur("interval", p.interval).Msg("Poll worker started")
}

// Stop signals the worker and blocks until it has exited or the join
// timeout elapses. No callback fires after Stop returns. Idempotent.
func (p *poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
	case <-time.After(stopJoinTimeout):
		logger.Warn().Str("provider", p.name).Msg("Poll worker did not exit before join timeout")
	}

	logger.Debug().Str("provider", p.name).Msg("Poll worker stopped")
}

func (p *poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.running
}

func (p *poller) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.lastErr
}

func (p *poller) loop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// First reading immediately, then on cadence.
	if s, ok := p.cycle(); ok {
		p.notify(stopCh, s)
	}

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if s, ok := p.cycle(); ok {
				p.notify(stopCh, s)
			}
		}
	}
}

// cycle performs one bounded read and appends the sample on success.
func (p *poller) cycle() (series.Sample, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	value, err := p.read(ctx)
	if err != nil {
		p.recordError(err)
		return series.Sample{}, false
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		p.recordError(errors.New().WithMessage(ErrParseFailed, "value is not finite"))
		return series.Sample{}, false
	}

	s := series.NewSample(time.Now(), value)
	p.history.Push(s)
	p.clearError()

	return s, true
}

func (p *poller) notify(stopCh chan struct{}, s series.Sample) {
	select {
	case <-stopCh:
		return
	default:
	}

	p.mu.Lock()
	cb := p.callback
	p.mu.Unlock()

	if cb != nil {
		cb([]series.Sample{s})
	}
}

func (p *poller) recordError(err error) {
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()

	logger.Debug().Str("provider", p.name).Err(err).Msg("Poll cycle skipped")
}

func (p *poller) clearError() {
	p.mu.Lock()
	p.lastErr = nil
	p.mu.Unlock()
}
