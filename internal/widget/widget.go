// Package widget binds one data provider to one renderer: it owns the
// refresh timer, marshals pushed batches from the provider's worker into
// a single consumer loop, and exposes runtime reconfiguration.
package widget

import (
	"sync"
	"time"

	"github.com/Ckrest/graph-lib/internal/errors"
	"github.com/Ckrest/graph-lib/internal/logger"
	"github.com/Ckrest/graph-lib/internal/provider"
	"github.com/Ckrest/graph-lib/internal/render"
	"github.com/Ckrest/graph-lib/internal/series"
)

const (
	defaultRefreshInterval = time.Second
	defaultMaxSamples      = 600
	pushQueueDepth         = 16
)

// Widget orchestrates a provider/renderer pair. The provider produces on
// its own worker; the widget's loop goroutine is the only consumer that
// touches the current data, so the renderer never observes a history
// mid-mutation. The host calls Draw from its own drawing context.
type Widget struct {
	mu         sync.Mutex
	renderer   render.Renderer
	prov       provider.Provider
	interval   time.Duration
	maxSamples int
	data       []series.Sample

	onData     func([]series.Sample)
	onError    func(error)
	invalidate func()

	running    bool
	updates    chan []series.Sample
	refreshCh  chan struct{}
	intervalCh chan time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}
}

// New binds a renderer to a provider with the given refresh interval.
// A non-positive interval disables the pull timer; pushed batches still
// flow through.
func New(renderer render.Renderer, prov provider.Provider, refreshInterval time.Duration) *Widget {
	if refreshInterval == 0 {
		refreshInterval = defaultRefreshInterval
	}

	return &Widget{
		renderer:   renderer,
		prov:       prov,
		interval:   refreshInterval,
		maxSamples: defaultMaxSamples,
	}
}

// Invalidate registers the host's redraw trigger, called after every data
// or configuration change.
func (w *Widget) Invalidate(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.invalidate = fn
}

// OnData registers a callback receiving the current data after each
// update.
func (w *Widget) OnData(fn func([]series.Sample)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onData = fn
}

// OnError registers a callback receiving provider failures captured
// during refresh.
func (w *Widget) OnError(fn func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = fn
}

// Start subscribes to the provider, starts it, performs an initial
// refresh and launches the consumer loop. Idempotent.
func (w *Widget) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.updates = make(chan []series.Sample, pushQueueDepth)
	w.refreshCh = make(chan struct{}, 1)
	w.intervalCh = make(chan time.Duration)
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	updates, refreshCh, intervalCh := w.updates, w.refreshCh, w.intervalCh
	stopCh, doneCh := w.stopCh, w.doneCh
	prov := w.prov
	interval := w.interval
	w.mu.Unlock()

	prov.Subscribe(w.push)
	prov.Start()

	w.refresh()

	go w.loop(interval, updates, refreshCh, intervalCh, stopCh, doneCh)
}

// Stop halts the consumer loop, then the provider. After Stop returns no
// more callbacks fire. Idempotent.
func (w *Widget) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	prov := w.prov
	w.mu.Unlock()

	close(stopCh)
	<-doneCh

	prov.Stop()
	prov.Unsubscribe()
}

// IsRunning reports whether the widget is actively updating.
func (w *Widget) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.running
}

// Refresh triggers a one-shot fetch. When running it is handed to the
// consumer loop; otherwise it runs synchronously.
func (w *Widget) Refresh() {
	w.mu.Lock()
	running := w.running
	refreshCh := w.refreshCh
	w.mu.Unlock()

	if !running {
		w.refresh()
		return
	}

	select {
	case refreshCh <- struct{}{}:
	default: // one already pending
	}
}

// Configure merges a partial options value into the renderer and
// requests a redraw.
func (w *Widget) Configure(opts any) {
	w.mu.Lock()
	w.renderer.Configure(opts)
	invalidate := w.invalidate
	w.mu.Unlock()

	if invalidate != nil {
		invalidate()
	}
}

// SetProvider swaps the data source at runtime. The old provider is
// stopped and unsubscribed before the new one is attached, so no two
// providers ever feed the renderer concurrently.
func (w *Widget) SetProvider(p provider.Provider) {
	w.mu.Lock()
	old := w.prov
	running := w.running
	w.mu.Unlock()

	if running {
		old.Stop()
		old.Unsubscribe()
	}

	w.mu.Lock()
	w.prov = p
	w.mu.Unlock()

	if running {
		p.Subscribe(w.push)
		p.Start()
		w.Refresh()
	}
}

// SetMaxSamples bounds how many samples the widget retains on the push
// path. Non-positive restores the default. Existing data past the new
// cap is trimmed immediately.
func (w *Widget) SetMaxSamples(n int) {
	if n <= 0 {
		n = defaultMaxSamples
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.maxSamples = n
	if len(w.data) > n {
		w.data = append(w.data[:0], w.data[len(w.data)-n:]...)
	}
}

// SetRefreshInterval changes the pull cadence. Takes effect immediately
// when running.
func (w *Widget) SetRefreshInterval(d time.Duration) {
	w.mu.Lock()
	w.interval = d
	running := w.running
	intervalCh := w.intervalCh
	doneCh := w.doneCh
	w.mu.Unlock()

	if running {
		select {
		case intervalCh <- d:
		case <-doneCh:
		}
	}
}

// Draw renders the current data onto the given surface.
func (w *Widget) Draw(s render.Surface, width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.renderer.Render(s, w.data, width, height)
}

// CurrentValue returns the most recent value, if any.
func (w *Widget) CurrentValue() (float64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.data) == 0 {
		return 0, false
	}

	return w.data[len(w.data)-1].Value, true
}

// CurrentData returns a copy of the data currently bound to the
// renderer.
func (w *Widget) CurrentData() []series.Sample {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]series.Sample, len(w.data))
	copy(out, w.data)

	return out
}

// push is the provider subscription callback. It runs on the producer
// worker and must not block: a full queue drops the oldest pending batch.
func (w *Widget) push(batch []series.Sample) {
	w.mu.Lock()
	updates := w.updates
	running := w.running
	w.mu.Unlock()

	if !running {
		return
	}

	for {
		select {
		case updates <- batch:
			return
		default:
		}
		select {
		case <-updates:
			logger.Debug().Msg("Push queue full, dropped oldest batch")
		default:
		}
	}
}

// loop is the single-threaded consumer context: it drains pushed batches,
// services the refresh timer and reacts to interval changes, in receipt
// order. The channels arrive as parameters so the loop stays bound to the
// run that launched it even if the widget is restarted while it drains.
func (w *Widget) loop(interval time.Duration, updates chan []series.Sample, refreshCh chan struct{}, intervalCh chan time.Duration, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	var tick <-chan time.Time
	var ticker *time.Ticker
	if interval > 0 {
		ticker = time.NewTicker(interval)
		tick = ticker.C
	}
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case <-stopCh:
			return
		case batch := <-updates:
			w.applyBatch(batch)
		case <-refreshCh:
			w.refresh()
		case <-tick:
			w.refresh()
		case d := <-intervalCh:
			if ticker != nil {
				ticker.Stop()
			}
			ticker = nil
			tick = nil
			if d > 0 {
				ticker = time.NewTicker(d)
				tick = ticker.C
			}
		}
	}
}

// applyBatch folds a pushed batch into the current data in receipt
// order, evicting the oldest samples past the retention cap. Providers
// bound their own histories, but a pushed stream with the pull timer
// disabled would otherwise grow the widget's view forever.
func (w *Widget) applyBatch(batch []series.Sample) {
	if len(batch) == 0 {
		return
	}

	w.mu.Lock()
	w.data = append(w.data, batch...)
	if n := w.maxSamples; len(w.data) > n {
		w.data = append(w.data[:0], w.data[len(w.data)-n:]...)
	}
	data := w.data
	onData := w.onData
	invalidate := w.invalidate
	w.mu.Unlock()

	if onData != nil {
		onData(data)
	}
	if invalidate != nil {
		invalidate()
	}
}

// refresh pulls from the provider. A failure, including a panic escaping
// Fetch, is routed to the error callback and the last good data is kept,
// so one bad cycle never stops the timer or clears the chart.
func (w *Widget) refresh() {
	data, err := w.safeFetch()
	if err != nil {
		var domainErr errors.Error
		if errors.As(err, &domainErr) {
			logger.ErrorWithCode(domainErr).Msg("Refresh failed")
		} else {
			logger.Error().Err(err).Msg("Refresh failed")
		}

		w.mu.Lock()
		onError := w.onError
		w.mu.Unlock()

		if onError != nil {
			onError(err)
		}

		return
	}

	if len(data) == 0 {
		// Sustained failures fetch empty; keep showing the last good
		// data until a new good sample arrives.
		return
	}

	w.mu.Lock()
	w.data = data
	onData := w.onData
	invalidate := w.invalidate
	w.mu.Unlock()

	if onData != nil {
		onData(data)
	}
	if invalidate != nil {
		invalidate()
	}
}

func (w *Widget) safeFetch() (data []series.Sample, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New().WithData(errors.ErrOperationFailed, r)
		}
	}()

	w.mu.Lock()
	prov := w.prov
	w.mu.Unlock()

	return prov.Fetch(), nil
}
