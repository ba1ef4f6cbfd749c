package widget_test

import (
	"sync"
	"testing"
	"time"

	"github.com/Ckrest/graph-lib/internal/errors"
	"github.com/Ckrest/graph-lib/internal/render"
	"github.com/Ckrest/graph-lib/internal/series"
	"github.com/Ckrest/graph-lib/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider is a scriptable data source for exercising the widget
// lifecycle without timers or subprocesses.
type fakeProvider struct {
	mu       sync.Mutex
	data     []series.Sample
	callback func(batch []series.Sample)
	started  bool
	stopped  bool
	panics   bool
}

func (f *fakeProvider) Fetch() []series.Sample {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.panics {
		panic("reader exploded")
	}

	out := make([]series.Sample, len(f.data))
	copy(out, f.data)

	return out
}

func (f *fakeProvider) Subscribe(fn func(batch []series.Sample)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callback = fn
}

func (f *fakeProvider) Unsubscribe() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callback = nil
}

func (f *fakeProvider) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = true
}

func (f *fakeProvider) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeProvider) setData(values ...float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.data = f.data[:0]
	base := time.Now()
	for i, v := range values {
		f.data = append(f.data, series.NewSample(base.Add(time.Duration(i)*time.Second), v))
	}
}

func (f *fakeProvider) emit(value float64) {
	f.mu.Lock()
	cb := f.callback
	f.mu.Unlock()

	if cb != nil {
		cb([]series.Sample{series.NewSample(time.Now(), value)})
	}
}

func TestWidgetStartStop(t *testing.T) {
	prov := &fakeProvider{}
	prov.setData(1, 2, 3)
	w := widget.New(render.NewLineChart(), prov, 0)

	w.Start()
	assert.True(t, w.IsRunning())
	assert.True(t, prov.started)

	// Start already fetched once.
	v, ok := w.CurrentValue()
	require.True(t, ok)
	assert.Equal(t, 3.0, v)

	w.Stop()
	assert.False(t, w.IsRunning())
	assert.True(t, prov.stopped)

	assert.NotPanics(t, func() {
		w.Stop()
		w.Start()
		w.Stop()
	})
}

func TestWidgetRefreshWithoutStart(t *testing.T) {
	prov := &fakeProvider{}
	prov.setData(7)
	w := widget.New(render.NewLineChart(), prov, 0)

	var got []series.Sample
	w.OnData(func(data []series.Sample) { got = data })
	w.Refresh()

	require.Len(t, got, 1)
	assert.Equal(t, 7.0, got[0].Value)
}

func TestWidgetKeepsLastGoodData(t *testing.T) {
	prov := &fakeProvider{}
	prov.setData(5, 6)
	w := widget.New(render.NewLineChart(), prov, 0)

	w.Refresh()
	require.Len(t, w.CurrentData(), 2)

	// An empty fetch must not blank the chart.
	prov.setData()
	w.Refresh()
	assert.Len(t, w.CurrentData(), 2)
}

func TestWidgetErrorCallback(t *testing.T) {
	prov := &fakeProvider{panics: true}
	w := widget.New(render.NewLineChart(), prov, 0)

	var got error
	w.OnError(func(err error) { got = err })

	assert.NotPanics(t, func() { w.Refresh() })
	require.Error(t, got)
	assert.Equal(t, errors.ErrOperationFailed, errors.CodeOf(got), "contained panics carry a domain code")
	assert.Empty(t, w.CurrentData())
}

func TestWidgetPushPath(t *testing.T) {
	prov := &fakeProvider{}
	w := widget.New(render.NewLineChart(), prov, -1)

	invalidated := make(chan struct{}, 64)
	w.Invalidate(func() { invalidated <- struct{}{} })

	w.Start()
	defer w.Stop()

	prov.emit(1)
	prov.emit(2)

	assert.Eventually(t, func() bool {
		return len(w.CurrentData()) == 2
	}, time.Second, 5*time.Millisecond)

	data := w.CurrentData()
	assert.Equal(t, 1.0, data[0].Value)
	assert.Equal(t, 2.0, data[1].Value)
	assert.NotEmpty(t, invalidated)
}

func TestWidgetPushRetentionCap(t *testing.T) {
	prov := &fakeProvider{}
	w := widget.New(render.NewLineChart(), prov, -1)
	w.SetMaxSamples(5)

	w.Start()
	defer w.Stop()

	// Paced pushes with the pull timer disabled: the widget's view must
	// stay bounded even though nothing ever replaces it wholesale.
	for i := 0; i < 20; i++ {
		v := float64(i)
		prov.emit(v)
		require.Eventually(t, func() bool {
			last, ok := w.CurrentValue()
			return ok && last == v
		}, time.Second, time.Millisecond)
	}

	data := w.CurrentData()
	require.Len(t, data, 5)
	assert.Equal(t, 15.0, data[0].Value)
	assert.Equal(t, 19.0, data[4].Value)
}

func TestWidgetSetMaxSamplesTrimsExisting(t *testing.T) {
	prov := &fakeProvider{}
	prov.setData(1, 2, 3, 4, 5, 6)
	w := widget.New(render.NewLineChart(), prov, 0)

	w.Refresh()
	require.Len(t, w.CurrentData(), 6)

	w.SetMaxSamples(3)

	data := w.CurrentData()
	require.Len(t, data, 3)
	assert.Equal(t, 4.0, data[0].Value)
	assert.Equal(t, 6.0, data[2].Value)
}

func TestWidgetRestartUnderContention(t *testing.T) {
	prov := &fakeProvider{}
	w := widget.New(render.NewLineChart(), prov, -1)

	done := make(chan struct{})
	go func() {
		defer close(done)

		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(2)
			go func() { defer wg.Done(); w.Start() }()
			go func() { defer wg.Done(); w.Stop() }()
			wg.Wait()
		}
		w.Stop()
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("widget deadlocked while restarting")
	}

	assert.False(t, w.IsRunning())
}

func TestWidgetNoCallbacksAfterStop(t *testing.T) {
	prov := &fakeProvider{}
	w := widget.New(render.NewLineChart(), prov, -1)

	w.Start()
	w.Stop()

	assert.Nil(t, prov.callback, "subscription is removed on stop")

	var fired bool
	w.OnData(func([]series.Sample) { fired = true })
	prov.emit(9)
	time.Sleep(20 * time.Millisecond)
	assert.False(t, fired)
}

func TestWidgetSetProvider(t *testing.T) {
	first := &fakeProvider{}
	first.setData(1)
	second := &fakeProvider{}
	second.setData(10, 20)

	w := widget.New(render.NewLineChart(), first, -1)
	w.Start()
	defer w.Stop()

	w.SetProvider(second)

	assert.True(t, first.stopped)
	assert.True(t, second.started)
	assert.Eventually(t, func() bool {
		v, ok := w.CurrentValue()
		return ok && v == 20
	}, time.Second, 5*time.Millisecond)
}

func TestWidgetDraw(t *testing.T) {
	prov := &fakeProvider{}
	prov.setData(10, 20, 15)
	w := widget.New(render.NewLineChart(), prov, 0)
	w.Refresh()

	rec := render.NewRecorder()
	w.Draw(rec, 400, 200)

	polylines := rec.OfKind(render.OpPolyline)
	require.Len(t, polylines, 1)
	assert.Len(t, polylines[0].Pts, 3)
}

func TestWidgetConfigure(t *testing.T) {
	prov := &fakeProvider{}
	chart := render.NewLineChart()
	w := widget.New(chart, prov, 0)

	var redraws int
	w.Invalidate(func() { redraws++ })

	title := "Load"
	w.Configure(render.LineOptions{Title: &title})

	assert.Equal(t, "Load", chart.Config().Title)
	assert.Equal(t, 1, redraws)
}

func TestWidgetCurrentValueEmpty(t *testing.T) {
	w := widget.New(render.NewLineChart(), &fakeProvider{}, 0)

	_, ok := w.CurrentValue()
	assert.False(t, ok)
	assert.Empty(t, w.CurrentData())
}

func TestWidgetSetRefreshInterval(t *testing.T) {
	prov := &fakeProvider{}
	prov.setData(4)
	w := widget.New(render.NewLineChart(), prov, -1)

	w.Start()
	defer w.Stop()

	w.SetRefreshInterval(5 * time.Millisecond)

	assert.Eventually(t, func() bool {
		v, ok := w.CurrentValue()
		return ok && v == 4
	}, time.Second, 5*time.Millisecond)
}
