package provider

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/Ckrest/graph-lib/internal/series"
)

// Generator names a built-in synthetic series shape.
type Generator string

const (
	GeneratorSine   Generator = "sine"
	GeneratorRandom Generator = "random"
	GeneratorLinear Generator = "linear"
)

const defaultStaticPoints = 50

// StaticConfig configures a synthetic provider for demos and tests.
type StaticConfig struct {
	// Data, when set, is returned verbatim and generators are ignored.
	Data []series.Sample
	// Generator selects the synthetic shape. Default sine.
	Generator Generator
	// Points is the series length. Default 50.
	Points int
	// Seed drives the random walk; 0 seeds from the clock.
	Seed int64
	// Base is the timestamp of the last point; zero means now.
	Base time.Time
	// Step is the spacing between points. Default one minute.
	Step time.Duration
}

// Static serves a deterministic or pseudo-random synthetic series. It is
// pull-only: Start and Stop only track the running flag.
type Static struct {
	mu       sync.Mutex
	cfg      StaticConfig
	callback func(batch []series.Sample)
	running  bool
}

// NewStatic builds a synthetic provider.
func NewStatic(cfg StaticConfig) *Static {
	if cfg.Generator == "" {
		cfg.Generator = GeneratorSine
	}
	if cfg.Points <= 0 {
		cfg.Points = defaultStaticPoints
	}
	if cfg.Step <= 0 {
		cfg.Step = time.Minute
	}

	return &Static{cfg: cfg}
}

// Fetch returns the configured data or a freshly generated series.
func (s *Static) Fetch() []series.Sample {
	if s.cfg.Data != nil {
		out := make([]series.Sample, len(s.cfg.Data))
		copy(out, s.cfg.Data)
		return out
	}

	base := s.cfg.Base
	if base.IsZero() {
		base = time.Now()
	}

	switch s.cfg.Generator {
	case GeneratorRandom:
		return s.generateRandom(base)
	case GeneratorLinear:
		return s.generateLinear(base)
	default:
		return s.generateSine(base)
	}
}

func (s *Static) Subscribe(fn func(batch []series.Sample)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callback = fn
}

func (s *Static) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callback = nil
}

func (s *Static) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
}

func (s *Static) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

func (s *Static) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

func (s *Static) LastError() error {
	return nil
}

func (s *Static) timeAt(base time.Time, i int) time.Time {
	return base.Add(-time.Duration(s.cfg.Points-i) * s.cfg.Step)
}

func (s *Static) generateSine(base time.Time) []series.Sample {
	out := make([]series.Sample, 0, s.cfg.Points)
	for i := 0; i < s.cfg.Points; i++ {
		value := 50 + 40*math.Sin(float64(i)*0.2)
		out = append(out, series.NewSample(s.timeAt(base, i), value))
	}

	return out
}

func (s *Static) generateRandom(base time.Time) []series.Sample {
	seed := s.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	out := make([]series.Sample, 0, s.cfg.Points)
	value := 50.0
	for i := 0; i < s.cfg.Points; i++ {
		value += rng.Float64()*20 - 10
		value = math.Max(0, math.Min(100, value))
		out = append(out, series.NewSample(s.timeAt(base, i), value))
	}

	return out
}

func (s *Static) generateLinear(base time.Time) []series.Sample {
	out := make([]series.Sample, 0, s.cfg.Points)
	for i := 0; i < s.cfg.Points; i++ {
		value := float64(i) / float64(s.cfg.Points) * 100
		out = append(out, series.NewSample(s.timeAt(base, i), value))
	}

	return out
}
