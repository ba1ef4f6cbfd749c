package provider_test

import (
	"testing"
	"time"

	"github.com/Ckrest/graph-lib/internal/provider"
	"github.com/Ckrest/graph-lib/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticFixedData(t *testing.T) {
	data := []series.Sample{
		series.NewSample(time.Unix(0, 0), 10),
		series.NewSample(time.Unix(10, 0), 20),
	}
	p := provider.NewStatic(provider.StaticConfig{Data: data})

	got := p.Fetch()
	require.Len(t, got, 2)
	assert.Equal(t, 10.0, got[0].Value)

	got[0].Value = 999
	assert.Equal(t, 10.0, p.Fetch()[0].Value, "fetch must return a copy")
}

func TestStaticSineGenerator(t *testing.T) {
	base := time.Unix(100000, 0)
	p := provider.NewStatic(provider.StaticConfig{
		Generator: provider.GeneratorSine,
		Points:    20,
		Base:      base,
	})

	got := p.Fetch()
	require.Len(t, got, 20)

	for i, s := range got {
		assert.GreaterOrEqual(t, s.Value, 10.0-1e-9)
		assert.LessOrEqual(t, s.Value, 90.0+1e-9)
		if i > 0 {
			assert.True(t, got[i-1].Time.Before(s.Time), "timestamps ascend")
		}
	}
	assert.Equal(t, base.Add(-time.Minute), got[19].Time)
}

func TestStaticRandomSeeded(t *testing.T) {
	cfg := provider.StaticConfig{
		Generator: provider.GeneratorRandom,
		Points:    30,
		Seed:      42,
		Base:      time.Unix(100000, 0),
	}

	a := provider.NewStatic(cfg).Fetch()
	b := provider.NewStatic(cfg).Fetch()
	require.Len(t, a, 30)
	assert.Equal(t, a, b, "same seed yields the same walk")

	for _, s := range a {
		assert.GreaterOrEqual(t, s.Value, 0.0)
		assert.LessOrEqual(t, s.Value, 100.0)
	}
}

func TestStaticLinearRamp(t *testing.T) {
	p := provider.NewStatic(provider.StaticConfig{
		Generator: provider.GeneratorLinear,
		Points:    10,
	})

	got := p.Fetch()
	require.Len(t, got, 10)
	assert.Equal(t, 0.0, got[0].Value)
	assert.InDelta(t, 90.0, got[9].Value, 1e-9)
}

func TestStaticLifecycle(t *testing.T) {
	p := provider.NewStatic(provider.StaticConfig{})

	assert.False(t, p.Running())
	p.Start()
	assert.True(t, p.Running())
	p.Stop()
	p.Stop()
	assert.False(t, p.Running())
	assert.NoError(t, p.LastError())
}
