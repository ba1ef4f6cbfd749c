package render

import (
	"testing"
	"time"

	"github.com/Ckrest/graph-lib/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rangeSamples(values ...float64) []series.Sample {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	out := make([]series.Sample, len(values))
	for i, v := range values {
		out[i] = series.NewSample(base.Add(time.Duration(i)*time.Second), v)
	}

	return out
}

func TestYRangePadding(t *testing.T) {
	c := NewLineChart()

	lo, hi := c.yRange(rangeSamples(10, 20, 15))
	assert.InDelta(t, 9.0, lo, 1e-9)
	assert.InDelta(t, 21.0, hi, 1e-9)
}

func TestYRangeNegativeValues(t *testing.T) {
	c := NewLineChart()

	// The padded floor tracks the data even below zero.
	lo, hi := c.yRange(rangeSamples(-5, -1))
	assert.InDelta(t, -5.4, lo, 1e-9)
	assert.InDelta(t, -0.6, hi, 1e-9)
	assert.LessOrEqual(t, lo, -5.0)
	assert.GreaterOrEqual(t, hi, -1.0)
}

func TestYRangeConstantData(t *testing.T) {
	c := NewLineChart()

	lo, hi := c.yRange(rangeSamples(42, 42, 42))
	assert.Greater(t, hi, lo, "a flat series still gets an open range")
	assert.InDelta(t, 42.0, lo, 1e-9)
	assert.InDelta(t, 43.0, hi, 1e-9)
}

func TestYRangeFixedBounds(t *testing.T) {
	c := NewLineChart()
	lo, hi := 0.0, 100.0
	c.Apply(LineOptions{YMin: &lo, YMax: &hi})

	gotLo, gotHi := c.yRange(rangeSamples(10, 200))
	assert.Equal(t, 0.0, gotLo)
	assert.Equal(t, 100.0, gotHi)
}

func TestXRangeCoincidentTimestamps(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	data := []series.Sample{
		series.NewSample(base, 1),
		series.NewSample(base, 2),
	}

	lo, hi := xRange(data)
	assert.InDelta(t, 1.0, hi-lo, 1e-9)
}

func TestMapPoints(t *testing.T) {
	data := rangeSamples(0, 10, 5)
	pts := mapPoints(data, 50, 20, 300, 150, timeSeconds(data[0].Time), timeSeconds(data[2].Time), 0, 10)
	require.Len(t, pts, 3)

	// Endpoints land on the plot edges.
	assert.InDelta(t, 50.0, pts[0].X, 1e-9)
	assert.InDelta(t, 350.0, pts[2].X, 1e-9)

	// Value 0 sits on the bottom edge, value 10 on the top.
	assert.InDelta(t, 170.0, pts[0].Y, 1e-9)
	assert.InDelta(t, 20.0, pts[1].Y, 1e-9)
	assert.InDelta(t, 95.0, pts[2].Y, 1e-9)
}

func TestComputeMargins(t *testing.T) {
	rec := NewRecorder()

	c := NewLineChart()
	m := c.computeMargins(rec)
	assert.Greater(t, m.left, c.cfg.Padding, "tick labels widen the left gutter")
	assert.GreaterOrEqual(t, m.bottom, 22.0)
	assert.Equal(t, c.cfg.Padding, m.top)

	title := "Throughput"
	c.Apply(LineOptions{Title: &title})
	assert.GreaterOrEqual(t, c.computeMargins(rec).top, 24.0)

	fixed := 55.0
	c.Apply(LineOptions{MarginLeft: &fixed})
	assert.Equal(t, 55.0, c.computeMargins(rec).left)
}

func TestAutoTimeFormat(t *testing.T) {
	assert.Equal(t, FormatSeconds, autoTimeFormat(90*time.Second))
	assert.Equal(t, FormatTime, autoTimeFormat(time.Hour))
	assert.Equal(t, FormatDateTime, autoTimeFormat(30*time.Hour))
	assert.Equal(t, FormatDate, autoTimeFormat(72*time.Hour))
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 6, 1, 14, 30, 5, 0, time.UTC)

	assert.Equal(t, "14:30:05", formatTime(ts, FormatSeconds))
	assert.Equal(t, "14:30", formatTime(ts, FormatTime))
	assert.Equal(t, "06/01 14:30", formatTime(ts, FormatDateTime))
	assert.Equal(t, "06/01", formatTime(ts, FormatDate))
	assert.Equal(t, "2024-06-01", formatTime(ts, "2006-01-02"))
}
