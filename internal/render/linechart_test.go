package render_test

import (
	"testing"
	"time"

	"github.com/Ckrest/graph-lib/internal/render"
	"github.com/Ckrest/graph-lib/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSeries() []series.Sample {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	return []series.Sample{
		series.NewSample(base, 10),
		series.NewSample(base.Add(10*time.Second), 20),
		series.NewSample(base.Add(20*time.Second), 15),
	}
}

func TestLineChartRender(t *testing.T) {
	chart := render.NewLineChart()
	show := true
	chart.Apply(render.LineOptions{ShowCurrent: &show})

	rec := render.NewRecorder()
	chart.Render(rec, sampleSeries(), 400, 200)

	polylines := rec.OfKind(render.OpPolyline)
	require.Len(t, polylines, 1)
	pts := polylines[0].Pts
	require.Len(t, pts, 3, "one point per sample")

	// Left gutter holds the tick labels, so the plot starts well inside.
	assert.Greater(t, pts[0].X, 0.0)
	assert.Less(t, pts[0].X, pts[1].X)
	assert.Less(t, pts[1].X, pts[2].X)

	// Higher values draw higher on screen.
	assert.Greater(t, pts[0].Y, pts[1].Y)
	assert.Less(t, pts[1].Y, pts[2].Y)

	assert.Contains(t, rec.Texts(), "15.0", "badge shows the latest value")
	assert.NotEmpty(t, rec.OfKind(render.OpPolygon), "fill enabled by default")
}

func TestLineChartTickLabels(t *testing.T) {
	chart := render.NewLineChart()
	unit := "ms"
	chart.Apply(render.LineOptions{Unit: &unit})

	rec := render.NewRecorder()
	chart.Render(rec, sampleSeries(), 400, 200)

	texts := rec.Texts()
	// GridLines+1 value labels plus three time labels.
	require.Len(t, texts, 8)
	// Auto range pads the 10..20 span by a tenth at each end.
	assert.Contains(t, texts, "21ms")
	assert.Contains(t, texts, "9ms")
}

func TestLineChartEmptyData(t *testing.T) {
	chart := render.NewLineChart()
	rec := render.NewRecorder()
	chart.Render(rec, nil, 400, 200)

	rects := rec.OfKind(render.OpFillRect)
	require.Len(t, rects, 1)
	assert.Equal(t, 400.0, rects[0].W)
	assert.Equal(t, 200.0, rects[0].H)
	assert.Equal(t, []string{"No data"}, rec.Texts())
	assert.Empty(t, rec.OfKind(render.OpPolyline))
}

func TestLineChartSinglePoint(t *testing.T) {
	chart := render.NewLineChart()
	rec := render.NewRecorder()
	chart.Render(rec, sampleSeries()[:1], 400, 200)

	assert.Empty(t, rec.OfKind(render.OpPolyline), "a single sample has no segments")
	assert.Empty(t, rec.OfKind(render.OpPolygon))
}

func TestLineChartDegenerateSize(t *testing.T) {
	chart := render.NewLineChart()
	rec := render.NewRecorder()

	chart.Render(rec, sampleSeries(), 0, 200)
	chart.Render(rec, sampleSeries(), 400, -1)

	assert.Empty(t, rec.Ops())
}

func TestLineChartApplyPartial(t *testing.T) {
	chart := render.NewLineChart()
	defaults := chart.Config()

	title := "Latency"
	width := 3.5
	chart.Apply(render.LineOptions{Title: &title, LineWidth: &width})

	cfg := chart.Config()
	assert.Equal(t, "Latency", cfg.Title)
	assert.Equal(t, 3.5, cfg.LineWidth)
	assert.Equal(t, defaults.LineColor, cfg.LineColor)
	assert.Equal(t, defaults.GridLines, cfg.GridLines)
}

func TestLineChartYAutoReset(t *testing.T) {
	chart := render.NewLineChart()

	lo, hi := 0.0, 50.0
	chart.Apply(render.LineOptions{YMin: &lo, YMax: &hi})
	require.NotNil(t, chart.Config().YMin)

	auto := true
	chart.Apply(render.LineOptions{YAuto: &auto})
	assert.Nil(t, chart.Config().YMin)
	assert.Nil(t, chart.Config().YMax)
}

func TestLineChartConfigureIgnoresForeignOptions(t *testing.T) {
	chart := render.NewLineChart()
	before := chart.Config()

	chart.Configure(render.GaugeOptions{})
	chart.Configure(42)

	assert.Equal(t, before, chart.Config())
}

func TestLineChartPointMarkers(t *testing.T) {
	chart := render.NewLineChart()
	show := true
	chart.Apply(render.LineOptions{ShowPoints: &show})

	rec := render.NewRecorder()
	chart.Render(rec, sampleSeries(), 400, 200)

	circles := rec.OfKind(render.OpCircle)
	require.Len(t, circles, 3)
	assert.Equal(t, 3.0, circles[0].Radius)
}
