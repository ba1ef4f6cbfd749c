package render_test

import (
	"math"
	"testing"

	"github.com/Ckrest/graph-lib/internal/render"
	"github.com/stretchr/testify/assert"
)

func TestSVGDocument(t *testing.T) {
	s := render.NewSVG(400, 200)
	s.SetColor(render.RGB(1, 0, 0))
	s.FillRect(10, 10, 50, 20)
	s.DrawText("5 < 10 & 3", 5, 15, 12, true)

	doc := string(s.Bytes())
	assert.Contains(t, doc, `<svg xmlns="http://www.w3.org/2000/svg" width="400" height="200"`)
	assert.Contains(t, doc, `<rect x="10.00" y="10.00" width="50.00" height="20.00" fill="rgba(255,0,0,1.000)"/>`)
	assert.Contains(t, doc, "5 &lt; 10 &amp; 3", "text content is escaped")
	assert.Contains(t, doc, `font-weight="bold"`)
	assert.Contains(t, doc, "</svg>")
}

func TestSVGReset(t *testing.T) {
	s := render.NewSVG(100, 100)
	s.StrokeLine(0, 0, 100, 100, 1)
	s.Reset()

	assert.NotContains(t, string(s.Bytes()), "<line")
}

func TestSVGArc(t *testing.T) {
	s := render.NewSVG(100, 100)
	s.StrokeArc(50, 50, 40, 6, 0, 3*math.Pi/2)
	doc := string(s.Bytes())
	assert.Contains(t, doc, `A 40.00 40.00 0 1 1`, "sweeps past a half turn use the large-arc flag")

	s.Reset()
	s.StrokeArc(50, 50, 40, 6, 0, 2*math.Pi)
	assert.Contains(t, string(s.Bytes()), "<circle", "a full turn draws a circle")
}

func TestSVGRenderIntegration(t *testing.T) {
	chart := render.NewLineChart()
	s := render.NewSVG(400, 200)
	chart.Render(s, sampleSeries(), 400, 200)

	doc := string(s.Bytes())
	assert.Contains(t, doc, "<polyline")
	assert.Contains(t, doc, "<polygon")
	assert.Contains(t, doc, "<text")
}
