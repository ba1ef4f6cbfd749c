package render

import (
	"fmt"
	"math"
	"time"

	"github.com/Ckrest/graph-lib/internal/series"
)

// Anchor names a corner of the chart for the current-value badge.
type Anchor string

const (
	AnchorTopRight    Anchor = "top-right"
	AnchorTopLeft     Anchor = "top-left"
	AnchorBottomRight Anchor = "bottom-right"
	AnchorBottomLeft  Anchor = "bottom-left"
)

// LineConfig holds everything the line chart can be told about its
// appearance. All fields have working defaults; see DefaultLineConfig.
type LineConfig struct {
	// Labels
	Title  string
	YLabel string
	XLabel string
	Unit   string

	// Line styling
	LineColor Color
	LineWidth float64
	ShowFill  bool
	FillColor Color

	// Y bounds: nil means auto-range from the data.
	YMin *float64
	YMax *float64
	// YPadRatio grows the auto range at both ends by this fraction of
	// the observed span. Zero disables padding.
	YPadRatio float64

	// Axes
	ShowAxes  bool
	AxisColor Color

	// Grid
	ShowGrid  bool
	GridColor Color
	GridLines int

	// Tick labels
	ShowYTicks   bool
	ShowXTicks   bool
	TickColor    Color
	TickFontSize float64
	YTickFormat  string // fmt verb for values, e.g. "%.0f"
	XTickFormat  string // named format or explicit time layout

	// Current-value badge
	ShowCurrent     bool
	CurrentAnchor   Anchor
	CurrentFormat   string
	CurrentFontSize float64

	// Margins: nil means auto-calculated from the visible elements.
	MarginTop    *float64
	MarginBottom *float64
	MarginLeft   *float64
	MarginRight  *float64
	Padding      float64

	// Point markers
	ShowPoints  bool
	PointRadius float64
}

// DefaultLineConfig returns the documented defaults.
func DefaultLineConfig() LineConfig {
	blue := RGB(0.208, 0.518, 0.894)

	return LineConfig{
		LineColor: blue,
		LineWidth: 2,
		ShowFill:  true,
		FillColor: blue.WithAlpha(0.2),

		YPadRatio: 0.1,

		ShowAxes:  true,
		AxisColor: RGBA(0.4, 0.4, 0.4, 0.8),

		ShowGrid:  true,
		GridColor: RGBA(0.5, 0.5, 0.5, 0.15),
		GridLines: 4,

		ShowYTicks:   true,
		ShowXTicks:   true,
		TickColor:    RGB(0.4, 0.4, 0.4),
		TickFontSize: 10,
		YTickFormat:  "%.0f",
		XTickFormat:  FormatAuto,

		CurrentAnchor:   AnchorTopRight,
		CurrentFormat:   "%.1f",
		CurrentFontSize: 14,

		Padding: 8,

		PointRadius: 3,
	}
}

// LineOptions is a partial update of LineConfig: only the set (non-nil)
// fields are merged, so callers reconfigure single options at runtime
// without disturbing the rest.
type LineOptions struct {
	Title  *string
	YLabel *string
	XLabel *string
	Unit   *string

	LineColor *Color
	LineWidth *float64
	ShowFill  *bool
	FillColor *Color

	// YMin/YMax set the fixed bounds; YAuto reverts both to auto.
	YMin      *float64
	YMax      *float64
	YAuto     *bool
	YPadRatio *float64

	ShowAxes  *bool
	AxisColor *Color

	ShowGrid  *bool
	GridColor *Color
	GridLines *int

	ShowYTicks   *bool
	ShowXTicks   *bool
	TickColor    *Color
	TickFontSize *float64
	YTickFormat  *string
	XTickFormat  *string

	ShowCurrent     *bool
	CurrentAnchor   *Anchor
	CurrentFormat   *string
	CurrentFontSize *float64

	MarginTop    *float64
	MarginBottom *float64
	MarginLeft   *float64
	MarginRight  *float64
	Padding      *float64

	ShowPoints  *bool
	PointRadius *float64
}

// LineChart renders a time series as an auto-ranged, axis-labeled line.
type LineChart struct {
	cfg LineConfig
}

// NewLineChart returns a line chart with default configuration.
func NewLineChart() *LineChart {
	return &LineChart{cfg: DefaultLineConfig()}
}

// Config returns a copy of the current configuration.
func (c *LineChart) Config() LineConfig {
	return c.cfg
}

// Configure merges LineOptions; other option types are ignored.
func (c *LineChart) Configure(opts any) {
	if o, ok := opts.(LineOptions); ok {
		c.Apply(o)
	}
}

// Apply merges the set fields of opts into the configuration.
func (c *LineChart) Apply(o LineOptions) {
	if o.Title != nil {
		c.cfg.Title = *o.Title
	}
	if o.YLabel != nil {
		c.cfg.YLabel = *o.YLabel
	}
	if o.XLabel != nil {
		c.cfg.XLabel = *o.XLabel
	}
	if o.Unit != nil {
		c.cfg.Unit = *o.Unit
	}
	if o.LineColor != nil {
		c.cfg.LineColor = *o.LineColor
	}
	if o.LineWidth != nil {
		c.cfg.LineWidth = *o.LineWidth
	}
	if o.ShowFill != nil {
		c.cfg.ShowFill = *o.ShowFill
	}
	if o.FillColor != nil {
		c.cfg.FillColor = *o.FillColor
	}
	if o.YAuto != nil && *o.YAuto {
		c.cfg.YMin = nil
		c.cfg.YMax = nil
	}
	if o.YMin != nil {
		v := *o.YMin
		c.cfg.YMin = &v
	}
	if o.YMax != nil {
		v := *o.YMax
		c.cfg.YMax = &v
	}
	if o.YPadRatio != nil {
		c.cfg.YPadRatio = *o.YPadRatio
	}
	if o.ShowAxes != nil {
		c.cfg.ShowAxes = *o.ShowAxes
	}
	if o.AxisColor != nil {
		c.cfg.AxisColor = *o.AxisColor
	}
	if o.ShowGrid != nil {
		c.cfg.ShowGrid = *o.ShowGrid
	}
	if o.GridColor != nil {
		c.cfg.GridColor = *o.GridColor
	}
	if o.GridLines != nil && *o.GridLines > 0 {
		c.cfg.GridLines = *o.GridLines
	}
	if o.ShowYTicks != nil {
		c.cfg.ShowYTicks = *o.ShowYTicks
	}
	if o.ShowXTicks != nil {
		c.cfg.ShowXTicks = *o.ShowXTicks
	}
	if o.TickColor != nil {
		c.cfg.TickColor = *o.TickColor
	}
	if o.TickFontSize != nil {
		c.cfg.TickFontSize = *o.TickFontSize
	}
	if o.YTickFormat != nil {
		c.cfg.YTickFormat = *o.YTickFormat
	}
	if o.XTickFormat != nil {
		c.cfg.XTickFormat = *o.XTickFormat
	}
	if o.ShowCurrent != nil {
		c.cfg.ShowCurrent = *o.ShowCurrent
	}
	if o.CurrentAnchor != nil {
		c.cfg.CurrentAnchor = *o.CurrentAnchor
	}
	if o.CurrentFormat != nil {
		c.cfg.CurrentFormat = *o.CurrentFormat
	}
	if o.CurrentFontSize != nil {
		c.cfg.CurrentFontSize = *o.CurrentFontSize
	}
	if o.MarginTop != nil {
		v := *o.MarginTop
		c.cfg.MarginTop = &v
	}
	if o.MarginBottom != nil {
		v := *o.MarginBottom
		c.cfg.MarginBottom = &v
	}
	if o.MarginLeft != nil {
		v := *o.MarginLeft
		c.cfg.MarginLeft = &v
	}
	if o.MarginRight != nil {
		v := *o.MarginRight
		c.cfg.MarginRight = &v
	}
	if o.Padding != nil {
		c.cfg.Padding = *o.Padding
	}
	if o.ShowPoints != nil {
		c.cfg.ShowPoints = *o.ShowPoints
	}
	if o.PointRadius != nil {
		c.cfg.PointRadius = *o.PointRadius
	}
}

// margins is the per-frame gutter allocation around the plot area.
type margins struct {
	top, bottom, left, right float64
}

// Render draws the chart. Degenerate dimensions or an empty plot area
// make the frame a no-op; empty data renders a placeholder.
func (c *LineChart) Render(s Surface, data []series.Sample, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}

	if len(data) == 0 {
		c.renderEmpty(s, float64(width), float64(height))
		return
	}

	w, h := float64(width), float64(height)
	m := c.computeMargins(s)

	plotX := m.left
	plotY := m.top
	plotW := w - m.left - m.right
	plotH := h - m.top - m.bottom
	if plotW <= 0 || plotH <= 0 {
		return
	}

	yMin, yMax := c.yRange(data)
	xMin, xMax := xRange(data)

	if c.cfg.ShowGrid {
		c.renderGrid(s, plotX, plotY, plotW, plotH)
	}
	if c.cfg.ShowAxes {
		c.renderAxes(s, plotX, plotY, plotW, plotH)
	}
	if c.cfg.ShowYTicks {
		c.renderYTicks(s, plotX, plotY, plotH, yMin, yMax)
	}
	if c.cfg.ShowXTicks {
		c.renderXTicks(s, plotX, plotY, plotW, plotH, xMin, xMax)
	}

	pts := mapPoints(data, plotX, plotY, plotW, plotH, xMin, xMax, yMin, yMax)

	if c.cfg.ShowFill && len(pts) >= 2 {
		c.renderFill(s, pts, plotY+plotH)
	}
	if len(pts) >= 2 {
		s.SetColor(c.cfg.LineColor)
		s.StrokePolyline(pts, c.cfg.LineWidth)
	}
	if c.cfg.ShowPoints {
		s.SetColor(c.cfg.LineColor)
		for _, p := range pts {
			s.FillCircle(p.X, p.Y, c.cfg.PointRadius)
		}
	}

	if c.cfg.Title != "" {
		c.renderTitle(s, w, m.top)
	}
	if c.cfg.YLabel != "" {
		c.renderYLabel(s, h)
	}
	if c.cfg.XLabel != "" {
		c.renderXLabel(s, w, h)
	}
	if c.cfg.ShowCurrent {
		c.renderCurrentValue(s, data, w, h, m)
	}
}

// computeMargins recomputes gutters every frame: labels and config can
// change between frames, and tick width depends on the surface's text
// metrics.
func (c *LineChart) computeMargins(s Surface) margins {
	cfg := c.cfg

	m := margins{
		top:    cfg.Padding,
		bottom: cfg.Padding,
		left:   cfg.Padding,
		right:  cfg.Padding,
	}
	if cfg.MarginTop != nil {
		m.top = *cfg.MarginTop
	}
	if cfg.MarginBottom != nil {
		m.bottom = *cfg.MarginBottom
	}
	if cfg.MarginLeft != nil {
		m.left = *cfg.MarginLeft
	}
	if cfg.MarginRight != nil {
		m.right = *cfg.MarginRight
	}

	if cfg.Title != "" {
		m.top = math.Max(m.top, 24)
	}

	if cfg.ShowYTicks && cfg.MarginLeft == nil {
		// Width of the widest expected label plus a gutter.
		sample := fmt.Sprintf(cfg.YTickFormat, 9999.9) + cfg.Unit
		tw, _ := s.MeasureText(sample, cfg.TickFontSize)
		m.left = math.Max(m.left, tw+12)
	}
	if cfg.YLabel != "" {
		m.left += 18
	}

	if cfg.ShowXTicks {
		m.bottom = math.Max(m.bottom, 22)
	}
	if cfg.XLabel != "" {
		m.bottom += 16
	}

	return m
}

// yRange computes the vertical value range: fixed bounds when configured,
// otherwise the observed extremes padded by YPadRatio of the span. A zero
// span is forced open so the scale never degenerates.
func (c *LineChart) yRange(data []series.Sample) (float64, float64) {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, p := range data {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}

	span := hi - lo
	yMin, yMax := lo, hi
	if c.cfg.YMin != nil {
		yMin = *c.cfg.YMin
	} else {
		yMin = lo - span*c.cfg.YPadRatio
	}
	if c.cfg.YMax != nil {
		yMax = *c.cfg.YMax
	} else {
		yMax = hi + span*c.cfg.YPadRatio
	}

	if yMax == yMin {
		yMax = yMin + 1
	}

	return yMin, yMax
}

// xRange is the observed timestamp range, forced open to one second when
// all samples coincide.
func xRange(data []series.Sample) (float64, float64) {
	xMin := math.Inf(1)
	xMax := math.Inf(-1)
	for _, p := range data {
		ts := timeSeconds(p.Time)
		xMin = math.Min(xMin, ts)
		xMax = math.Max(xMax, ts)
	}

	if xMax == xMin {
		xMax = xMin + 1
	}

	return xMin, xMax
}

func timeSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// mapPoints linearly maps samples into the plot area. Y is inverted:
// higher values draw higher on screen.
func mapPoints(data []series.Sample, plotX, plotY, plotW, plotH, xMin, xMax, yMin, yMax float64) []Point {
	pts := make([]Point, 0, len(data))
	for _, p := range data {
		x := plotX + (timeSeconds(p.Time)-xMin)/(xMax-xMin)*plotW
		y := plotY + (1-(p.Value-yMin)/(yMax-yMin))*plotH
		pts = append(pts, Point{X: x, Y: y})
	}

	return pts
}

func (c *LineChart) renderEmpty(s Surface, w, h float64) {
	s.SetColor(RGBA(0.5, 0.5, 0.5, 0.1))
	s.FillRect(0, 0, w, h)

	text := "No data"
	s.SetColor(RGBA(0.5, 0.5, 0.5, 0.5))
	tw, th := s.MeasureText(text, 12)
	s.DrawText(text, (w-tw)/2, (h+th)/2, 12, false)
}

func (c *LineChart) renderGrid(s Surface, x, y, w, h float64) {
	s.SetColor(c.cfg.GridColor)
	n := c.cfg.GridLines
	for i := 0; i <= n; i++ {
		lineY := y + float64(i)/float64(n)*h
		s.StrokeLine(x, lineY, x+w, lineY, 1)
	}
}

func (c *LineChart) renderAxes(s Surface, x, y, w, h float64) {
	s.SetColor(c.cfg.AxisColor)
	s.StrokeLine(x, y, x, y+h, 1)
	s.StrokeLine(x, y+h, x+w, y+h, 1)
}

func (c *LineChart) renderYTicks(s Surface, x, y, h, yMin, yMax float64) {
	s.SetColor(c.cfg.TickColor)
	n := c.cfg.GridLines
	for i := 0; i <= n; i++ {
		value := yMax - float64(i)/float64(n)*(yMax-yMin)
		label := fmt.Sprintf(c.cfg.YTickFormat, value) + c.cfg.Unit

		tickY := y + float64(i)/float64(n)*h
		tw, th := s.MeasureText(label, c.cfg.TickFontSize)
		s.DrawText(label, x-tw-4, tickY+th/2-1, c.cfg.TickFontSize, false)
	}
}

func (c *LineChart) renderXTicks(s Surface, x, y, w, h, xMin, xMax float64) {
	s.SetColor(c.cfg.TickColor)

	format := c.cfg.XTickFormat
	span := time.Duration((xMax - xMin) * float64(time.Second))
	if format == FormatAuto {
		format = autoTimeFormat(span)
	}

	// Exactly three labels: start, middle and end of the visible range.
	ticks := []float64{xMin, (xMin + xMax) / 2, xMax}
	for i, ts := range ticks {
		label := formatTime(time.Unix(0, int64(ts*float64(time.Second))), format)
		tickX := x + (ts-xMin)/(xMax-xMin)*w
		tw, th := s.MeasureText(label, c.cfg.TickFontSize)

		var textX float64
		switch i {
		case 0:
			textX = tickX
		case 2:
			textX = tickX - tw
		default:
			textX = tickX - tw/2
		}

		s.DrawText(label, textX, y+h+th+4, c.cfg.TickFontSize, false)
	}
}

func (c *LineChart) renderFill(s Surface, pts []Point, baseline float64) {
	polygon := make([]Point, 0, len(pts)+2)
	polygon = append(polygon, Point{X: pts[0].X, Y: baseline})
	polygon = append(polygon, pts...)
	polygon = append(polygon, Point{X: pts[len(pts)-1].X, Y: baseline})

	s.SetColor(c.cfg.FillColor)
	s.FillPolygon(polygon)
}

func (c *LineChart) renderTitle(s Surface, w, marginTop float64) {
	s.SetColor(c.cfg.TickColor)
	tw, _ := s.MeasureText(c.cfg.Title, 13)
	s.DrawText(c.cfg.Title, (w-tw)/2, marginTop-8, 13, true)
}

func (c *LineChart) renderYLabel(s Surface, h float64) {
	// No rotated-text capability on the surface; the label sits in the
	// extra left gutter reserved by computeMargins.
	s.SetColor(c.cfg.TickColor)
	_, th := s.MeasureText(c.cfg.YLabel, 11)
	s.DrawText(c.cfg.YLabel, 2, h/2+th/2, 11, false)
}

func (c *LineChart) renderXLabel(s Surface, w, h float64) {
	s.SetColor(c.cfg.TickColor)
	tw, _ := s.MeasureText(c.cfg.XLabel, 11)
	s.DrawText(c.cfg.XLabel, (w-tw)/2, h-4, 11, false)
}

// renderCurrentValue draws the latest value in a corner anchor over a
// background plate for legibility.
func (c *LineChart) renderCurrentValue(s Surface, data []series.Sample, w, h float64, m margins) {
	current := data[len(data)-1].Value
	label := fmt.Sprintf(c.cfg.CurrentFormat, current) + c.cfg.Unit

	size := c.cfg.CurrentFontSize
	tw, th := s.MeasureText(label, size)

	const pad = 8
	var x, y float64
	switch c.cfg.CurrentAnchor {
	case AnchorTopLeft:
		x = m.left + pad
		y = m.top + th + pad
	case AnchorBottomLeft:
		x = m.left + pad
		y = h - m.bottom - pad
	case AnchorBottomRight:
		x = w - m.right - tw - pad
		y = h - m.bottom - pad
	default: // top-right
		x = w - m.right - tw - pad
		y = m.top + th + pad
	}

	s.SetColor(RGBA(1, 1, 1, 0.8))
	s.FillRect(x-4, y-th-2, tw+8, th+6)

	s.SetColor(c.cfg.LineColor)
	s.DrawText(label, x, y, size, true)
}
