package render

import (
	"fmt"
	"math"

	"github.com/Ckrest/graph-lib/internal/series"
)

// GaugeConfig holds the arc meter's appearance and thresholds.
type GaugeConfig struct {
	// Value range the sweep covers.
	MinValue float64
	MaxValue float64

	// Threshold tiers; boundaries are inclusive upward.
	WarningThreshold  float64
	CriticalThreshold float64

	NormalColor     Color
	WarningColor    Color
	CriticalColor   Color
	BackgroundColor Color
	TextColor       Color

	// ArcWidthRatio is the stroke width as a proportion of the radius.
	ArcWidthRatio float64
	// StartAngle and SweepAngle in degrees; the default 135/270 leaves
	// the bottom quarter open.
	StartAngle float64
	SweepAngle float64

	ShowValue   bool
	ValueFormat string
	Label       string
}

// DefaultGaugeConfig returns the documented defaults.
func DefaultGaugeConfig() GaugeConfig {
	return GaugeConfig{
		MaxValue:          100,
		WarningThreshold:  70,
		CriticalThreshold: 90,
		NormalColor:       RGB(0.204, 0.659, 0.325),
		WarningColor:      RGB(0.898, 0.612, 0),
		CriticalColor:     RGB(0.753, 0.110, 0.157),
		BackgroundColor:   RGBA(0.3, 0.3, 0.3, 0.3),
		TextColor:         RGB(0.2, 0.2, 0.2),
		ArcWidthRatio:     0.15,
		StartAngle:        135,
		SweepAngle:        270,
		ShowValue:         true,
		ValueFormat:       "%.0f",
	}
}

// GaugeOptions is a partial update of GaugeConfig.
type GaugeOptions struct {
	MinValue          *float64
	MaxValue          *float64
	WarningThreshold  *float64
	CriticalThreshold *float64
	NormalColor       *Color
	WarningColor      *Color
	CriticalColor     *Color
	BackgroundColor   *Color
	TextColor         *Color
	ArcWidthRatio     *float64
	StartAngle        *float64
	SweepAngle        *float64
	ShowValue         *bool
	ValueFormat       *string
	Label             *string
}

// Gauge renders the latest sample as a circular arc meter colored by
// threshold tier.
type Gauge struct {
	cfg GaugeConfig
}

// NewGauge returns a gauge with default configuration.
func NewGauge() *Gauge {
	return &Gauge{cfg: DefaultGaugeConfig()}
}

// Config returns a copy of the current configuration.
func (g *Gauge) Config() GaugeConfig {
	return g.cfg
}

// Configure merges GaugeOptions; other option types are ignored.
func (g *Gauge) Configure(opts any) {
	if o, ok := opts.(GaugeOptions); ok {
		g.Apply(o)
	}
}

// Apply merges the set fields of opts into the configuration.
func (g *Gauge) Apply(o GaugeOptions) {
	if o.MinValue != nil {
		g.cfg.MinValue = *o.MinValue
	}
	if o.MaxValue != nil {
		g.cfg.MaxValue = *o.MaxValue
	}
	if o.WarningThreshold != nil {
		g.cfg.WarningThreshold = *o.WarningThreshold
	}
	if o.CriticalThreshold != nil {
		g.cfg.CriticalThreshold = *o.CriticalThreshold
	}
	if o.NormalColor != nil {
		g.cfg.NormalColor = *o.NormalColor
	}
	if o.WarningColor != nil {
		g.cfg.WarningColor = *o.WarningColor
	}
	if o.CriticalColor != nil {
		g.cfg.CriticalColor = *o.CriticalColor
	}
	if o.BackgroundColor != nil {
		g.cfg.BackgroundColor = *o.BackgroundColor
	}
	if o.TextColor != nil {
		g.cfg.TextColor = *o.TextColor
	}
	if o.ArcWidthRatio != nil {
		g.cfg.ArcWidthRatio = *o.ArcWidthRatio
	}
	if o.StartAngle != nil {
		g.cfg.StartAngle = *o.StartAngle
	}
	if o.SweepAngle != nil {
		g.cfg.SweepAngle = *o.SweepAngle
	}
	if o.ShowValue != nil {
		g.cfg.ShowValue = *o.ShowValue
	}
	if o.ValueFormat != nil {
		g.cfg.ValueFormat = *o.ValueFormat
	}
	if o.Label != nil {
		g.cfg.Label = *o.Label
	}
}

// ValueColor returns the tier color for a value. Boundaries are inclusive
// on the upper tier: exactly the warning threshold is warning, exactly
// the critical threshold is critical.
func (g *Gauge) ValueColor(value float64) Color {
	switch {
	case value >= g.cfg.CriticalThreshold:
		return g.cfg.CriticalColor
	case value >= g.cfg.WarningThreshold:
		return g.cfg.WarningColor
	default:
		return g.cfg.NormalColor
	}
}

// Render draws the gauge from the latest sample, or the configured
// minimum when there is no data.
func (g *Gauge) Render(s Surface, data []series.Sample, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}

	value := g.cfg.MinValue
	if len(data) > 0 {
		value = data[len(data)-1].Value
	}

	w, h := float64(width), float64(height)
	cx := w / 2
	cy := h / 2
	radius := math.Min(w, h)/2 - 10
	if radius <= 0 {
		return
	}
	arcWidth := radius * g.cfg.ArcWidthRatio

	start := g.cfg.StartAngle * math.Pi / 180
	sweep := g.cfg.SweepAngle * math.Pi / 180

	s.SetColor(g.cfg.BackgroundColor)
	s.StrokeArc(cx, cy, radius-arcWidth/2, arcWidth, start, sweep)

	span := g.cfg.MaxValue - g.cfg.MinValue
	proportion := 0.0
	if span > 0 {
		proportion = (value - g.cfg.MinValue) / span
	}
	proportion = math.Max(0, math.Min(1, proportion))

	if proportion > 0 {
		s.SetColor(g.ValueColor(value))
		s.StrokeArc(cx, cy, radius-arcWidth/2, arcWidth, start, sweep*proportion)
	}

	if g.cfg.ShowValue {
		text := fmt.Sprintf(g.cfg.ValueFormat, value)
		size := radius * 0.4
		s.SetColor(g.cfg.TextColor)
		tw, th := s.MeasureText(text, size)
		s.DrawText(text, cx-tw/2, cy+th/3, size, true)
	}

	if g.cfg.Label != "" {
		size := radius * 0.15
		s.SetColor(g.cfg.TextColor.WithAlpha(0.7))
		tw, _ := s.MeasureText(g.cfg.Label, size)
		s.DrawText(g.cfg.Label, cx-tw/2, cy+radius*0.35, size, false)
	}
}
