// Package render turns sample sequences into drawing instructions on an
// abstract 2-D surface. Renderers are pure transforms: they decide
// positions, colors and labels; the surface collaborator owns primitive
// drawing and text measurement.
package render

import "github.com/Ckrest/graph-lib/internal/series"

// Point is a position in surface pixel coordinates.
type Point struct {
	X, Y float64
}

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// RGB returns an opaque color.
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// RGBA returns a color with explicit alpha.
func RGBA(r, g, b, a float64) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// WithAlpha returns the color with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// Surface is the abstract drawing collaborator a renderer targets. All
// coordinates are pixels with the origin at the top left. Angles are
// radians, measured clockwise from the positive X axis.
type Surface interface {
	SetColor(c Color)
	FillRect(x, y, w, h float64)
	StrokeLine(x1, y1, x2, y2, width float64)
	StrokePolyline(pts []Point, width float64)
	FillPolygon(pts []Point)
	FillCircle(cx, cy, r float64)
	StrokeArc(cx, cy, r, width, start, sweep float64)
	DrawText(text string, x, y, size float64, bold bool)
	MeasureText(text string, size float64) (w, h float64)
}

// Renderer is a pure transform from samples and dimensions to drawing
// instructions. Render must complete without blocking I/O and must be a
// no-op on degenerate dimensions rather than fail.
//
// Configure merges a partial options value into the renderer's
// configuration. Option types a renderer does not understand are
// accepted and ignored.
type Renderer interface {
	Render(s Surface, data []series.Sample, width, height int)
	Configure(opts any)
}
