package render

import (
	"bytes"
	"fmt"
	"math"
	"strings"
)

var svgEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// SVG is a Surface that accumulates an SVG document. It uses the same
// approximate text metrics as the Recorder, so layout matches what the
// tests verify.
type SVG struct {
	width, height int
	body          bytes.Buffer
	color         Color
}

// NewSVG returns an empty SVG surface of the given pixel dimensions.
func NewSVG(width, height int) *SVG {
	return &SVG{width: width, height: height}
}

// Bytes returns the complete SVG document drawn so far.
func (s *SVG) Bytes() []byte {
	var doc bytes.Buffer
	fmt.Fprintf(&doc,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		s.width, s.height, s.width, s.height)
	doc.Write(s.body.Bytes())
	doc.WriteString("</svg>\n")

	return doc.Bytes()
}

// Reset clears the drawing, keeping the dimensions.
func (s *SVG) Reset() {
	s.body.Reset()
}

func (s *SVG) fill() string {
	return cssColor(s.color)
}

func (s *SVG) SetColor(c Color) {
	s.color = c
}

func (s *SVG) FillRect(x, y, w, h float64) {
	fmt.Fprintf(&s.body, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
		x, y, w, h, s.fill())
}

func (s *SVG) StrokeLine(x1, y1, x2, y2, width float64) {
	fmt.Fprintf(&s.body, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f"/>`+"\n",
		x1, y1, x2, y2, s.fill(), width)
}

func (s *SVG) StrokePolyline(pts []Point, width float64) {
	fmt.Fprintf(&s.body,
		`<polyline points="%s" fill="none" stroke="%s" stroke-width="%.2f" stroke-linejoin="round" stroke-linecap="round"/>`+"\n",
		svgPoints(pts), s.fill(), width)
}

func (s *SVG) FillPolygon(pts []Point) {
	fmt.Fprintf(&s.body, `<polygon points="%s" fill="%s"/>`+"\n", svgPoints(pts), s.fill())
}

func (s *SVG) FillCircle(cx, cy, radius float64) {
	fmt.Fprintf(&s.body, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n",
		cx, cy, radius, s.fill())
}

func (s *SVG) StrokeArc(cx, cy, radius, width, start, sweep float64) {
	// A full turn collapses to a degenerate path; draw a circle instead.
	if sweep >= 2*math.Pi {
		fmt.Fprintf(&s.body, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="none" stroke="%s" stroke-width="%.2f"/>`+"\n",
			cx, cy, radius, s.fill(), width)
		return
	}

	x1 := cx + radius*math.Cos(start)
	y1 := cy + radius*math.Sin(start)
	x2 := cx + radius*math.Cos(start+sweep)
	y2 := cy + radius*math.Sin(start+sweep)

	large := 0
	if sweep > math.Pi {
		large = 1
	}

	fmt.Fprintf(&s.body,
		`<path d="M %.2f %.2f A %.2f %.2f 0 %d 1 %.2f %.2f" fill="none" stroke="%s" stroke-width="%.2f" stroke-linecap="round"/>`+"\n",
		x1, y1, radius, radius, large, x2, y2, s.fill(), width)
}

func (s *SVG) DrawText(text string, x, y, size float64, bold bool) {
	weight := "normal"
	if bold {
		weight = "bold"
	}
	fmt.Fprintf(&s.body,
		`<text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%.1f" font-weight="%s" fill="%s">%s</text>`+"\n",
		x, y, size, weight, s.fill(), svgEscaper.Replace(text))
}

func (s *SVG) MeasureText(text string, size float64) (float64, float64) {
	return approxTextSize(text, size)
}

func svgPoints(pts []Point) string {
	var b strings.Builder
	for i, p := range pts {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%.2f,%.2f", p.X, p.Y)
	}

	return b.String()
}

func cssColor(c Color) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.3f)",
		int(math.Round(c.R*255)), int(math.Round(c.G*255)), int(math.Round(c.B*255)), c.A)
}
