package render

// OpKind tags a recorded drawing instruction.
type OpKind string

const (
	OpFillRect OpKind = "fill_rect"
	OpLine     OpKind = "line"
	OpPolyline OpKind = "polyline"
	OpPolygon  OpKind = "polygon"
	OpCircle   OpKind = "circle"
	OpArc      OpKind = "arc"
	OpText     OpKind = "text"
)

// Op is one recorded instruction. Only the fields relevant to its kind
// are populated.
type Op struct {
	Kind  OpKind
	Color Color

	X, Y, W, H   float64
	Radius       float64
	Width        float64
	Start, Sweep float64
	Pts          []Point

	Text string
	Size float64
	Bold bool
}

// Recorder is a Surface that captures instructions instead of drawing.
// Text metrics are a fixed approximation, deterministic across runs.
type Recorder struct {
	ops   []Op
	color Color
}

// NewRecorder returns an empty recording surface.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Ops returns every recorded instruction in draw order.
func (r *Recorder) Ops() []Op {
	return r.ops
}

// OfKind returns the recorded instructions of one kind, in draw order.
func (r *Recorder) OfKind(kind OpKind) []Op {
	var out []Op
	for _, op := range r.ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}

	return out
}

// Texts returns the drawn strings in draw order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.OfKind(OpText) {
		out = append(out, op.Text)
	}

	return out
}

// Reset clears all recorded instructions.
func (r *Recorder) Reset() {
	r.ops = nil
}

func (r *Recorder) record(op Op) {
	op.Color = r.color
	r.ops = append(r.ops, op)
}

func (r *Recorder) SetColor(c Color) {
	r.color = c
}

func (r *Recorder) FillRect(x, y, w, h float64) {
	r.record(Op{Kind: OpFillRect, X: x, Y: y, W: w, H: h})
}

func (r *Recorder) StrokeLine(x1, y1, x2, y2, width float64) {
	r.record(Op{Kind: OpLine, Pts: []Point{{x1, y1}, {x2, y2}}, Width: width})
}

func (r *Recorder) StrokePolyline(pts []Point, width float64) {
	r.record(Op{Kind: OpPolyline, Pts: append([]Point(nil), pts...), Width: width})
}

func (r *Recorder) FillPolygon(pts []Point) {
	r.record(Op{Kind: OpPolygon, Pts: append([]Point(nil), pts...)})
}

func (r *Recorder) FillCircle(cx, cy, radius float64) {
	r.record(Op{Kind: OpCircle, X: cx, Y: cy, Radius: radius})
}

func (r *Recorder) StrokeArc(cx, cy, radius, width, start, sweep float64) {
	r.record(Op{Kind: OpArc, X: cx, Y: cy, Radius: radius, Width: width, Start: start, Sweep: sweep})
}

func (r *Recorder) DrawText(text string, x, y, size float64, bold bool) {
	r.record(Op{Kind: OpText, Text: text, X: x, Y: y, Size: size, Bold: bold})
}

func (r *Recorder) MeasureText(text string, size float64) (float64, float64) {
	return approxTextSize(text, size)
}

// approxTextSize estimates text extents without a font stack: monospace
// advance of 0.6em per rune.
func approxTextSize(text string, size float64) (float64, float64) {
	return 0.6 * size * float64(len([]rune(text))), size
}
