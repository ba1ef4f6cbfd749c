// Package series holds the sample value object and the bounded rolling
// history that every streaming provider produces into.
package series

import (
	"math"
	"time"
)

// Sample is a single timestamped reading. Immutable once created.
type Sample struct {
	Time  time.Time
	Value float64
	Label string
}

// NewSample creates a sample for the given time and value.
func NewSample(t time.Time, value float64) Sample {
	return Sample{Time: t, Value: value}
}

// IsFinite reports whether the sample value is a usable number.
// Producers must reject non-finite values before they reach a renderer.
func (s Sample) IsFinite() bool {
	return !math.IsNaN(s.Value) && !math.IsInf(s.Value, 0)
}
