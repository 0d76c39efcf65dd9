package timeline

import "github.com/google/uuid"

// Interval is a colored span of time. Start <= End; zero length intervals are markers.
type Interval struct {
	ID    string // in-memory identity, never persisted
	Start Milliseconds
	End   Milliseconds
	Color Color
}

// NewInterval creates an interval with a fresh identity. An empty color defaults to white.
func NewInterval(start, end Milliseconds, color Color) Interval {
	if color == "" {
		color = White
	}
	return Interval{
		ID:    uuid.NewString(),
		Start: start,
		End:   end,
		Color: color,
	}
}

// Contains reports whether t lies strictly inside the interval.
// Both endpoints are excluded.
func (iv Interval) Contains(t Milliseconds) bool {
	return iv.Start < t && t < iv.End
}

// Shift returns a copy moved by delta
func (iv Interval) Shift(delta Milliseconds) Interval {
	iv.Start += delta
	iv.End += delta
	return iv
}

// Length returns End - Start
func (iv Interval) Length() Milliseconds {
	return iv.End - iv.Start
}

// Valid reports whether Start <= End
func (iv Interval) Valid() bool {
	return iv.Start <= iv.End
}
