package editor

import "github.com/james-see/ledcostume/pkg/timeline"

// Zoom limits of the visible window
const (
	MinWindow timeline.Milliseconds = 200
	MaxWindow timeline.Milliseconds = 30 * 60 * 1000
)

// Viewport is the visible time window of the timeline. It never touches
// pattern data or the cursor.
type Viewport struct {
	Start, End timeline.Milliseconds
	Duration   timeline.Milliseconds
}

// NewViewport shows as much of a track of length duration as the limits allow
func NewViewport(duration timeline.Milliseconds) *Viewport {
	v := &Viewport{Duration: duration, End: duration}
	v.clamp()
	return v
}

// Window returns the visible length
func (v *Viewport) Window() timeline.Milliseconds {
	return v.End - v.Start
}

// SetDuration changes the track length and re-clamps the window
func (v *Viewport) SetDuration(d timeline.Milliseconds) {
	v.Duration = d
	v.clamp()
}

// Zoom scales the window by factor around center. factor < 1 zooms in.
func (v *Viewport) Zoom(factor float64, center timeline.Milliseconds) {
	if factor <= 0 {
		return
	}
	if center < v.Start || center > v.End {
		center = v.Start + v.Window()/2
	}
	left := float64(center-v.Start) * factor
	right := float64(v.End-center) * factor
	v.Start = center - timeline.Milliseconds(left)
	v.End = center + timeline.Milliseconds(right)
	v.clamp()
}

// Scroll moves the window by delta keeping its length
func (v *Viewport) Scroll(delta timeline.Milliseconds) {
	v.Start += delta
	v.End += delta
	v.clamp()
}

// MoveTo centers the window on t
func (v *Viewport) MoveTo(t timeline.Milliseconds) {
	w := v.Window()
	v.Start = t - w/2
	v.End = v.Start + w
	v.clamp()
}

// Time converts a column in a timeline of width columns to a time
func (v *Viewport) Time(col, width int) timeline.Milliseconds {
	if width <= 0 {
		return v.Start
	}
	return v.Start + v.Window()*timeline.Milliseconds(col)/timeline.Milliseconds(width)
}

// Column converts t to a column in a timeline of width columns; ok is false
// when t is outside the window
func (v *Viewport) Column(t timeline.Milliseconds, width int) (col int, ok bool) {
	if t < v.Start || t > v.End || v.Window() == 0 {
		return 0, false
	}
	col = int((t - v.Start) * timeline.Milliseconds(width) / v.Window())
	if col >= width {
		col = width - 1
	}
	return col, true
}

func (v *Viewport) clamp() {
	w := v.End - v.Start
	if w < MinWindow {
		w = MinWindow
	}
	if w > MaxWindow {
		w = MaxWindow
	}
	if v.Duration > 0 && w > v.Duration {
		w = v.Duration
		if w < MinWindow {
			w = MinWindow
		}
	}
	if v.Duration > 0 && v.Start+w > v.Duration {
		v.Start = v.Duration - w
	}
	if v.Start < 0 {
		v.Start = 0
	}
	v.End = v.Start + w
}
