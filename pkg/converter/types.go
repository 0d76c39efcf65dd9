// Package converter exchanges LED timelines with Standard MIDI Files
package converter

// Defaults give one tick per millisecond
const (
	DefaultResolution = 500
	DefaultTempo      = 120.0
)

// Track layout of an exported file
const (
	ledsPrefix   = "leds:"
	maxVelocity  = 127
	noteChannel  = 0
	notesPerSpan = 128
)

// Converter handles conversions between pattern documents and MIDI
type Converter struct {
	ticksPerQuarter uint16
	tempo           float64
}

// New creates a converter writing files at the given resolution and tempo.
// Zero values select the defaults.
func New(ticksPerQuarter uint16, tempo float64) *Converter {
	if ticksPerQuarter == 0 {
		ticksPerQuarter = DefaultResolution
	}
	if tempo <= 0 {
		tempo = DefaultTempo
	}
	return &Converter{ticksPerQuarter: ticksPerQuarter, tempo: tempo}
}

// Tempo returns the tempo used for exports
func (c *Converter) Tempo() float64 {
	return c.tempo
}

// Resolution returns the ticks per quarter note used for exports
func (c *Converter) Resolution() uint16 {
	return c.ticksPerQuarter
}
