// Package generate builds procedural light patterns for a costume. Every body
// part gets one group whose intervals repeat an effect block until the track
// ends: heads pulse, hands cycle random hues and everything else fades through
// a gradient.
package generate

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/james-see/ledcostume/pkg/debug"
	"github.com/james-see/ledcostume/pkg/document"
	"github.com/james-see/ledcostume/pkg/timeline"
)

const (
	// DefaultFrame is the length of one generated interval
	DefaultFrame timeline.Milliseconds = 500
	// BodyBlock is the fixed effect length of body parts
	BodyBlock timeline.Milliseconds = 5000
	// MinBlock and MaxBlock bound the randomly chosen effect length of other parts
	MinBlock timeline.Milliseconds = 3000
	MaxBlock timeline.Milliseconds = 6000
)

// StartColors are the pastel colors effects begin with
var StartColors = []timeline.Color{
	"#FFBABA", "#B3FFBA", "#BAE1FF", "#FFFFBA", "#FFBAF0",
	"#BAFFC9", "#BAC6FF", "#FFD3BA", "#FFBAB2", "#BABAFF",
}

// EndColors are the saturated colors gradients fade to
var EndColors = []timeline.Color{
	"#FF0000", "#00FF00", "#0000FF", "#FFFF00", "#FF00FF",
	"#00FFFF", "#00008B", "#FF4500", "#8B0000", "#0000CD",
}

// Effect is the kind of intervals a body part is filled with
type Effect int

const (
	Gradient Effect = iota
	Pulse
	RandomHue
)

func (e Effect) String() string {
	switch e {
	case Pulse:
		return "pulse"
	case RandomHue:
		return "random hue"
	}
	return "gradient"
}

// EffectFor picks the effect of a body part from its name
func EffectFor(part string) Effect {
	switch {
	case strings.Contains(part, "head"):
		return Pulse
	case strings.Contains(part, "hand"):
		return RandomHue
	}
	return Gradient
}

// Options control a Generator. Zero values select the defaults.
type Options struct {
	// Duration is the track length the pattern fills
	Duration timeline.Milliseconds
	Frame    timeline.Milliseconds
	// Block is the effect length of parts other than the body.
	// Zero picks one at random between MinBlock and MaxBlock.
	Block timeline.Milliseconds
	// Rand drives every random choice; nil seeds from the runtime
	Rand *rand.Rand
}

// Generator fills costumes with effects
type Generator struct {
	duration timeline.Milliseconds
	frame    timeline.Milliseconds
	block    timeline.Milliseconds
	rand     *rand.Rand
}

// New creates a generator. The effect block length is fixed for its lifetime.
func New(opts Options) *Generator {
	g := &Generator{
		duration: opts.Duration,
		frame:    opts.Frame,
		block:    opts.Block,
		rand:     opts.Rand,
	}
	if g.rand == nil {
		g.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if g.frame <= 0 {
		g.frame = DefaultFrame
	}
	if g.block <= 0 {
		g.block = MinBlock + timeline.Milliseconds(g.rand.Int64N(int64(MaxBlock-MinBlock)+1))
	}
	if g.block < g.frame {
		g.block = g.frame
	}
	return g
}

// Pattern builds one group per body part. Group ids follow the part order.
func (g *Generator) Pattern(c document.Costume) *timeline.Pattern {
	p := timeline.NewPattern()
	for i, part := range c {
		p.AddSequence(g.Sequence(timeline.GroupID(strconv.Itoa(i)), part))
	}
	debug.Log("generate", "%d groups over %s, block %s", len(c), g.duration, g.block)
	return p
}

// Sequence fills one body part. Intervals never extend past the duration.
func (g *Generator) Sequence(id timeline.GroupID, part document.BodyPart) *timeline.Sequence {
	seq := timeline.NewSequence(id, part.Leds())
	effect := EffectFor(part.Name)
	block := g.block
	if strings.Contains(part.Name, "body") {
		block = BodyBlock
		if block < g.frame {
			block = g.frame
		}
	}
	steps := int(block / g.frame)

	for start := timeline.Milliseconds(0); start < g.duration; start += block {
		from := g.pick(StartColors)
		var ivs []timeline.Interval
		switch effect {
		case Pulse:
			ivs = PulseIntervals(from, steps, start, g.frame)
		case RandomHue:
			ivs = RandomHueIntervals(g.rand, steps, start, g.frame)
		default:
			ivs = GradientIntervals(from, g.pick(EndColors), steps, start, g.frame)
		}
		for _, iv := range ivs {
			if iv.Start >= g.duration {
				break
			}
			if iv.End > g.duration {
				iv.End = g.duration
			}
			seq.AddInterval(iv)
		}
	}
	return seq
}

func (g *Generator) pick(colors []timeline.Color) timeline.Color {
	return colors[g.rand.IntN(len(colors))]
}

// GradientIntervals fades from one color to another over steps consecutive
// intervals, interpolating hue, saturation and lightness. The first and last
// intervals carry the endpoint colors.
func GradientIntervals(from, to timeline.Color, steps int, start, frame timeline.Milliseconds) []timeline.Interval {
	h1, s1, l1 := toColorful(from).Hsl()
	h2, s2, l2 := toColorful(to).Hsl()
	ivs := make([]timeline.Interval, 0, steps)
	for i := 0; i < steps; i++ {
		t := 0.0
		if steps > 1 {
			t = float64(i) / float64(steps-1)
		}
		c := colorful.Hsl(h1+t*(h2-h1), s1+t*(s2-s1), l1+t*(l2-l1))
		ivs = append(ivs, frameInterval(i, start, frame, fromColorful(c)))
	}
	return ivs
}

// PulseIntervals lights color on the last two of every four frames
func PulseIntervals(color timeline.Color, steps int, start, frame timeline.Milliseconds) []timeline.Interval {
	var ivs []timeline.Interval
	for i := 0; i < steps; i++ {
		if i%4 > 1 {
			ivs = append(ivs, frameInterval(i, start, frame, color))
		}
	}
	return ivs
}

// RandomHueIntervals gives every frame a fully saturated color of random hue
func RandomHueIntervals(r *rand.Rand, steps int, start, frame timeline.Milliseconds) []timeline.Interval {
	ivs := make([]timeline.Interval, 0, steps)
	for i := 0; i < steps; i++ {
		c := colorful.Hsl(r.Float64()*360, 1, 0.5)
		ivs = append(ivs, frameInterval(i, start, frame, fromColorful(c)))
	}
	return ivs
}

func frameInterval(i int, start, frame timeline.Milliseconds, color timeline.Color) timeline.Interval {
	at := start + timeline.Milliseconds(i)*frame
	return timeline.NewInterval(at, at+frame, color)
}

func toColorful(c timeline.Color) colorful.Color {
	r, g, b := c.RGB()
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

func fromColorful(c colorful.Color) timeline.Color {
	return timeline.Color(strings.ToUpper(c.Clamped().Hex()))
}
