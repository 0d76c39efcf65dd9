package document

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/james-see/ledcostume/pkg/timeline"
)

// Point is a LED position
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Frame is the bounding box of a body part on the editor canvas
type Frame struct {
	Left, Top     float64
	Width, Height float64
}

// Origin returns the top-left corner that stored positions are relative to
func (f Frame) Origin() Point {
	return Point{X: f.Left, Y: f.Top}
}

// BodyPart is one addressable strip of a costume
type BodyPart struct {
	Name       string `json:"name"`
	PortNumber int    `json:"port_number"`
	LedsCount  int    `json:"leds_count"`
	// LedsPositions are relative to the part's bounding box origin
	LedsPositions []Point `json:"leds_positions"`
}

// Leds returns the identifiers of the part's LEDs in index order
func (b BodyPart) Leds() []timeline.LedID {
	ids := make([]timeline.LedID, b.LedsCount)
	for i := range ids {
		ids[i] = timeline.MakeLedID(b.Name, i)
	}
	return ids
}

// Absolute converts the stored positions to canvas coordinates
func (b BodyPart) Absolute(origin Point) []Point {
	out := make([]Point, len(b.LedsPositions))
	for i, p := range b.LedsPositions {
		out[i] = Point{X: p.X + origin.X, Y: p.Y + origin.Y}
	}
	return out
}

// Relative converts canvas coordinates back to positions relative to origin
func Relative(abs []Point, origin Point) []Point {
	out := make([]Point, len(abs))
	for i, p := range abs {
		out[i] = Point{X: p.X - origin.X, Y: p.Y - origin.Y}
	}
	return out
}

// Costume is an ordered list of body parts
type Costume []BodyPart

// Part returns the body part with the given name, or nil
func (c Costume) Part(name string) *BodyPart {
	for i := range c {
		if c[i].Name == name {
			return &c[i]
		}
	}
	return nil
}

// Leds returns every LED of the costume, part by part
func (c Costume) Leds() []timeline.LedID {
	var ids []timeline.LedID
	for _, b := range c {
		ids = append(ids, b.Leds()...)
	}
	return ids
}

// Redeclare sets the LED count of a part and spreads fresh positions along the
// diagonal of its frame. It reports false when the part does not exist.
// Callers holding patterns for this costume should prune them with Pattern.PruneLeds.
func (c Costume) Redeclare(name string, count int, frame Frame) bool {
	part := c.Part(name)
	if part == nil {
		return false
	}
	if count < 0 {
		count = 0
	}
	stepX := frame.Width / float64(count+1)
	stepY := frame.Height / float64(count+1)
	positions := make([]Point, count)
	for i := range positions {
		positions[i] = Point{X: stepX * float64(i+1), Y: stepY * float64(i+1)}
	}
	part.LedsCount = count
	part.LedsPositions = positions
	return true
}

type bodyPartJSON struct {
	Name          *string         `json:"name"`
	PortNumber    json.RawMessage `json:"port_number"`
	LedsCount     *int            `json:"leds_count"`
	LedsPositions *[]Point        `json:"leds_positions"`
}

// DecodeCostume parses a costume document
func DecodeCostume(data []byte) (Costume, error) {
	var raw []bodyPartJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, malformed("costume", "invalid JSON", err)
	}

	costume := make(Costume, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, r := range raw {
		if r.Name == nil || *r.Name == "" {
			return nil, malformed("costume", fmt.Sprintf("parts[%d]: missing name", i), nil)
		}
		if seen[*r.Name] {
			return nil, malformed("costume", fmt.Sprintf("parts[%d]: duplicate name %q", i, *r.Name), nil)
		}
		seen[*r.Name] = true

		port, err := decodePort(r.PortNumber)
		if err != nil {
			return nil, malformed("costume", fmt.Sprintf("parts[%d]: port_number", i), err)
		}

		part := BodyPart{Name: *r.Name, PortNumber: port}
		if r.LedsPositions != nil {
			part.LedsPositions = *r.LedsPositions
		}
		switch {
		case r.LedsCount != nil:
			part.LedsCount = *r.LedsCount
		default:
			part.LedsCount = len(part.LedsPositions)
		}
		if part.LedsCount != len(part.LedsPositions) {
			return nil, malformed("costume", fmt.Sprintf("parts[%d]: leds_count %d does not match %d positions", i, part.LedsCount, len(part.LedsPositions)), nil)
		}
		costume = append(costume, part)
	}
	return costume, nil
}

// decodePort accepts a number, a numeric string, an empty string or null
func decodePort(raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	var m millis
	if err := m.UnmarshalJSON(raw); err != nil {
		return 0, err
	}
	if float64(m.value) > math.MaxInt32 || m.value < 0 {
		return 0, fmt.Errorf("port %d out of range", m.value)
	}
	return int(m.value), nil
}

// EncodeCostume renders a costume document
func EncodeCostume(c Costume) ([]byte, error) {
	parts := make([]BodyPart, len(c))
	for i, b := range c {
		if b.LedsPositions == nil {
			b.LedsPositions = []Point{}
		}
		parts[i] = b
	}
	return json.MarshalIndent(parts, "", "  ")
}
