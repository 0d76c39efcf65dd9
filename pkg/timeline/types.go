// Package timeline provides the colored interval, LED group and pattern model
package timeline

import (
	"fmt"
	"strconv"
	"strings"
)

// Milliseconds is a position or length on a pattern timeline
type Milliseconds int64

// Seconds returns the value as fractional seconds
func (m Milliseconds) Seconds() float64 {
	return float64(m) / 1000
}

// String formats the value as mm:ss.mmm
func (m Milliseconds) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%02d:%02d.%03d", sign, v/60000, (v/1000)%60, v%1000)
}

// Color is a #RRGGBB hex color
type Color string

// Well-known colors
const (
	White Color = "#FFFFFF"
	Off   Color = "#000000"
)

// ParseColor validates and normalizes a hex color. An empty string yields White.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return White, nil
	}
	if len(s) != 7 || s[0] != '#' {
		return "", fmt.Errorf("invalid color %q: expected #RRGGBB", s)
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return "", fmt.Errorf("invalid color %q: bad hex digit %q", s, c)
		}
	}
	return Color(strings.ToUpper(s)), nil
}

// RGB returns the color components. Invalid colors decode as black.
func (c Color) RGB() (r, g, b uint8) {
	if len(c) != 7 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(string(c[1:]), 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}

// Darken halves every component, used for interval borders
func (c Color) Darken() Color {
	if c == "" {
		return White
	}
	r, g, b := c.RGB()
	return Color(fmt.Sprintf("#%02X%02X%02X", r/2, g/2, b/2))
}

// LedID identifies one physical LED as "{part}_{index}"
type LedID string

// MakeLedID builds the id of the index-th LED of a body part
func MakeLedID(part string, index int) LedID {
	return LedID(part + "_" + strconv.Itoa(index))
}

// Split returns the body part name and index encoded in the id.
// ok is false when the id does not end in "_<index>".
func (id LedID) Split() (part string, index int, ok bool) {
	s := string(id)
	i := strings.LastIndexByte(s, '_')
	if i <= 0 || i == len(s)-1 {
		return "", 0, false
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return s[:i], n, true
}

// GroupID identifies a LED group (sequence)
type GroupID string

// Placeholder is the group shown for selected LEDs that belong to no group
const Placeholder GroupID = "?"
