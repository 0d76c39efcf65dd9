// Package resolve computes the color each LED displays at an instant
package resolve

import (
	"github.com/james-see/ledcostume/pkg/timeline"
)

// Color scans the pattern for the color of led at t.
// Groups are visited in list order and intervals in list order; the last
// interval containing t wins. LEDs with no matching interval are Off.
func Color(p *timeline.Pattern, led timeline.LedID, t timeline.Milliseconds) timeline.Color {
	result := timeline.Off
	if p == nil {
		return result
	}
	for _, s := range p.Seqs {
		if !s.HasLed(led) {
			continue
		}
		result = scan(s, t, result)
	}
	return result
}

func scan(s *timeline.Sequence, t timeline.Milliseconds, current timeline.Color) timeline.Color {
	for _, iv := range s.Intervals {
		if iv.Contains(t) {
			current = iv.Color
		}
	}
	return current
}

// Index maps every LED to the groups containing it, in list order.
// It depends only on group membership, so interval edits do not invalidate it.
type Index struct {
	pattern  *timeline.Pattern
	revision uint64
	groups   map[timeline.LedID][]*timeline.Sequence
}

// NewIndex builds the membership index for p
func NewIndex(p *timeline.Pattern) *Index {
	idx := &Index{
		pattern: p,
		groups:  make(map[timeline.LedID][]*timeline.Sequence),
	}
	if p == nil {
		return idx
	}
	idx.revision = p.Revision()
	for _, s := range p.Seqs {
		seen := make(map[timeline.LedID]struct{}, len(s.Leds))
		for _, l := range s.Leds {
			if _, dup := seen[l]; dup {
				continue
			}
			seen[l] = struct{}{}
			idx.groups[l] = append(idx.groups[l], s)
		}
	}
	return idx
}

// Stale reports whether the index no longer describes p
func (idx *Index) Stale(p *timeline.Pattern) bool {
	if idx.pattern != p {
		return true
	}
	return p != nil && p.Revision() != idx.revision
}

// Color resolves a single LED using the index
func (idx *Index) Color(led timeline.LedID, t timeline.Milliseconds) timeline.Color {
	result := timeline.Off
	for _, s := range idx.groups[led] {
		result = scan(s, t, result)
	}
	return result
}

// Resolver keeps an index current for the pattern it is asked about
type Resolver struct {
	idx *Index
}

// NewResolver creates a resolver with no index yet
func NewResolver() *Resolver {
	return &Resolver{}
}

// Index returns the index for p, rebuilding it when p changed structurally
func (r *Resolver) Index(p *timeline.Pattern) *Index {
	if r.idx == nil || r.idx.Stale(p) {
		r.idx = NewIndex(p)
	}
	return r.idx
}

// Color resolves one LED of p at t
func (r *Resolver) Color(p *timeline.Pattern, led timeline.LedID, t timeline.Milliseconds) timeline.Color {
	return r.Index(p).Color(led, t)
}

// All resolves every LED in leds at t. Used once per preview frame.
func (r *Resolver) All(p *timeline.Pattern, leds []timeline.LedID, t timeline.Milliseconds) map[timeline.LedID]timeline.Color {
	idx := r.Index(p)
	out := make(map[timeline.LedID]timeline.Color, len(leds))
	for _, l := range leds {
		out[l] = idx.Color(l, t)
	}
	return out
}

// All resolves leds against p without keeping an index
func All(p *timeline.Pattern, leds []timeline.LedID, t timeline.Milliseconds) map[timeline.LedID]timeline.Color {
	return NewResolver().All(p, leds, t)
}
