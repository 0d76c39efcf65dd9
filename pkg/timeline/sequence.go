package timeline

import "github.com/google/uuid"

// Sequence is a LED group together with its colored intervals
type Sequence struct {
	ID        GroupID
	Leds      []LedID    // insertion ordered, no duplicates
	Intervals []Interval // insertion ordered, overlaps allowed
}

// NewSequence creates a group controlling the given LEDs
func NewSequence(id GroupID, leds []LedID) *Sequence {
	s := &Sequence{ID: id}
	s.ReassignLeds(leds)
	return s
}

// NewGroupID returns a fresh group identifier
func NewGroupID() GroupID {
	return GroupID(uuid.NewString())
}

// AddInterval appends an interval. No overlap check is made.
func (s *Sequence) AddInterval(iv Interval) Interval {
	if iv.ID == "" {
		iv.ID = uuid.NewString()
	}
	if iv.Color == "" {
		iv.Color = White
	}
	s.Intervals = append(s.Intervals, iv)
	return iv
}

// RemoveInterval removes the interval with the given identity.
// It reports whether anything was removed; a missing id is a no-op.
func (s *Sequence) RemoveInterval(id string) bool {
	for i := range s.Intervals {
		if s.Intervals[i].ID == id {
			s.Intervals = append(s.Intervals[:i], s.Intervals[i+1:]...)
			return true
		}
	}
	return false
}

// Interval looks up an interval by identity
func (s *Sequence) Interval(id string) (Interval, bool) {
	for _, iv := range s.Intervals {
		if iv.ID == id {
			return iv, true
		}
	}
	return Interval{}, false
}

// ReplaceInterval overwrites the interval sharing iv's identity, keeping its position in the list
func (s *Sequence) ReplaceInterval(iv Interval) bool {
	for i := range s.Intervals {
		if s.Intervals[i].ID == iv.ID {
			s.Intervals[i] = iv
			return true
		}
	}
	return false
}

// ReassignLeds replaces the LED set wholesale. Duplicates are dropped.
// Other groups are not touched; see Pattern.AssignGroup for the exclusive variant.
func (s *Sequence) ReassignLeds(leds []LedID) {
	seen := make(map[LedID]struct{}, len(leds))
	out := make([]LedID, 0, len(leds))
	for _, l := range leds {
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	s.Leds = out
}

// HasLed reports whether the group controls led
func (s *Sequence) HasLed(led LedID) bool {
	for _, l := range s.Leds {
		if l == led {
			return true
		}
	}
	return false
}

// removeLeds drops every LED in drop and reports whether the set changed
func (s *Sequence) removeLeds(drop map[LedID]struct{}) bool {
	kept := s.Leds[:0]
	changed := false
	for _, l := range s.Leds {
		if _, ok := drop[l]; ok {
			changed = true
			continue
		}
		kept = append(kept, l)
	}
	s.Leds = kept
	return changed
}

// Shifted returns a deep copy with every interval moved by delta
func (s *Sequence) Shifted(delta Milliseconds) *Sequence {
	out := &Sequence{
		ID:        s.ID,
		Leds:      append([]LedID(nil), s.Leds...),
		Intervals: make([]Interval, len(s.Intervals)),
	}
	for i, iv := range s.Intervals {
		out.Intervals[i] = iv.Shift(delta)
	}
	return out
}

// Clone returns a deep copy
func (s *Sequence) Clone() *Sequence {
	return s.Shifted(0)
}

// End returns the largest interval end, or 0 for an empty group
func (s *Sequence) End() Milliseconds {
	var end Milliseconds
	for _, iv := range s.Intervals {
		if iv.End > end {
			end = iv.End
		}
	}
	return end
}
