package timeline

// Pattern is the ordered set of LED groups for one audio track.
//
// Structural edits made through Pattern methods bump the revision, which
// consumers such as the resolution index use to detect staleness. Code that
// mutates Seqs or a Sequence's Leds directly must call Touch afterwards.
type Pattern struct {
	Seqs []*Sequence

	rev uint64
}

// NewPattern creates an empty pattern
func NewPattern() *Pattern {
	return &Pattern{}
}

// Revision returns the structural edit counter
func (p *Pattern) Revision() uint64 {
	return p.rev
}

// Touch marks the pattern as structurally changed
func (p *Pattern) Touch() {
	p.rev++
}

// Sequence returns the first group with the given id, or nil
func (p *Pattern) Sequence(id GroupID) *Sequence {
	for _, s := range p.Seqs {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// AddSequence appends a group
func (p *Pattern) AddSequence(s *Sequence) *Sequence {
	p.Seqs = append(p.Seqs, s)
	p.Touch()
	return s
}

// RemoveSequence drops every group with the given id. Missing ids are a no-op.
func (p *Pattern) RemoveSequence(id GroupID) bool {
	kept := p.Seqs[:0]
	removed := false
	for _, s := range p.Seqs {
		if s.ID == id {
			removed = true
			continue
		}
		kept = append(kept, s)
	}
	p.Seqs = kept
	if removed {
		p.Touch()
	}
	return removed
}

// AddInterval appends an interval to a group. It reports false if the group does not exist.
func (p *Pattern) AddInterval(group GroupID, iv Interval) (Interval, bool) {
	s := p.Sequence(group)
	if s == nil {
		return Interval{}, false
	}
	return s.AddInterval(iv), true
}

// RemoveInterval removes an interval by identity from whichever group holds it
func (p *Pattern) RemoveInterval(id string) bool {
	for _, s := range p.Seqs {
		if s.RemoveInterval(id) {
			return true
		}
	}
	return false
}

// FindInterval locates an interval by identity
func (p *Pattern) FindInterval(id string) (*Sequence, Interval, bool) {
	for _, s := range p.Seqs {
		if iv, ok := s.Interval(id); ok {
			return s, iv, true
		}
	}
	return nil, Interval{}, false
}

// ReplaceInterval overwrites an interval by identity
func (p *Pattern) ReplaceInterval(iv Interval) bool {
	for _, s := range p.Seqs {
		if s.ReplaceInterval(iv) {
			return true
		}
	}
	return false
}

// ReassignLeds replaces a group's LED set without touching other groups
func (p *Pattern) ReassignLeds(group GroupID, leds []LedID) bool {
	s := p.Sequence(group)
	if s == nil {
		return false
	}
	s.ReassignLeds(leds)
	p.Touch()
	return true
}

// AssignGroup gives leds to the group, removing them from every other group first.
// The group is created when missing.
func (p *Pattern) AssignGroup(group GroupID, leds []LedID) *Sequence {
	drop := make(map[LedID]struct{}, len(leds))
	for _, l := range leds {
		drop[l] = struct{}{}
	}
	target := p.Sequence(group)
	for _, s := range p.Seqs {
		if s != target {
			s.removeLeds(drop)
		}
	}
	if target == nil {
		target = NewSequence(group, leds)
		p.Seqs = append(p.Seqs, target)
	} else {
		target.ReassignLeds(append(append([]LedID(nil), target.Leds...), leds...))
	}
	p.Touch()
	return target
}

// GroupsOf returns the ids of every group containing led, in list order
func (p *Pattern) GroupsOf(led LedID) []GroupID {
	var ids []GroupID
	for _, s := range p.Seqs {
		if s.HasLed(led) {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// Leds returns every LED referenced by any group, in first-seen order
func (p *Pattern) Leds() []LedID {
	seen := make(map[LedID]struct{})
	var out []LedID
	for _, s := range p.Seqs {
		for _, l := range s.Leds {
			if _, ok := seen[l]; ok {
				continue
			}
			seen[l] = struct{}{}
			out = append(out, l)
		}
	}
	return out
}

// Duration returns the largest interval end across all groups
func (p *Pattern) Duration() Milliseconds {
	var end Milliseconds
	for _, s := range p.Seqs {
		if e := s.End(); e > end {
			end = e
		}
	}
	return end
}

// PruneLeds clears memberships of part's LEDs whose index is >= count.
// It is applied after a body part's LED count is re-declared and returns the removed ids.
func (p *Pattern) PruneLeds(part string, count int) []LedID {
	var removed []LedID
	seen := make(map[LedID]struct{})
	for _, s := range p.Seqs {
		drop := make(map[LedID]struct{})
		for _, l := range s.Leds {
			name, idx, ok := l.Split()
			if ok && name == part && idx >= count {
				drop[l] = struct{}{}
				if _, dup := seen[l]; !dup {
					seen[l] = struct{}{}
					removed = append(removed, l)
				}
			}
		}
		if len(drop) > 0 {
			s.removeLeds(drop)
		}
	}
	if len(removed) > 0 {
		p.Touch()
	}
	return removed
}

// Clone returns a deep copy with a fresh revision counter
func (p *Pattern) Clone() *Pattern {
	out := &Pattern{Seqs: make([]*Sequence, len(p.Seqs))}
	for i, s := range p.Seqs {
		out.Seqs[i] = s.Clone()
	}
	return out
}
