// Package editor applies timeline edits and clicks to a pattern while keeping
// the playback cursor consistent
package editor

import (
	"github.com/james-see/ledcostume/pkg/playback"
	"github.com/james-see/ledcostume/pkg/timeline"
)

// DefaultIntervalLength is the length of an interval added by clicking
const DefaultIntervalLength timeline.Milliseconds = 1000

// ClickEvent is a click on the timeline
type ClickEvent struct {
	Time  timeline.Milliseconds
	Group timeline.GroupID // row under the pointer, empty on the ruler
	// OnItem is set when the click landed on an existing interval
	OnItem bool
	// Add is set when the add modifier (meta/cmd) was held
	Add bool
}

// ClickAction says what a click did
type ClickAction int

const (
	Ignored ClickAction = iota
	Seeked
	IntervalAdded
	GroupCreated
)

// ClickResult describes the effect of a click
type ClickResult struct {
	Action   ClickAction
	Group    timeline.GroupID
	Interval timeline.Interval
}

// Editor edits one pattern against a playback session. It is owned by one goroutine.
type Editor struct {
	Pattern *timeline.Pattern
	Session *playback.Session
	// Selection is the set of LEDs picked on the costume canvas
	Selection []timeline.LedID
	// AllGroups shows every group regardless of the selection
	AllGroups bool
	View      *Viewport
}

// New creates an editor for p driven by s
func New(p *timeline.Pattern, s *playback.Session) *Editor {
	return &Editor{
		Pattern: p,
		Session: s,
		View:    NewViewport(p.Duration()),
	}
}

// Click applies a timeline click. With the add modifier on a group row it adds
// a white interval at the click time; on the placeholder row it creates a new
// group owning the selection. A plain click away from any item seeks.
func (e *Editor) Click(ev ClickEvent) (ClickResult, error) {
	if ev.Add && ev.Group != "" {
		iv := timeline.NewInterval(ev.Time, ev.Time+DefaultIntervalLength, timeline.White)
		if ev.Group == timeline.Placeholder {
			if len(e.Selection) == 0 {
				return ClickResult{}, nil
			}
			seq := e.Pattern.AssignGroup(timeline.NewGroupID(), e.Selection)
			iv = seq.AddInterval(iv)
			return ClickResult{Action: GroupCreated, Group: seq.ID, Interval: iv}, nil
		}
		added, ok := e.Pattern.AddInterval(ev.Group, iv)
		if !ok {
			return ClickResult{}, nil
		}
		return ClickResult{Action: IntervalAdded, Group: ev.Group, Interval: added}, nil
	}

	if ev.OnItem || ev.Add {
		return ClickResult{}, nil
	}
	if err := e.Session.Seek(ev.Time); err != nil {
		return ClickResult{}, err
	}
	return ClickResult{Action: Seeked}, nil
}

// Select picks an interval and makes its group's LEDs the selection.
// It reports false when the interval does not exist.
func (e *Editor) Select(id string) (timeline.Interval, bool) {
	seq, iv, ok := e.Pattern.FindInterval(id)
	if !ok {
		return timeline.Interval{}, false
	}
	e.Selection = append([]timeline.LedID(nil), seq.Leds...)
	return iv, true
}

// Move shifts an interval so it starts at start, keeping its length
func (e *Editor) Move(id string, start timeline.Milliseconds) bool {
	_, iv, ok := e.Pattern.FindInterval(id)
	if !ok {
		return false
	}
	return e.Pattern.ReplaceInterval(iv.Shift(start - iv.Start))
}

// Resize sets both boundaries of an interval. start after end is rejected.
func (e *Editor) Resize(id string, start, end timeline.Milliseconds) bool {
	_, iv, ok := e.Pattern.FindInterval(id)
	if !ok || start > end {
		return false
	}
	iv.Start, iv.End = start, end
	return e.Pattern.ReplaceInterval(iv)
}

// Recolor changes the color of an interval
func (e *Editor) Recolor(id string, color timeline.Color) bool {
	_, iv, ok := e.Pattern.FindInterval(id)
	if !ok {
		return false
	}
	iv.Color = color
	return e.Pattern.ReplaceInterval(iv)
}

// Remove deletes an interval. A missing id is a no-op.
func (e *Editor) Remove(id string) bool {
	return e.Pattern.RemoveInterval(id)
}

// AssignSelection moves the selected LEDs into group, removing them from any other group
func (e *Editor) AssignSelection(group timeline.GroupID) {
	if len(e.Selection) == 0 {
		return
	}
	e.Pattern.AssignGroup(group, e.Selection)
}

// VisibleGroups returns the groups shown for the current selection
func (e *Editor) VisibleGroups() []timeline.GroupID {
	return VisibleGroups(e.Pattern, e.Selection, e.AllGroups)
}

// VisibleGroups lists, in pattern order, the groups whose LEDs intersect
// selection (every group when all is set), followed by the placeholder group
// when some selected LEDs belong to no listed group.
func VisibleGroups(p *timeline.Pattern, selection []timeline.LedID, all bool) []timeline.GroupID {
	selected := make(map[timeline.LedID]bool, len(selection))
	for _, l := range selection {
		selected[l] = true
	}
	unassigned := make(map[timeline.LedID]bool, len(selection))
	for _, l := range selection {
		unassigned[l] = true
	}

	var out []timeline.GroupID
	for _, seq := range p.Seqs {
		intersects := false
		for _, l := range seq.Leds {
			if selected[l] {
				intersects = true
				break
			}
		}
		if !intersects && !all {
			continue
		}
		for _, l := range seq.Leds {
			delete(unassigned, l)
		}
		out = append(out, seq.ID)
	}
	if len(unassigned) > 0 {
		out = append(out, timeline.Placeholder)
	}
	return out
}
