package converter

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/james-see/ledcostume/pkg/timeline"
)

// event kinds, in the order they are written when they share a tick
const (
	kindOff = iota
	kindMarker
	kindOn
	kindZeroOff
)

type trackEvent struct {
	tick  uint32
	kind  int
	index int
	msg   []byte
}

func (c *Converter) ticks(ms timeline.Milliseconds) uint32 {
	if ms < 0 {
		ms = 0
	}
	return smf.MetricTicks(c.ticksPerQuarter).Ticks(c.tempo, time.Duration(ms)*time.Millisecond)
}

// velocity maps a color's brightest channel to 1..127
func velocity(color timeline.Color) uint8 {
	r, g, b := color.RGB()
	v := max(r, g, b) / 2
	if v == 0 {
		v = 1
	}
	return v
}

// ExportMIDI writes p as a Standard MIDI File. Track 0 holds tempo and meter;
// every group gets a track named after its id with a "leds:" text event. Each
// interval becomes a note preceded by an "index:color" marker. total pads
// the file to the full timeline length when it exceeds the last interval.
func (c *Converter) ExportMIDI(p *timeline.Pattern, total timeline.Milliseconds) ([]byte, error) {
	if p == nil {
		return nil, errors.New("nil pattern")
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(c.ticksPerQuarter)

	var track0 smf.Track
	track0.Add(0, smf.MetaMeter(4, 4))
	track0.Add(0, smf.MetaTempo(c.tempo))
	track0.Close(0)
	if err := s.Add(track0); err != nil {
		return nil, fmt.Errorf("failed to add tempo track: %w", err)
	}

	if d := p.Duration(); d > total {
		total = d
	}
	end := c.ticks(total)

	for _, seq := range p.Seqs {
		events := make([]trackEvent, 0, len(seq.Intervals)*3)
		for i, iv := range seq.Intervals {
			note := uint8(i % notesPerSpan)
			on, off := c.ticks(iv.Start), c.ticks(iv.End)
			offKind := kindOff
			if on == off {
				offKind = kindZeroOff
			}
			events = append(events,
				trackEvent{tick: on, kind: kindMarker, index: i, msg: smf.MetaMarker(fmt.Sprintf("%d:%s", i, iv.Color))},
				trackEvent{tick: on, kind: kindOn, index: i, msg: midi.NoteOn(noteChannel, note, velocity(iv.Color))},
				trackEvent{tick: off, kind: offKind, index: i, msg: midi.NoteOff(noteChannel, note)},
			)
		}
		sort.SliceStable(events, func(a, b int) bool {
			if events[a].tick != events[b].tick {
				return events[a].tick < events[b].tick
			}
			if events[a].kind != events[b].kind {
				return events[a].kind < events[b].kind
			}
			return events[a].index < events[b].index
		})

		leds := make([]string, len(seq.Leds))
		for i, l := range seq.Leds {
			leds[i] = string(l)
		}

		var track smf.Track
		track.Add(0, smf.MetaTrackSequenceName(string(seq.ID)))
		track.Add(0, smf.MetaText(ledsPrefix+strings.Join(leds, ",")))
		var current uint32
		for _, ev := range events {
			track.Add(ev.tick-current, ev.msg)
			current = ev.tick
		}
		var pad uint32
		if end > current {
			pad = end - current
		}
		track.Close(pad)

		if err := s.Add(track); err != nil {
			return nil, fmt.Errorf("failed to add track for group %s: %w", seq.ID, err)
		}
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

// ImportMIDI reads a file written by ExportMIDI back into a pattern. Tracks
// without a name are given one from their position; tracks without notes or
// LEDs are skipped. Notes without a preceding marker are white and keep file order.
func (c *Converter) ImportMIDI(data []byte) (*timeline.Pattern, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, errors.New("unsupported MIDI time format: SMPTE")
	}
	bpm := DefaultTempo
	if changes := s.TempoChanges(); len(changes) > 0 && changes[0].BPM > 0 {
		bpm = changes[0].BPM
	}
	toMs := func(tick uint32) timeline.Milliseconds {
		return timeline.Milliseconds(mt.Duration(bpm, tick).Round(time.Millisecond).Milliseconds())
	}

	type open struct {
		order int
		start timeline.Milliseconds
		color timeline.Color
	}
	type placed struct {
		order int
		iv    timeline.Interval
	}

	p := timeline.NewPattern()
	for ti, track := range s.Tracks {
		var (
			name    string
			leds    []timeline.LedID
			pending = timeline.White
			order   = -1
			opened  = map[uint8][]open{}
			tick    uint32
			done    []placed
			notes   int
		)
		for _, ev := range track {
			tick += ev.Delta
			msg := ev.Message

			var text string
			var ch, key, vel uint8
			switch {
			case msg.GetMetaTrackName(&text):
				name = text
			case msg.GetMetaText(&text) && strings.HasPrefix(text, ledsPrefix):
				for _, l := range strings.Split(strings.TrimPrefix(text, ledsPrefix), ",") {
					if l != "" {
						leds = append(leds, timeline.LedID(l))
					}
				}
			case msg.GetMetaMarker(&text):
				order, pending = parseMarker(text)
			case midi.Message(msg).GetNoteStart(&ch, &key, &vel):
				if order < 0 {
					order = 1<<30 + notes
				}
				opened[key] = append(opened[key], open{order: order, start: toMs(tick), color: pending})
				notes++
				order, pending = -1, timeline.White
			case midi.Message(msg).GetNoteEnd(&ch, &key):
				stack := opened[key]
				if len(stack) == 0 {
					continue
				}
				o := stack[0]
				opened[key] = stack[1:]
				done = append(done, placed{order: o.order, iv: timeline.Interval{Start: o.start, End: toMs(tick), Color: o.color}})
			}
		}

		if len(done) == 0 && len(leds) == 0 {
			continue
		}
		if name == "" {
			name = fmt.Sprintf("track-%d", ti)
		}
		sort.SliceStable(done, func(a, b int) bool { return done[a].order < done[b].order })
		seq := timeline.NewSequence(timeline.GroupID(name), leds)
		for _, d := range done {
			seq.AddInterval(d.iv)
		}
		p.AddSequence(seq)
	}
	return p, nil
}

// parseMarker reads an "index:color" marker. A bare color or an unparsable
// index yields order -1.
func parseMarker(text string) (int, timeline.Color) {
	order := -1
	if i := strings.IndexByte(text, ':'); i >= 0 {
		if n, err := strconv.Atoi(text[:i]); err == nil && n >= 0 {
			order = n
		}
		text = text[i+1:]
	}
	color, err := timeline.ParseColor(text)
	if err != nil {
		color = timeline.White
	}
	return order, color
}
