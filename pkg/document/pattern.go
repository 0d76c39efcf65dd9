package document

import (
	"encoding/json"
	"fmt"

	"github.com/james-see/ledcostume/pkg/timeline"
)

// PatternDocument is a pattern file: the timeline plus the audio track it was authored against
type PatternDocument struct {
	Music   Music
	Pattern *timeline.Pattern
	// CurrentTime is the editor cursor stored with the file, if any
	CurrentTime *timeline.Milliseconds
}

// Music names the audio track of a pattern, absolute or relative to the music/ directory
type Music struct {
	Filename string `json:"filename"`
}

type patternFile struct {
	Music   *Music       `json:"music"`
	Pattern *patternBody `json:"pattern"`
}

type patternBody struct {
	Seqs        *[]seqJSON `json:"seqs"`
	CurrentTime *millis    `json:"currentTime,omitempty"`
}

type seqJSON struct {
	ID       groupID        `json:"id"`
	Leds     *[]string      `json:"leds"`
	Sequence []intervalJSON `json:"sequence"`
}

type intervalJSON struct {
	Start millis `json:"start"`
	End   millis `json:"end"`
	Color string `json:"color,omitempty"`
}

// DecodePattern parses a pattern document. Nothing is returned unless the whole
// document is valid.
func DecodePattern(data []byte) (*PatternDocument, error) {
	var f patternFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, malformed("pattern", "invalid JSON", err)
	}
	if f.Pattern == nil {
		return nil, malformed("pattern", "missing pattern", nil)
	}
	if f.Pattern.Seqs == nil {
		return nil, malformed("pattern", "missing pattern.seqs", nil)
	}

	doc := &PatternDocument{Pattern: timeline.NewPattern()}
	if f.Music != nil {
		doc.Music = *f.Music
	}
	if ct := f.Pattern.CurrentTime; ct != nil && ct.set {
		v := ct.value
		doc.CurrentTime = &v
	}

	for i, s := range *f.Pattern.Seqs {
		if !s.ID.set {
			return nil, malformed("pattern", fmt.Sprintf("seqs[%d]: missing id", i), nil)
		}
		if s.Leds == nil {
			return nil, malformed("pattern", fmt.Sprintf("seqs[%d]: missing leds", i), nil)
		}
		leds := make([]timeline.LedID, 0, len(*s.Leds))
		for _, l := range *s.Leds {
			leds = append(leds, timeline.LedID(l))
		}
		seq := timeline.NewSequence(timeline.GroupID(s.ID.value), leds)

		for j, iv := range s.Sequence {
			if !iv.Start.set || !iv.End.set {
				return nil, malformed("pattern", fmt.Sprintf("seqs[%d].sequence[%d]: missing start or end", i, j), nil)
			}
			if iv.Start.value > iv.End.value {
				return nil, malformed("pattern", fmt.Sprintf("seqs[%d].sequence[%d]: start %d after end %d", i, j, iv.Start.value, iv.End.value), nil)
			}
			color, err := timeline.ParseColor(iv.Color)
			if err != nil {
				return nil, malformed("pattern", fmt.Sprintf("seqs[%d].sequence[%d]", i, j), err)
			}
			seq.AddInterval(timeline.Interval{Start: iv.Start.value, End: iv.End.value, Color: color})
		}
		doc.Pattern.AddSequence(seq)
	}
	return doc, nil
}

// EncodePattern renders a pattern document with two-space indentation
func EncodePattern(doc *PatternDocument) ([]byte, error) {
	seqs := []seqJSON{}
	if doc.Pattern != nil {
		for _, s := range doc.Pattern.Seqs {
			leds := make([]string, 0, len(s.Leds))
			for _, l := range s.Leds {
				leds = append(leds, string(l))
			}
			ivs := make([]intervalJSON, 0, len(s.Intervals))
			for _, iv := range s.Intervals {
				ivs = append(ivs, intervalJSON{
					Start: newMillis(iv.Start),
					End:   newMillis(iv.End),
					Color: string(iv.Color),
				})
			}
			seqs = append(seqs, seqJSON{
				ID:       groupID{value: string(s.ID), set: true},
				Leds:     &leds,
				Sequence: ivs,
			})
		}
	}

	body := &patternBody{Seqs: &seqs}
	if doc.CurrentTime != nil {
		ct := newMillis(*doc.CurrentTime)
		body.CurrentTime = &ct
	}
	music := doc.Music
	return json.MarshalIndent(patternFile{Music: &music, Pattern: body}, "", "  ")
}
