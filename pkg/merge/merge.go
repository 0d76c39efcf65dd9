// Package merge concatenates patterns with pauses into one composite timeline
package merge

import (
	"fmt"

	"github.com/james-see/ledcostume/pkg/timeline"
)

// Entry is one pattern placed on a scenario row
type Entry struct {
	Pattern *timeline.Pattern
	Pause   timeline.Milliseconds
	// AudioDuration is the length of the pattern's audio track; nil when it could not be determined.
	AudioDuration *timeline.Milliseconds
	// Source names the pattern for error messages (usually its document path)
	Source string
}

// Duration is a convenience for filling Entry.AudioDuration
func Duration(ms timeline.Milliseconds) *timeline.Milliseconds {
	return &ms
}

// Composite is a merged pattern together with its total length
type Composite struct {
	Pattern       *timeline.Pattern
	TotalDuration timeline.Milliseconds
	// Offsets holds the start position of every entry
	Offsets []timeline.Milliseconds
}

// MissingDurationError reports an entry whose audio length is unknown
type MissingDurationError struct {
	Index  int
	Source string
	Err    error
}

func (e *MissingDurationError) Error() string {
	msg := fmt.Sprintf("missing audio duration for entry %d", e.Index)
	if e.Source != "" {
		msg += fmt.Sprintf(" (%s)", e.Source)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MissingDurationError) Unwrap() error {
	return e.Err
}

// Merge lays the entries end to end. Each entry occupies its audio duration
// plus its pause; its intervals are shifted by the sum of everything before it.
// Groups from different entries stay separate even when their ids match.
// Merge never mutates its inputs and returns no composite on error.
func Merge(entries []Entry) (*Composite, error) {
	for i, e := range entries {
		if e.AudioDuration == nil {
			return nil, &MissingDurationError{Index: i, Source: e.Source}
		}
	}

	out := &Composite{
		Pattern: timeline.NewPattern(),
		Offsets: make([]timeline.Milliseconds, 0, len(entries)),
	}

	var cursor timeline.Milliseconds
	for _, e := range entries {
		out.Offsets = append(out.Offsets, cursor)
		if e.Pattern != nil {
			for _, seq := range e.Pattern.Seqs {
				out.Pattern.Seqs = append(out.Pattern.Seqs, seq.Shifted(cursor))
			}
		}
		cursor += *e.AudioDuration + e.Pause
	}
	out.Pattern.Touch()
	out.TotalDuration = cursor

	return out, nil
}
