// Package show composes a scenario into per-costume composite timelines
package show

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/james-see/ledcostume/pkg/document"
	"github.com/james-see/ledcostume/pkg/merge"
	"github.com/james-see/ledcostume/pkg/resolve"
	"github.com/james-see/ledcostume/pkg/timeline"
)

// Prober returns the length of the audio track at path
type Prober func(path string) (timeline.Milliseconds, error)

// ErrNonLocalRef reports a reference that leaves the store's root
var ErrNonLocalRef = errors.New("reference must be relative to the data directory")

// Composer loads the documents a scenario refers to and merges each row
type Composer struct {
	Store document.Store
	// MusicDir resolves relative music filenames before probing
	MusicDir string
	Probe    Prober
	// Cache is optional; rows are merged directly without it
	Cache *merge.Cache
	// LocalOnly rejects absolute references and references climbing out with ".."
	LocalOnly bool
}

// Row is one costume with its merged timeline
type Row struct {
	CostumePath string
	Costume     document.Costume
	Leds        []timeline.LedID
	Composite   *merge.Composite
	Patterns    []string

	resolver *resolve.Resolver
}

// Show is a composed scenario
type Show struct {
	Rows []*Row
	// Duration is the length of the longest row
	Duration timeline.Milliseconds
}

// RowFrame holds the resolved colors of one row at an instant
type RowFrame struct {
	Costume string                            `json:"costume"`
	Colors  map[timeline.LedID]timeline.Color `json:"colors"`
}

// Compose builds the show for sc. Costume and pattern references are file
// paths handed to the store unchanged.
func (c *Composer) Compose(sc *document.Scenario) (*Show, error) {
	durations := make(map[string]timeline.Milliseconds)
	probeErrs := make(map[string]error)

	probe := func(filename string) (*timeline.Milliseconds, error) {
		if filename == "" {
			return nil, errors.New("pattern has no music")
		}
		if d, ok := durations[filename]; ok {
			return &d, nil
		}
		if err, ok := probeErrs[filename]; ok {
			return nil, err
		}
		d, err := c.Probe(document.MusicPath(c.MusicDir, filename))
		if err != nil {
			probeErrs[filename] = err
			return nil, err
		}
		durations[filename] = d
		return &d, nil
	}

	out := &Show{}
	for i, r := range sc.Rows {
		row := &Row{CostumePath: r.Costume, resolver: resolve.NewResolver()}
		if r.Costume != "" {
			if err := c.checkRef(r.Costume); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			costume, err := document.LoadCostume(c.Store, r.Costume)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			row.Costume = costume
			row.Leds = costume.Leds()
		}

		entries := make([]merge.Entry, 0, len(r.Patterns))
		causes := make([]error, 0, len(r.Patterns))
		// refIndex maps an entry back to its position in the row
		refIndex := make([]int, 0, len(r.Patterns))
		for j, ref := range r.Patterns {
			if ref.Name == "" {
				continue
			}
			if err := c.checkRef(ref.Name); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			doc, err := document.LoadPattern(c.Store, ref.Name)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			if doc.Music.Filename != "" {
				if err := c.checkRef(doc.Music.Filename); err != nil {
					return nil, fmt.Errorf("row %d: %s: %w", i, ref.Name, err)
				}
			}
			dur, err := probe(doc.Music.Filename)
			entries = append(entries, merge.Entry{
				Pattern:       doc.Pattern,
				Pause:         ref.PauseLen,
				AudioDuration: dur,
				Source:        ref.Name,
			})
			causes = append(causes, err)
			refIndex = append(refIndex, j)
			row.Patterns = append(row.Patterns, ref.Name)
		}

		comp, err := c.merge(entries)
		if err != nil {
			var missing *merge.MissingDurationError
			if errors.As(err, &missing) {
				e := *missing
				e.Index = refIndex[missing.Index]
				if e.Err == nil {
					e.Err = causes[missing.Index]
				}
				err = &e
			}
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		row.Composite = comp
		if comp.TotalDuration > out.Duration {
			out.Duration = comp.TotalDuration
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func (c *Composer) checkRef(ref string) error {
	if c.LocalOnly && !filepath.IsLocal(ref) {
		return fmt.Errorf("%q: %w", ref, ErrNonLocalRef)
	}
	return nil
}

func (c *Composer) merge(entries []merge.Entry) (*merge.Composite, error) {
	if c.Cache != nil {
		return c.Cache.Merge(entries)
	}
	return merge.Merge(entries)
}

// Frame resolves every costume LED of every row at t. A Show's frames must be
// requested from one goroutine at a time.
func (s *Show) Frame(t timeline.Milliseconds) []RowFrame {
	frames := make([]RowFrame, 0, len(s.Rows))
	for _, r := range s.Rows {
		frames = append(frames, RowFrame{
			Costume: r.CostumePath,
			Colors:  r.resolver.All(r.Composite.Pattern, r.Leds, t),
		})
	}
	return frames
}
