package document

import (
	"encoding/json"
	"fmt"

	"github.com/james-see/ledcostume/pkg/timeline"
)

// PatternRef is one pattern of a scenario row followed by a pause
type PatternRef struct {
	Name     string                `json:"name"`
	PauseLen timeline.Milliseconds `json:"pause_len"`
}

// Row assigns an ordered list of patterns to one costume
type Row struct {
	Costume  string       `json:"costume"`
	Patterns []PatternRef `json:"patterns"`
}

// Scenario is an ordered list of rows played in parallel
type Scenario struct {
	Rows []Row
}

// Direction moves a row or pattern one slot
type Direction int

const (
	Up   Direction = -1
	Down Direction = 1
)

type rowJSON struct {
	Costume  *string `json:"costume"`
	Patterns *[]struct {
		Name     *string `json:"name"`
		PauseLen millis  `json:"pause_len"`
	} `json:"patterns"`
}

// DecodeScenario parses a scenario document. A missing or empty pause is 0.
func DecodeScenario(data []byte) (*Scenario, error) {
	var raw []rowJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, malformed("scenario", "invalid JSON", err)
	}
	sc := &Scenario{Rows: make([]Row, 0, len(raw))}
	for i, r := range raw {
		if r.Costume == nil {
			return nil, malformed("scenario", fmt.Sprintf("rows[%d]: missing costume", i), nil)
		}
		row := Row{Costume: *r.Costume, Patterns: []PatternRef{}}
		if r.Patterns != nil {
			for j, p := range *r.Patterns {
				if p.Name == nil {
					return nil, malformed("scenario", fmt.Sprintf("rows[%d].patterns[%d]: missing name", i, j), nil)
				}
				if p.PauseLen.value < 0 {
					return nil, malformed("scenario", fmt.Sprintf("rows[%d].patterns[%d]: negative pause_len", i, j), nil)
				}
				row.Patterns = append(row.Patterns, PatternRef{Name: *p.Name, PauseLen: p.PauseLen.value})
			}
		}
		sc.Rows = append(sc.Rows, row)
	}
	return sc, nil
}

// EncodeScenario renders a scenario document
func EncodeScenario(sc *Scenario) ([]byte, error) {
	rows := sc.Rows
	if rows == nil {
		rows = []Row{}
	}
	return json.MarshalIndent(rows, "", "  ")
}

// AddRow appends an empty row
func (sc *Scenario) AddRow() {
	sc.Rows = append(sc.Rows, Row{Patterns: []PatternRef{}})
}

// DeleteRow removes row i. Out of range is a no-op.
func (sc *Scenario) DeleteRow(i int) bool {
	if i < 0 || i >= len(sc.Rows) {
		return false
	}
	sc.Rows = append(sc.Rows[:i], sc.Rows[i+1:]...)
	return true
}

// MoveRow swaps row i with its neighbour in direction d.
// Moving past either end is a no-op.
func (sc *Scenario) MoveRow(i int, d Direction) bool {
	j := i + int(d)
	if i < 0 || i >= len(sc.Rows) || j < 0 || j >= len(sc.Rows) {
		return false
	}
	sc.Rows[i], sc.Rows[j] = sc.Rows[j], sc.Rows[i]
	return true
}

// SetCostume sets the costume file of row i
func (sc *Scenario) SetCostume(i int, costume string) bool {
	if i < 0 || i >= len(sc.Rows) {
		return false
	}
	sc.Rows[i].Costume = costume
	return true
}

func (sc *Scenario) row(i int) *Row {
	if i < 0 || i >= len(sc.Rows) {
		return nil
	}
	return &sc.Rows[i]
}

// AddPattern appends an empty pattern slot to row i
func (sc *Scenario) AddPattern(i int) bool {
	r := sc.row(i)
	if r == nil {
		return false
	}
	r.Patterns = append(r.Patterns, PatternRef{})
	return true
}

// DeletePattern removes pattern j of row i
func (sc *Scenario) DeletePattern(i, j int) bool {
	r := sc.row(i)
	if r == nil || j < 0 || j >= len(r.Patterns) {
		return false
	}
	r.Patterns = append(r.Patterns[:j], r.Patterns[j+1:]...)
	return true
}

// MovePattern swaps pattern j of row i with its neighbour in direction d
func (sc *Scenario) MovePattern(i, j int, d Direction) bool {
	r := sc.row(i)
	k := j + int(d)
	if r == nil || j < 0 || j >= len(r.Patterns) || k < 0 || k >= len(r.Patterns) {
		return false
	}
	r.Patterns[j], r.Patterns[k] = r.Patterns[k], r.Patterns[j]
	return true
}

// SetPattern sets the pattern file of slot j in row i
func (sc *Scenario) SetPattern(i, j int, name string) bool {
	r := sc.row(i)
	if r == nil || j < 0 || j >= len(r.Patterns) {
		return false
	}
	r.Patterns[j].Name = name
	return true
}

// SetPause sets the pause after slot j in row i. Negative values become 0.
func (sc *Scenario) SetPause(i, j int, pause timeline.Milliseconds) bool {
	r := sc.row(i)
	if r == nil || j < 0 || j >= len(r.Patterns) {
		return false
	}
	if pause < 0 {
		pause = 0
	}
	r.Patterns[j].PauseLen = pause
	return true
}
