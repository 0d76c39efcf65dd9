package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/james-see/ledcostume/pkg/timeline"
)

// groupID accepts the numeric ids generated by the editor as well as strings,
// and writes numeric-looking ids back as numbers
type groupID struct {
	value string
	set   bool
}

func (g *groupID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		g.value, g.set = s, true
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("group id must be a string or number: %w", err)
	}
	g.value, g.set = n.String(), true
	return nil
}

func (g groupID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(g.value, 10, 64); err == nil && strconv.FormatInt(n, 10) == g.value {
		return []byte(g.value), nil
	}
	return json.Marshal(g.value)
}

// millis accepts numbers (fractions are rounded), numeric strings and null
type millis struct {
	value timeline.Milliseconds
	set   bool
}

func (m *millis) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		data = []byte(s)
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid millisecond value %s", data)
	}
	m.value, m.set = timeline.Milliseconds(math.Round(f)), true
	return nil
}

func (m millis) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(m.value), 10)), nil
}

func newMillis(v timeline.Milliseconds) millis {
	return millis{value: v, set: true}
}
