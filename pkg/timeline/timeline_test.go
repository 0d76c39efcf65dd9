package timeline

import (
	"reflect"
	"testing"
)

func TestIntervalContains(t *testing.T) {
	iv := NewInterval(100, 200, "#FF0000")

	tests := []struct {
		at       Milliseconds
		expected bool
	}{
		{99, false},
		{100, false},
		{101, true},
		{150, true},
		{199, true},
		{200, false},
		{250, false},
	}

	for _, tt := range tests {
		t.Run(tt.at.String(), func(t *testing.T) {
			if got := iv.Contains(tt.at); got != tt.expected {
				t.Errorf("Contains(%d) = %v, want %v", tt.at, got, tt.expected)
			}
		})
	}
}

func TestZeroLengthIntervalContainsNothing(t *testing.T) {
	iv := NewInterval(500, 500, White)
	if iv.Contains(500) {
		t.Error("zero length interval should not contain its own position")
	}
	if !iv.Valid() {
		t.Error("zero length interval should be valid")
	}
}

func TestIntervalShift(t *testing.T) {
	iv := NewInterval(0, 100, "#FFFFFF")
	shifted := iv.Shift(1500)

	if shifted.Start != 1500 || shifted.End != 1600 {
		t.Errorf("Shift(1500) = {%d,%d}, want {1500,1600}", shifted.Start, shifted.End)
	}
	if iv.Start != 0 || iv.End != 100 {
		t.Error("Shift() mutated the original interval")
	}
	if shifted.Color != iv.Color {
		t.Errorf("Shift() color = %q, want %q", shifted.Color, iv.Color)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in       string
		expected Color
		wantErr  bool
	}{
		{"#FF0000", "#FF0000", false},
		{"#ffbaba", "#FFBABA", false},
		{"", White, false},
		{"FF0000", "", true},
		{"#FF00", "", true},
		{"#GG0000", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseColor(%q) = %q, want %q", tt.in, got, tt.expected)
			}
		})
	}
}

func TestColorDarken(t *testing.T) {
	if got := Color("#FF8040").Darken(); got != "#7F4020" {
		t.Errorf("Darken() = %q, want %q", got, "#7F4020")
	}
	if got := Color("").Darken(); got != White {
		t.Errorf("Darken() of empty = %q, want %q", got, White)
	}
}

func TestLedIDSplit(t *testing.T) {
	tests := []struct {
		id    LedID
		part  string
		index int
		ok    bool
	}{
		{"left_hand_front_3", "left_hand_front", 3, true},
		{MakeLedID("head", 0), "head", 0, true},
		{"head", "", 0, false},
		{"head_", "", 0, false},
		{"head_x", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			part, index, ok := tt.id.Split()
			if ok != tt.ok || part != tt.part || index != tt.index {
				t.Errorf("Split() = (%q, %d, %v), want (%q, %d, %v)", part, index, ok, tt.part, tt.index, tt.ok)
			}
		})
	}
}

func TestSequenceRemoveIntervalMissingIsNoop(t *testing.T) {
	s := NewSequence("arm", []LedID{"arm_0"})
	kept := s.AddInterval(NewInterval(0, 100, "#FF0000"))

	if s.RemoveInterval("does-not-exist") {
		t.Error("RemoveInterval() of unknown id should report false")
	}
	if len(s.Intervals) != 1 {
		t.Fatalf("intervals = %d, want 1", len(s.Intervals))
	}
	if !s.RemoveInterval(kept.ID) {
		t.Error("RemoveInterval() of known id should report true")
	}
	if len(s.Intervals) != 0 {
		t.Errorf("intervals = %d, want 0", len(s.Intervals))
	}
}

func TestSequenceAddIntervalDefaults(t *testing.T) {
	s := NewSequence("arm", nil)
	iv := s.AddInterval(Interval{Start: 10, End: 20})
	if iv.ID == "" {
		t.Error("AddInterval() should assign an identity")
	}
	if iv.Color != White {
		t.Errorf("AddInterval() color = %q, want %q", iv.Color, White)
	}
}

func TestSequenceReassignLedsDropsDuplicates(t *testing.T) {
	s := NewSequence("arm", []LedID{"a_0", "a_1", "a_0"})
	want := []LedID{"a_0", "a_1"}
	if !reflect.DeepEqual(s.Leds, want) {
		t.Errorf("Leds = %v, want %v", s.Leds, want)
	}
}

func TestPatternAssignGroupIsExclusive(t *testing.T) {
	p := NewPattern()
	p.AddSequence(NewSequence("a", []LedID{"x_0", "x_1"}))
	p.AddSequence(NewSequence("b", []LedID{"x_2"}))
	rev := p.Revision()

	p.AssignGroup("b", []LedID{"x_1"})

	if got := p.Sequence("a").Leds; !reflect.DeepEqual(got, []LedID{"x_0"}) {
		t.Errorf("group a leds = %v, want [x_0]", got)
	}
	if got := p.Sequence("b").Leds; !reflect.DeepEqual(got, []LedID{"x_2", "x_1"}) {
		t.Errorf("group b leds = %v, want [x_2 x_1]", got)
	}
	if p.Revision() == rev {
		t.Error("AssignGroup() should bump the revision")
	}

	p.AssignGroup("c", []LedID{"x_0"})
	if p.Sequence("c") == nil {
		t.Fatal("AssignGroup() should create a missing group")
	}
	if groups := p.GroupsOf("x_0"); !reflect.DeepEqual(groups, []GroupID{"c"}) {
		t.Errorf("GroupsOf(x_0) = %v, want [c]", groups)
	}
}

func TestPatternReassignLedsIsPermissive(t *testing.T) {
	p := NewPattern()
	p.AddSequence(NewSequence("a", []LedID{"x_0"}))
	p.AddSequence(NewSequence("b", nil))

	p.ReassignLeds("b", []LedID{"x_0"})

	if groups := p.GroupsOf("x_0"); !reflect.DeepEqual(groups, []GroupID{"a", "b"}) {
		t.Errorf("GroupsOf(x_0) = %v, want [a b]", groups)
	}
}

func TestPatternPruneLeds(t *testing.T) {
	p := NewPattern()
	p.AddSequence(NewSequence("a", []LedID{"arm_0", "arm_4", "leg_7"}))
	p.AddSequence(NewSequence("b", []LedID{"arm_5", "arm_1"}))

	removed := p.PruneLeds("arm", 2)

	if !reflect.DeepEqual(removed, []LedID{"arm_4", "arm_5"}) {
		t.Errorf("PruneLeds() removed = %v, want [arm_4 arm_5]", removed)
	}
	if got := p.Sequence("a").Leds; !reflect.DeepEqual(got, []LedID{"arm_0", "leg_7"}) {
		t.Errorf("group a leds = %v", got)
	}
	if got := p.Sequence("b").Leds; !reflect.DeepEqual(got, []LedID{"arm_1"}) {
		t.Errorf("group b leds = %v", got)
	}
}

func TestPatternDurationAndLeds(t *testing.T) {
	p := NewPattern()
	a := p.AddSequence(NewSequence("a", []LedID{"x_0", "x_1"}))
	b := p.AddSequence(NewSequence("b", []LedID{"x_1", "y_0"}))
	a.AddInterval(NewInterval(0, 700, White))
	b.AddInterval(NewInterval(100, 1200, White))

	if d := p.Duration(); d != 1200 {
		t.Errorf("Duration() = %d, want 1200", d)
	}
	if leds := p.Leds(); !reflect.DeepEqual(leds, []LedID{"x_0", "x_1", "y_0"}) {
		t.Errorf("Leds() = %v", leds)
	}
}

func TestPatternCloneIsDeep(t *testing.T) {
	p := NewPattern()
	s := p.AddSequence(NewSequence("a", []LedID{"x_0"}))
	iv := s.AddInterval(NewInterval(0, 10, White))

	c := p.Clone()
	c.Seqs[0].Intervals[0].End = 99
	c.Seqs[0].Leds[0] = "y_0"

	if got, _ := s.Interval(iv.ID); got.End != 10 {
		t.Error("Clone() shares intervals with the original")
	}
	if s.Leds[0] != "x_0" {
		t.Error("Clone() shares leds with the original")
	}
}

func TestMillisecondsString(t *testing.T) {
	if got := Milliseconds(83456).String(); got != "01:23.456" {
		t.Errorf("String() = %q, want %q", got, "01:23.456")
	}
}
