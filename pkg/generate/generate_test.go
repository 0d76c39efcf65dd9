package generate

import (
	"math/rand/v2"
	"reflect"
	"slices"
	"testing"

	"github.com/james-see/ledcostume/pkg/document"
	"github.com/james-see/ledcostume/pkg/timeline"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func testCostume() document.Costume {
	return document.Costume{
		{Name: "head_front", LedsCount: 3},
		{Name: "body_front", LedsCount: 2},
		{Name: "left_hand_front", LedsCount: 4},
		{Name: "left_leg_front", LedsCount: 2},
	}
}

func bounds(ivs []timeline.Interval) [][2]timeline.Milliseconds {
	out := make([][2]timeline.Milliseconds, len(ivs))
	for i, iv := range ivs {
		out[i] = [2]timeline.Milliseconds{iv.Start, iv.End}
	}
	return out
}

func TestEffectFor(t *testing.T) {
	tests := []struct {
		part string
		want Effect
	}{
		{"head_back", Pulse},
		{"right_hand_front", RandomHue},
		{"body_front", Gradient},
		{"left_leg_back", Gradient},
		{"cape", Gradient},
	}
	for _, tt := range tests {
		t.Run(tt.part, func(t *testing.T) {
			if got := EffectFor(tt.part); got != tt.want {
				t.Errorf("EffectFor(%q) = %s, want %s", tt.part, got, tt.want)
			}
		})
	}
}

func TestGradientIntervals(t *testing.T) {
	tests := []struct {
		name     string
		from, to timeline.Color
		want     []timeline.Color
	}{
		{"black to white", "#000000", "#FFFFFF", []timeline.Color{"#000000", "#808080", "#FFFFFF"}},
		{"red to blue through green", "#FF0000", "#0000FF", []timeline.Color{"#FF0000", "#00FF00", "#0000FF"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ivs := GradientIntervals(tt.from, tt.to, 3, 100, 500)
			want := [][2]timeline.Milliseconds{{100, 600}, {600, 1100}, {1100, 1600}}
			if got := bounds(ivs); !reflect.DeepEqual(got, want) {
				t.Errorf("bounds = %v, want %v", got, want)
			}
			for i, iv := range ivs {
				if iv.Color != tt.want[i] {
					t.Errorf("interval %d color = %s, want %s", i, iv.Color, tt.want[i])
				}
			}
		})
	}

	if ivs := GradientIntervals("#FF0000", "#0000FF", 1, 0, 500); len(ivs) != 1 || ivs[0].Color != "#FF0000" {
		t.Errorf("single step = %+v, want the start color", ivs)
	}
}

func TestPulseIntervals(t *testing.T) {
	ivs := PulseIntervals("#FFBABA", 8, 1000, 500)
	want := [][2]timeline.Milliseconds{{2000, 2500}, {2500, 3000}, {4000, 4500}, {4500, 5000}}
	if got := bounds(ivs); !reflect.DeepEqual(got, want) {
		t.Errorf("bounds = %v, want %v", got, want)
	}
	for _, iv := range ivs {
		if iv.Color != "#FFBABA" {
			t.Errorf("color = %s", iv.Color)
		}
	}
}

func TestRandomHueIntervals(t *testing.T) {
	ivs := RandomHueIntervals(seeded(1), 20, 0, 250)
	if len(ivs) != 20 || ivs[19].End != 5000 {
		t.Fatalf("got %d intervals ending %d", len(ivs), ivs[len(ivs)-1].End)
	}
	for _, iv := range ivs {
		r, g, b := iv.Color.RGB()
		hi, lo := max(r, g, b), min(r, g, b)
		if hi != 255 || lo != 0 {
			t.Errorf("%s is not fully saturated", iv.Color)
		}
	}
}

func TestPatternLayout(t *testing.T) {
	g := New(Options{Duration: 12000, Block: 3000, Rand: seeded(7)})
	p := g.Pattern(testCostume())

	if len(p.Seqs) != 4 {
		t.Fatalf("groups = %d, want one per body part", len(p.Seqs))
	}
	for i, s := range p.Seqs {
		if s.ID != timeline.GroupID([]string{"0", "1", "2", "3"}[i]) {
			t.Errorf("group %d id = %q", i, s.ID)
		}
	}
	if want := []timeline.LedID{"head_front_0", "head_front_1", "head_front_2"}; !reflect.DeepEqual(p.Seqs[0].Leds, want) {
		t.Errorf("head leds = %v", p.Seqs[0].Leds)
	}

	tests := []struct {
		name   string
		seq    int
		count  int
		starts []timeline.Milliseconds
	}{
		// two lit frames of every four, blocks at 0, 3000, 6000 and 9000
		{"pulse", 0, 8, []timeline.Milliseconds{1000, 1500, 4000, 4500, 7000, 7500, 10000, 10500}},
		// fixed five second blocks, the third cut at the track end
		{"body gradient", 1, 24, nil},
		{"random hue", 2, 24, nil},
		{"gradient", 3, 24, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ivs := p.Seqs[tt.seq].Intervals
			if len(ivs) != tt.count {
				t.Fatalf("intervals = %d, want %d", len(ivs), tt.count)
			}
			for _, iv := range ivs {
				if iv.End-iv.Start != 500 || iv.End > 12000 {
					t.Errorf("interval {%d,%d} is not one frame inside the track", iv.Start, iv.End)
				}
			}
			if tt.starts != nil {
				starts := make([]timeline.Milliseconds, len(ivs))
				for i, iv := range ivs {
					starts[i] = iv.Start
				}
				if !reflect.DeepEqual(starts, tt.starts) {
					t.Errorf("starts = %v, want %v", starts, tt.starts)
				}
			}
		})
	}
	if d := p.Duration(); d != 12000 {
		t.Errorf("Duration() = %d, want 12000", d)
	}
}

func TestPatternColorEndpoints(t *testing.T) {
	p := New(Options{Duration: 6000, Block: 3000, Rand: seeded(42)}).Pattern(testCostume())

	// blocks of six frames: each gradient starts pastel and ends saturated
	leg := p.Seqs[3].Intervals
	for block := 0; block < 2; block++ {
		first, last := leg[block*6], leg[block*6+5]
		if !slices.Contains(StartColors, first.Color) {
			t.Errorf("block %d starts at %s, not a start color", block, first.Color)
		}
		if !slices.Contains(EndColors, last.Color) {
			t.Errorf("block %d ends at %s, not an end color", block, last.Color)
		}
	}

	body := p.Seqs[1].Intervals
	if !slices.Contains(StartColors, body[0].Color) || !slices.Contains(EndColors, body[9].Color) {
		t.Errorf("body gradient runs %s to %s", body[0].Color, body[9].Color)
	}
	for _, iv := range p.Seqs[0].Intervals[:2] {
		if !slices.Contains(StartColors, iv.Color) {
			t.Errorf("pulse color %s, not a start color", iv.Color)
		}
	}

	again := New(Options{Duration: 6000, Block: 3000, Rand: seeded(42)}).Pattern(testCostume())
	for i := range p.Seqs {
		for j, iv := range p.Seqs[i].Intervals {
			if again.Seqs[i].Intervals[j].Color != iv.Color {
				t.Fatalf("seed 42 is not reproducible at group %d interval %d", i, j)
			}
		}
	}
}

func TestNewDefaults(t *testing.T) {
	g := New(Options{Duration: 1000, Rand: seeded(3)})
	if g.frame != DefaultFrame {
		t.Errorf("frame = %d, want %d", g.frame, DefaultFrame)
	}
	if g.block < MinBlock || g.block > MaxBlock {
		t.Errorf("block = %d, want within [%d, %d]", g.block, MinBlock, MaxBlock)
	}

	p := New(Options{Rand: seeded(3)}).Pattern(testCostume())
	for _, s := range p.Seqs {
		if len(s.Intervals) != 0 {
			t.Errorf("zero duration produced intervals for %s", s.ID)
		}
	}
}
