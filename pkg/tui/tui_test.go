package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/james-see/ledcostume/pkg/config"
	"github.com/james-see/ledcostume/pkg/playback"
	"github.com/james-see/ledcostume/pkg/resolve"
	"github.com/james-see/ledcostume/pkg/show"
	"github.com/james-see/ledcostume/pkg/timeline"
)

type fakeNow struct {
	t time.Time
}

func (f *fakeNow) now() time.Time { return f.t }

func (f *fakeNow) advance(d time.Duration) { f.t = f.t.Add(d) }

func testPreview(now func() time.Time) *preview {
	p := timeline.NewPattern()
	s := p.AddSequence(timeline.NewSequence("1", []timeline.LedID{"arm_0", "arm_1"}))
	s.AddInterval(timeline.NewInterval(0, 1000, "#FF0000"))
	leds := p.Leds()
	frame := func(t timeline.Milliseconds) []show.RowFrame {
		return []show.RowFrame{{Costume: "hero", Colors: resolve.All(p, leds, t)}}
	}
	pv := newPreview("test", [][]timeline.LedID{leds}, frame, 2000, 10*time.Millisecond, now)
	pv.useClock()
	return pv
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Preview.Audio = false
	return cfg
}

func TestMenuNavigation(t *testing.T) {
	m := New(testConfig(t))

	next, _ := m.Update(key("down"))
	m = next.(Model)
	if m.menuIndex != 1 {
		t.Fatalf("menuIndex = %d, want 1", m.menuIndex)
	}
	next, _ = m.Update(key("up"))
	next, _ = next.(Model).Update(key("up"))
	m = next.(Model)
	if m.menuIndex != 0 {
		t.Fatalf("menuIndex = %d, want 0", m.menuIndex)
	}

	next, cmd := m.Update(key("enter"))
	m = next.(Model)
	if m.state != StateFilePicker || m.item.Action != ActionPreviewPattern || cmd == nil {
		t.Errorf("enter: state %v action %v", m.state, m.item.Action)
	}
	next, _ = m.Update(key("esc"))
	if next.(Model).state != StateMenu {
		t.Error("esc did not return to the menu")
	}

	m = New(testConfig(t))
	m.menuIndex = len(menuItems) - 1
	_, cmd = m.Update(key("enter"))
	if cmd == nil {
		t.Fatal("Exit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Exit did not quit")
	}
}

func TestPreviewPlayback(t *testing.T) {
	clock := &fakeNow{t: time.Unix(0, 0)}
	m := New(testConfig(t))
	next, _ := m.Update(previewLoadedMsg{preview: testPreview(clock.now)})
	m = next.(Model)
	if m.state != StatePreview {
		t.Fatalf("state = %v, want preview", m.state)
	}
	p := m.preview

	next, cmd := m.Update(key(" "))
	m = next.(Model)
	if cmd == nil || !p.playing {
		t.Fatal("space did not start playback")
	}
	run := p.run

	clock.advance(500 * time.Millisecond)
	next, cmd = m.Update(frameMsg{run: run})
	m = next.(Model)
	if got := p.session.Cursor(); got != 500 {
		t.Errorf("cursor = %d, want 500", got)
	}
	if cmd == nil {
		t.Error("no next frame scheduled while playing")
	}

	if cmd := p.advance(run + 1); cmd != nil {
		t.Error("stale frame scheduled another")
	}

	next, _ = m.Update(key("left"))
	m = next.(Model)
	if m.status == "" {
		t.Error("seeking with the clock should report a status")
	}
	if got := p.session.Cursor(); got != 500 {
		t.Errorf("cursor after refused seek = %d, want 500", got)
	}

	clock.advance(5 * time.Second)
	next, cmd = m.Update(frameMsg{run: run})
	m = next.(Model)
	if cmd != nil || p.playing {
		t.Error("playback continued past the end")
	}
	if got := p.session.Cursor(); got != 2000 {
		t.Errorf("final cursor = %d, want 2000", got)
	}

	next, _ = m.Update(key("s"))
	m = next.(Model)
	if got := p.session.Cursor(); got != 0 {
		t.Errorf("cursor after stop = %d, want 0", got)
	}

	next, _ = m.Update(key("esc"))
	m = next.(Model)
	if m.state != StateMenu || m.preview != nil {
		t.Error("esc did not close the preview")
	}
	if _, ok := p.session.Authority().(playback.Idle); !ok {
		t.Error("closed preview still holds a time authority")
	}
}

func TestPreviewPause(t *testing.T) {
	clock := &fakeNow{t: time.Unix(0, 0)}
	p := testPreview(clock.now)

	p.toggle()
	clock.advance(300 * time.Millisecond)
	p.advance(p.run)
	p.toggle()
	if p.playing {
		t.Fatal("toggle did not pause")
	}

	clock.advance(time.Second)
	if cmd := p.advance(p.run); cmd != nil {
		t.Error("paused preview scheduled a frame")
	}
	if got := p.session.Cursor(); got != 300 {
		t.Errorf("cursor = %d, want 300", got)
	}

	p.toggle()
	clock.advance(200 * time.Millisecond)
	p.advance(p.run)
	if got := p.session.Cursor(); got != 500 {
		t.Errorf("resumed cursor = %d, want 500", got)
	}
}

func TestPreviewRender(t *testing.T) {
	clock := &fakeNow{t: time.Unix(0, 0)}
	p := testPreview(clock.now)
	p.toggle()
	clock.advance(500 * time.Millisecond)
	p.advance(p.run)

	out := p.render(40)
	if n := strings.Count(out, "●"); n != 2 {
		t.Errorf("lit LEDs = %d, want 2\n%s", n, out)
	}
	if !strings.Contains(out, "hero") || !strings.Contains(out, "┃") {
		t.Errorf("render missing row title or cursor:\n%s", out)
	}
	if !strings.Contains(out, "playing (clock)") {
		t.Errorf("render missing mode:\n%s", out)
	}
}

func TestLoadPatternPreview(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "intro.json")
	data := `{"music": {"filename": "missing.mp3"}, "pattern": {"currentTime": 250, "seqs": [
		{"id": 1, "leds": ["arm_0"], "sequence": [{"start": 0, "end": 1500, "color": "#00FF00"}]}
	]}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := loadPatternPreview(cfg, path)
	if err != nil {
		t.Fatalf("loadPatternPreview() error = %v", err)
	}
	if p.duration != 1500 || p.mode() != "clock" {
		t.Errorf("duration %d mode %s, want 1500 clock", p.duration, p.mode())
	}
	if got := p.session.Cursor(); got != 250 {
		t.Errorf("cursor = %d, want 250", got)
	}

	cfg.Preview.Audio = true
	p, err = loadPatternPreview(cfg, path)
	if err != nil || p.mode() != "clock" {
		t.Errorf("undecodable track: err %v mode %s", err, p.mode())
	}

	if _, err := loadPatternPreview(cfg, filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("missing file loaded")
	}
}
