package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/james-see/ledcostume/pkg/audio"
	"github.com/james-see/ledcostume/pkg/config"
	"github.com/james-see/ledcostume/pkg/debug"
	"github.com/james-see/ledcostume/pkg/document"
	"github.com/james-see/ledcostume/pkg/editor"
	"github.com/james-see/ledcostume/pkg/merge"
	"github.com/james-see/ledcostume/pkg/playback"
	"github.com/james-see/ledcostume/pkg/resolve"
	"github.com/james-see/ledcostume/pkg/show"
	"github.com/james-see/ledcostume/pkg/timeline"
)

// seekStep is how far one arrow key press moves the cursor
const seekStep timeline.Milliseconds = 1000

// frameMsg asks the preview to advance run by one frame
type frameMsg struct {
	run uint64
}

// preview plays one pattern or scenario. All of its state is touched only
// from the bubbletea update loop.
type preview struct {
	title    string
	frame    func(t timeline.Milliseconds) []show.RowFrame
	leds     [][]timeline.LedID
	duration timeline.Milliseconds
	interval time.Duration

	session *playback.Session
	clock   *playback.Clock
	player  *audio.Player
	view    *editor.Viewport

	run     uint64
	playing bool
}

func newPreview(title string, leds [][]timeline.LedID, frame func(timeline.Milliseconds) []show.RowFrame, duration timeline.Milliseconds, interval time.Duration, now func() time.Time) *preview {
	p := &preview{
		title:    title,
		frame:    frame,
		leds:     leds,
		duration: duration,
		interval: interval,
		session:  playback.NewSession(),
		clock:    playback.NewClock(now),
		view:     editor.NewViewport(duration),
	}
	return p
}

// useClock hands time authority to the preview clock, resuming from the cursor
func (p *preview) useClock() {
	p.session.UseClock(p.clock, p.duration)
}

// useAudio hands time authority to a decoded track, seeking it to the cursor
func (p *preview) useAudio(player *audio.Player) {
	t := p.session.Cursor()
	p.player = player
	p.duration = player.Duration()
	p.view.SetDuration(p.duration)
	p.session.UseAudio(player)
	_ = p.session.Seek(t)
}

// loadPatternPreview previews a single pattern file. The pattern's track plays
// along when it can be decoded and audio is enabled.
func loadPatternPreview(cfg *config.Config, path string) (*preview, error) {
	doc, err := document.LoadPattern(document.NewFileStore(""), path)
	if err != nil {
		return nil, err
	}
	leds := doc.Pattern.Leds()
	res := resolve.NewResolver()
	frame := func(t timeline.Milliseconds) []show.RowFrame {
		return []show.RowFrame{{Costume: filepath.Base(path), Colors: res.All(doc.Pattern, leds, t)}}
	}
	p := newPreview(filepath.Base(path), [][]timeline.LedID{leds}, frame, doc.Pattern.Duration(), cfg.FrameInterval(), nil)
	if doc.CurrentTime != nil {
		_ = p.session.Seek(*doc.CurrentTime)
	}

	if cfg.Preview.Audio && doc.Music.Filename != "" {
		player, err := audio.Open(document.MusicPath(cfg.MusicDir(), doc.Music.Filename))
		if err == nil {
			p.useAudio(player)
			return p, nil
		}
		debug.Log("tui", "previewing without audio: %v", err)
	}
	p.useClock()
	return p, nil
}

// loadScenarioPreview composes a scenario file against the data directory
func loadScenarioPreview(cfg *config.Config, path string) (*preview, error) {
	sc, err := document.LoadScenario(document.NewFileStore(""), path)
	if err != nil {
		return nil, err
	}
	composer := &show.Composer{
		Store:    document.NewFileStore(cfg.DataDir),
		MusicDir: cfg.MusicDir(),
		Probe:    audio.Duration,
		Cache:    merge.NewCache(cfg.CacheSize),
	}
	sh, err := composer.Compose(sc)
	if err != nil {
		return nil, err
	}
	leds := make([][]timeline.LedID, len(sh.Rows))
	for i, r := range sh.Rows {
		leds[i] = r.Leds
	}
	p := newPreview(filepath.Base(path), leds, sh.Frame, sh.Duration, cfg.FrameInterval(), nil)
	p.useClock()
	return p, nil
}

func (p *preview) tick() tea.Cmd {
	run := p.run
	return tea.Tick(p.interval, func(time.Time) tea.Msg {
		return frameMsg{run: run}
	})
}

// toggle plays or pauses. Playing returns the command scheduling the next frame.
func (p *preview) toggle() tea.Cmd {
	if p.playing {
		p.session.Pause()
		p.playing = false
		return nil
	}
	if p.player != nil {
		if p.session.Cursor() >= p.duration {
			_ = p.session.Seek(0)
		}
		p.session.Play()
		p.run++
	} else {
		p.run = p.session.Play()
	}
	p.playing = true
	return p.tick()
}

func (p *preview) stop() {
	p.playing = false
	p.session.Stop()
	if p.player != nil {
		_ = p.session.Seek(0)
	}
	p.view.MoveTo(0)
}

func (p *preview) seek(delta timeline.Milliseconds) error {
	t := p.session.Cursor() + delta
	if t > p.duration {
		t = p.duration
	}
	if err := p.session.Seek(t); err != nil {
		return err
	}
	p.follow()
	return nil
}

// advance handles a frame for run and schedules the next one while playing
func (p *preview) advance(run uint64) tea.Cmd {
	if !p.playing || run != p.run {
		return nil
	}
	if p.player != nil {
		if t := p.player.Poll(); t >= p.duration {
			p.session.Pause()
			p.playing = false
		}
	} else {
		tk, ok := p.clock.Tick(run)
		if !ok || tk.Final {
			p.playing = false
		}
	}
	p.follow()
	if !p.playing {
		return nil
	}
	return p.tick()
}

// follow scrolls the ruler so the cursor stays visible
func (p *preview) follow() {
	if _, ok := p.view.Column(p.session.Cursor(), 100); !ok {
		p.view.MoveTo(p.session.Cursor())
	}
}

func (p *preview) close() {
	p.session.UseIdle()
	if p.player != nil {
		if err := p.player.Close(); err != nil {
			debug.Log("tui", "closing player: %v", err)
		}
		p.player = nil
	}
}

func (p *preview) mode() string {
	switch p.session.Authority().(type) {
	case playback.AudioDriven:
		return "audio"
	case playback.ClockDriven:
		return "clock"
	}
	return "idle"
}

// render draws each row of LEDs in its current color followed by the ruler
func (p *preview) render(width int) string {
	var s strings.Builder
	cursor := p.session.Cursor()
	frames := p.frame(cursor)
	for i, f := range frames {
		s.WriteString(menuStyle.Render(f.Costume))
		s.WriteString("\n  ")
		for _, led := range p.leds[i] {
			c := f.Colors[led]
			if c == timeline.Off {
				s.WriteString(offStyle.Render("○"))
				continue
			}
			s.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(string(c))).Render("●"))
		}
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(p.ruler(width))
	s.WriteString("\n")

	state := "paused"
	if p.playing {
		state = "playing"
	}
	s.WriteString(statusStyle.Render(fmt.Sprintf("%s / %s  %s (%s)", cursor, p.duration, state, p.mode())))
	return s.String()
}

func (p *preview) ruler(width int) string {
	if width < 10 {
		width = 10
	}
	cells := []rune(strings.Repeat("─", width))
	if col, ok := p.view.Column(p.session.Cursor(), width); ok {
		if col >= width {
			col = width - 1
		}
		cells[col] = '┃'
	}
	return fmt.Sprintf("%s\n%s%s",
		rulerStyle.Render(string(cells)),
		labelStyle.Render(p.view.Start.String()),
		labelStyle.Render(fmt.Sprintf("%*s", width-len(p.view.Start.String()), p.view.End.String())))
}

func isSeekDisabled(err error) bool {
	return errors.Is(err, playback.ErrSeekDisabled)
}
