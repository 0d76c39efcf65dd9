package playback

import (
	"errors"

	"github.com/james-see/ledcostume/pkg/timeline"
)

// ErrSeekDisabled is returned when seeking while the preview clock is the time authority
var ErrSeekDisabled = errors.New("seek is disabled while the playback clock drives time")

// Transport is the audio player contract consumed by a Session.
// Implementations report every position change (progress, seek, scrub)
// through the OnPositionChange callback, including changes caused by SetTime.
type Transport interface {
	CurrentTime() timeline.Milliseconds
	SetTime(t timeline.Milliseconds)
	OnPositionChange(fn func(t timeline.Milliseconds))
	Play()
	Pause()
}

// Authority identifies which source owns the current time.
// It is one of Idle, AudioDriven or ClockDriven.
type Authority interface {
	authority()
}

// Idle means nothing is driving time; ruler clicks move the cursor directly
type Idle struct{}

// AudioDriven means the transport's playhead is the time authority
type AudioDriven struct {
	Transport Transport
}

// ClockDriven means the preview clock is the time authority
type ClockDriven struct {
	Clock *Clock
	Total timeline.Milliseconds
}

func (Idle) authority()        {}
func (AudioDriven) authority() {}
func (ClockDriven) authority() {}

// Session keeps the timeline cursor consistent with whichever source owns time.
// It is owned by a single goroutine, like the Clock it may drive.
type Session struct {
	authority Authority
	gen       uint64
	cursor    timeline.Milliseconds
	// resume position for clock-driven preview; the clock itself always starts at 0
	offset      timeline.Milliseconds
	listeners   []func(timeline.Milliseconds)
	unsubscribe func()
}

// NewSession creates an idle session with the cursor at 0
func NewSession() *Session {
	return &Session{authority: Idle{}}
}

// Authority returns the current time authority
func (s *Session) Authority() Authority {
	return s.authority
}

// Cursor returns the current authoritative time
func (s *Session) Cursor() timeline.Milliseconds {
	return s.cursor
}

// OnCursor registers fn to receive every cursor change, in registration order
func (s *Session) OnCursor(fn func(timeline.Milliseconds)) {
	s.listeners = append(s.listeners, fn)
}

func (s *Session) setCursor(t timeline.Milliseconds) {
	s.cursor = t
	for _, fn := range s.listeners {
		fn(t)
	}
}

// release detaches the session from its current authority
func (s *Session) release() {
	switch a := s.authority.(type) {
	case ClockDriven:
		a.Clock.Stop()
	case AudioDriven:
		a.Transport.Pause()
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.gen++
}

// UseIdle stops any clock or transport and leaves the cursor where it is
func (s *Session) UseIdle() {
	s.release()
	s.authority = Idle{}
}

// UseAudio makes the transport the time authority. Its position changes
// drive the cursor until the session switches away.
func (s *Session) UseAudio(t Transport) {
	s.release()
	gen := s.gen
	s.authority = AudioDriven{Transport: t}
	t.OnPositionChange(func(ms timeline.Milliseconds) {
		// transports cannot unsubscribe; ignore callbacks from a previous mode
		if s.gen != gen {
			return
		}
		s.setCursor(ms)
	})
	s.setCursor(t.CurrentTime())
}

// UseClock makes the clock the time authority for a preview of length total.
// Playback resumes from the current cursor.
func (s *Session) UseClock(c *Clock, total timeline.Milliseconds) {
	s.release()
	gen := s.gen
	s.authority = ClockDriven{Clock: c, Total: total}
	if s.cursor > total {
		s.cursor = total
	}
	s.offset = s.cursor
	s.unsubscribe = c.Subscribe(func(tk Tick) {
		if s.gen != gen {
			return
		}
		s.setCursor(s.offset + tk.Time)
		if tk.Final {
			s.offset = s.cursor
		}
	})
}

// Play starts the current authority. For a clock it returns the run
// generation the owner must pass to Clock.Tick.
func (s *Session) Play() uint64 {
	switch a := s.authority.(type) {
	case AudioDriven:
		a.Transport.Play()
	case ClockDriven:
		if a.Clock.Running() {
			return a.Clock.Generation()
		}
		if s.offset >= a.Total {
			s.offset = 0
			s.setCursor(0)
		}
		return a.Clock.Start(a.Total - s.offset)
	}
	return 0
}

// Pause halts playback keeping the cursor so Play resumes from it
func (s *Session) Pause() {
	switch a := s.authority.(type) {
	case AudioDriven:
		a.Transport.Pause()
	case ClockDriven:
		a.Clock.Stop()
		s.offset = s.cursor
	}
}

// Playing reports whether the clock is running. Transports do not expose
// their state, so audio-driven sessions report false.
func (s *Session) Playing() bool {
	if a, ok := s.authority.(ClockDriven); ok {
		return a.Clock.Running()
	}
	return false
}

// Stop halts a clock-driven preview and rewinds it to 0
func (s *Session) Stop() {
	if a, ok := s.authority.(ClockDriven); ok {
		a.Clock.Stop()
		s.offset = 0
		s.setCursor(0)
		return
	}
	s.Pause()
}

// Seek handles an explicit click or drag on the timeline ruler.
// With audio the transport is told to seek and reports back the new position;
// with the clock seeking is disabled; when idle the cursor moves directly.
func (s *Session) Seek(t timeline.Milliseconds) error {
	if t < 0 {
		t = 0
	}
	switch a := s.authority.(type) {
	case AudioDriven:
		a.Transport.SetTime(t)
		if cur := a.Transport.CurrentTime(); cur != s.cursor {
			s.setCursor(cur)
		}
	case ClockDriven:
		return ErrSeekDisabled
	default:
		s.setCursor(t)
	}
	return nil
}
