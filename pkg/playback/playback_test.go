package playback

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/james-see/ledcostume/pkg/timeline"
)

// fakeNow is a manually advanced wall clock
type fakeNow struct {
	t time.Time
}

func (f *fakeNow) Now() time.Time { return f.t }

func (f *fakeNow) Advance(ms int) { f.t = f.t.Add(time.Duration(ms) * time.Millisecond) }

func newFakeNow() *fakeNow {
	return &fakeNow{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// mockTransport implements Transport for testing
type mockTransport struct {
	pos     timeline.Milliseconds
	cbs     []func(timeline.Milliseconds)
	playing bool
	seeks   []timeline.Milliseconds
}

func (m *mockTransport) CurrentTime() timeline.Milliseconds { return m.pos }
func (m *mockTransport) SetTime(t timeline.Milliseconds) {
	m.seeks = append(m.seeks, t)
	m.move(t)
}
func (m *mockTransport) OnPositionChange(fn func(timeline.Milliseconds)) {
	m.cbs = append(m.cbs, fn)
}
func (m *mockTransport) Play()  { m.playing = true }
func (m *mockTransport) Pause() { m.playing = false }

func (m *mockTransport) move(t timeline.Milliseconds) {
	m.pos = t
	for _, cb := range m.cbs {
		cb(t)
	}
}

func TestClockMonotonicAndBounded(t *testing.T) {
	now := newFakeNow()
	c := NewClock(now.Now)

	var got []Tick
	c.Subscribe(func(tk Tick) { got = append(got, tk) })

	run := c.Start(1000)
	for _, step := range []int{16, 16, 300, 0, 400, 500, 16} {
		now.Advance(step)
		c.Tick(run)
	}

	if len(got) == 0 {
		t.Fatal("no ticks delivered")
	}
	for i := 1; i < len(got); i++ {
		if got[i].Time < got[i-1].Time {
			t.Errorf("tick %d time %d < previous %d", i, got[i].Time, got[i-1].Time)
		}
	}
	last := got[len(got)-1]
	if last.Time != 1000 || !last.Final {
		t.Errorf("last tick = %+v, want final tick at 1000", last)
	}
	for _, tk := range got {
		if tk.Time > 1000 {
			t.Errorf("tick time %d exceeds total", tk.Time)
		}
	}
	if c.Running() {
		t.Error("clock should stop after reaching total")
	}

	delivered := len(got)
	now.Advance(100)
	if _, ok := c.Tick(run); ok {
		t.Error("Tick() after final should report false")
	}
	if len(got) != delivered {
		t.Error("no ticks should be delivered after the final tick")
	}
}

func TestClockIgnoresBackwardsWallClock(t *testing.T) {
	now := newFakeNow()
	c := NewClock(now.Now)
	run := c.Start(1000)

	now.Advance(200)
	first, _ := c.Tick(run)
	now.Advance(-150)
	second, _ := c.Tick(run)

	if second.Time < first.Time {
		t.Errorf("virtual time went backwards: %d -> %d", first.Time, second.Time)
	}
}

func TestClockStopCancelsTicks(t *testing.T) {
	now := newFakeNow()
	c := NewClock(now.Now)
	count := 0
	c.Subscribe(func(Tick) { count++ })

	run := c.Start(1000)
	now.Advance(10)
	c.Tick(run)
	c.Stop()
	c.Stop()
	now.Advance(10)
	if _, ok := c.Tick(run); ok {
		t.Error("Tick() after Stop() should report false")
	}
	if count != 1 {
		t.Errorf("delivered %d ticks, want 1", count)
	}
}

func TestClockRestartDropsStaleRun(t *testing.T) {
	now := newFakeNow()
	c := NewClock(now.Now)
	var times []timeline.Milliseconds
	c.Subscribe(func(tk Tick) { times = append(times, tk.Time) })

	old := c.Start(1000)
	now.Advance(500)
	c.Tick(old)

	fresh := c.Start(1000)
	if fresh == old {
		t.Fatal("Start() should return a new generation")
	}
	now.Advance(20)
	if _, ok := c.Tick(old); ok {
		t.Error("stale run tick should be dropped")
	}
	c.Tick(fresh)

	if !reflect.DeepEqual(times, []timeline.Milliseconds{500, 20}) {
		t.Errorf("times = %v, want [500 20]", times)
	}
}

func TestClockSubscriberOrderAndStopDuringDelivery(t *testing.T) {
	tests := []struct {
		name    string
		advance int
		final   bool
	}{
		{"mid run", 10, false},
		{"final tick", 5000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := newFakeNow()
			c := NewClock(now.Now)
			var order []string
			c.Subscribe(func(Tick) { order = append(order, "first"); c.Stop() })
			c.Subscribe(func(Tick) { order = append(order, "second") })

			run := c.Start(1000)
			now.Advance(tt.advance)
			tk, ok := c.Tick(run)
			if !ok || tk.Final != tt.final {
				t.Fatalf("Tick() = %+v, %v", tk, ok)
			}
			if !reflect.DeepEqual(order, []string{"first"}) {
				t.Errorf("order = %v, want [first]", order)
			}
		})
	}
}

func TestClockFinalTickReachesEverySubscriber(t *testing.T) {
	now := newFakeNow()
	c := NewClock(now.Now)
	count := 0
	c.Subscribe(func(Tick) { count++ })
	c.Subscribe(func(Tick) { count++ })

	run := c.Start(100)
	now.Advance(500)
	if tk, _ := c.Tick(run); !tk.Final {
		t.Fatalf("tick = %+v, want final", tk)
	}
	if count != 2 {
		t.Errorf("final tick delivered %d times, want 2", count)
	}
}

func TestClockUnsubscribe(t *testing.T) {
	now := newFakeNow()
	c := NewClock(now.Now)
	count := 0
	cancel := c.Subscribe(func(Tick) { count++ })
	cancel()

	run := c.Start(100)
	now.Advance(10)
	c.Tick(run)
	if count != 0 {
		t.Errorf("delivered %d ticks after unsubscribe, want 0", count)
	}
}

func TestClockRunReachesTotal(t *testing.T) {
	c := NewClock(nil)
	var last Tick
	c.Subscribe(func(tk Tick) { last = tk })

	c.Start(30)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.Run(ctx, time.Millisecond); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !last.Final || last.Time != 30 {
		t.Errorf("last tick = %+v, want final at 30", last)
	}
}

func TestClockRunCanceled(t *testing.T) {
	c := NewClock(nil)
	c.Start(timeline.Milliseconds(time.Hour.Milliseconds()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Run(ctx, time.Millisecond); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if c.Running() {
		t.Error("Run() should stop the clock when canceled")
	}
}

func TestSessionAudioDrivesCursor(t *testing.T) {
	s := NewSession()
	tr := &mockTransport{pos: 250}
	var cursors []timeline.Milliseconds
	s.OnCursor(func(ms timeline.Milliseconds) { cursors = append(cursors, ms) })

	s.UseAudio(tr)
	if _, ok := s.Authority().(AudioDriven); !ok {
		t.Fatalf("Authority() = %T, want AudioDriven", s.Authority())
	}
	if s.Cursor() != 250 {
		t.Errorf("Cursor() = %d, want 250", s.Cursor())
	}

	tr.move(400)
	if s.Cursor() != 400 {
		t.Errorf("Cursor() after transport progress = %d, want 400", s.Cursor())
	}

	if err := s.Seek(1000); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if !reflect.DeepEqual(tr.seeks, []timeline.Milliseconds{1000}) {
		t.Errorf("transport seeks = %v, want [1000]", tr.seeks)
	}
	if s.Cursor() != 1000 {
		t.Errorf("Cursor() after seek = %d, want 1000", s.Cursor())
	}

	s.Play()
	if !tr.playing {
		t.Error("Play() should start the transport")
	}
	s.Pause()
	if tr.playing {
		t.Error("Pause() should pause the transport")
	}

	if !reflect.DeepEqual(cursors, []timeline.Milliseconds{250, 400, 1000}) {
		t.Errorf("cursor updates = %v, want [250 400 1000]", cursors)
	}
}

func TestSessionIgnoresTransportAfterSwitch(t *testing.T) {
	s := NewSession()
	tr := &mockTransport{}
	s.UseAudio(tr)
	s.UseIdle()

	tr.move(999)
	if s.Cursor() != 0 {
		t.Errorf("Cursor() = %d, want 0 after leaving audio mode", s.Cursor())
	}
}

func TestSessionClockDrivesCursorAndDisablesSeek(t *testing.T) {
	now := newFakeNow()
	c := NewClock(now.Now)
	s := NewSession()
	s.UseClock(c, 1000)

	run := s.Play()
	now.Advance(300)
	c.Tick(run)
	if s.Cursor() != 300 {
		t.Errorf("Cursor() = %d, want 300", s.Cursor())
	}

	if err := s.Seek(10); !errors.Is(err, ErrSeekDisabled) {
		t.Errorf("Seek() error = %v, want ErrSeekDisabled", err)
	}
	if s.Cursor() != 300 {
		t.Errorf("Cursor() after rejected seek = %d, want 300", s.Cursor())
	}
}

func TestSessionClockPauseResumes(t *testing.T) {
	now := newFakeNow()
	c := NewClock(now.Now)
	s := NewSession()
	s.UseClock(c, 1000)

	run := s.Play()
	now.Advance(400)
	c.Tick(run)
	s.Pause()
	if s.Playing() {
		t.Error("Playing() should be false after Pause()")
	}

	now.Advance(5000)
	run = s.Play()
	now.Advance(100)
	c.Tick(run)
	if s.Cursor() != 500 {
		t.Errorf("Cursor() after resume = %d, want 500", s.Cursor())
	}

	now.Advance(10000)
	tk, _ := c.Tick(run)
	if !tk.Final || s.Cursor() != 1000 {
		t.Errorf("Cursor() at end = %d (final %v), want 1000", s.Cursor(), tk.Final)
	}

	run = s.Play()
	if s.Cursor() != 0 {
		t.Errorf("Play() after the end should rewind, cursor = %d", s.Cursor())
	}
	now.Advance(50)
	c.Tick(run)
	if s.Cursor() != 50 {
		t.Errorf("Cursor() = %d, want 50", s.Cursor())
	}

	s.Stop()
	if s.Cursor() != 0 || c.Running() {
		t.Error("Stop() should rewind and stop the clock")
	}
}

func TestSessionIdleSeekMovesCursor(t *testing.T) {
	s := NewSession()
	if _, ok := s.Authority().(Idle); !ok {
		t.Fatalf("new session authority = %T, want Idle", s.Authority())
	}
	if err := s.Seek(-5); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if s.Cursor() != 0 {
		t.Errorf("Cursor() = %d, want 0 for negative seek", s.Cursor())
	}
	if err := s.Seek(1234); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if s.Cursor() != 1234 {
		t.Errorf("Cursor() = %d, want 1234", s.Cursor())
	}
}

func TestSessionSwitchingStopsClock(t *testing.T) {
	now := newFakeNow()
	c := NewClock(now.Now)
	s := NewSession()
	s.UseClock(c, 1000)
	run := s.Play()

	s.UseAudio(&mockTransport{pos: 10})
	if c.Running() {
		t.Error("switching to audio should stop the clock")
	}
	now.Advance(100)
	if _, ok := c.Tick(run); ok {
		t.Error("stopped clock should not tick")
	}
	if s.Cursor() != 10 {
		t.Errorf("Cursor() = %d, want 10", s.Cursor())
	}
}
