package audio

import (
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"github.com/james-see/ledcostume/pkg/debug"
	"github.com/james-see/ledcostume/pkg/timeline"
)

// output is where a Player sends its stream
type output interface {
	Play(s beep.Streamer, format beep.Format) error
	Lock()
	Unlock()
}

// speakerOutput plays through the system speaker, initialized on first use
type speakerOutput struct {
	once sync.Once
	rate beep.SampleRate
	err  error
}

var defaultSpeaker = &speakerOutput{}

func (o *speakerOutput) Play(s beep.Streamer, format beep.Format) error {
	o.once.Do(func() {
		o.rate = format.SampleRate
		o.err = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
	})
	if o.err != nil {
		return o.err
	}
	if format.SampleRate != o.rate {
		s = beep.Resample(4, format.SampleRate, o.rate, s)
	}
	speaker.Play(s)
	return nil
}

func (o *speakerOutput) Lock()   { speaker.Lock() }
func (o *speakerOutput) Unlock() { speaker.Unlock() }

// Player is an audio transport for a single track. Position changes caused by
// playback are reported when the owner calls Poll; seeks are reported at once.
type Player struct {
	stream beep.StreamSeekCloser
	format beep.Format
	ctrl   *beep.Ctrl
	out    output

	started  bool
	reported timeline.Milliseconds
	cbs      []func(timeline.Milliseconds)
}

// Open decodes the track at path for playback through the speaker
func Open(path string) (*Player, error) {
	stream, format, err := Decode(path)
	if err != nil {
		return nil, &MetadataError{Path: path, Err: err}
	}
	return newPlayer(stream, format, defaultSpeaker), nil
}

func newPlayer(stream beep.StreamSeekCloser, format beep.Format, out output) *Player {
	return &Player{
		stream: stream,
		format: format,
		ctrl:   &beep.Ctrl{Streamer: stream, Paused: true},
		out:    out,
	}
}

// Duration returns the track length
func (p *Player) Duration() timeline.Milliseconds {
	return timeline.Milliseconds(p.format.SampleRate.D(p.stream.Len()).Milliseconds())
}

// CurrentTime returns the playhead position
func (p *Player) CurrentTime() timeline.Milliseconds {
	p.out.Lock()
	pos := p.stream.Position()
	p.out.Unlock()
	return timeline.Milliseconds(p.format.SampleRate.D(pos).Milliseconds())
}

// SetTime moves the playhead, clamped to the track, and reports the new position
func (p *Player) SetTime(t timeline.Milliseconds) {
	if t < 0 {
		t = 0
	}
	n := p.format.SampleRate.N(time.Duration(t) * time.Millisecond)
	if n > p.stream.Len() {
		n = p.stream.Len()
	}
	p.out.Lock()
	err := p.stream.Seek(n)
	p.out.Unlock()
	if err != nil {
		return
	}
	p.notify(p.CurrentTime())
}

// OnPositionChange registers fn for every reported position change
func (p *Player) OnPositionChange(fn func(timeline.Milliseconds)) {
	p.cbs = append(p.cbs, fn)
}

// Play starts or resumes playback
func (p *Player) Play() {
	if !p.started {
		if err := p.out.Play(p.ctrl, p.format); err != nil {
			debug.Log("audio", "failed to start output: %v", err)
			return
		}
		p.started = true
	}
	p.out.Lock()
	p.ctrl.Paused = false
	p.out.Unlock()
}

// Pause halts playback keeping the position
func (p *Player) Pause() {
	p.out.Lock()
	p.ctrl.Paused = true
	p.out.Unlock()
}

// Playing reports whether the track is audible
func (p *Player) Playing() bool {
	p.out.Lock()
	defer p.out.Unlock()
	return p.started && !p.ctrl.Paused
}

// Poll reports the playhead to subscribers if it moved since the last report.
// The owner calls it once per frame.
func (p *Player) Poll() timeline.Milliseconds {
	cur := p.CurrentTime()
	if cur != p.reported {
		p.notify(cur)
	}
	return cur
}

func (p *Player) notify(t timeline.Milliseconds) {
	p.reported = t
	for _, fn := range p.cbs {
		fn(t)
	}
}

// Close stops playback and releases the decoder
func (p *Player) Close() error {
	p.Pause()
	p.out.Lock()
	p.ctrl.Streamer = nil
	p.out.Unlock()
	return p.stream.Close()
}
