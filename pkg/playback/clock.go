// Package playback provides the preview clock and the time synchronization
// between an audio transport, the clock and the timeline cursor
package playback

import (
	"context"
	"time"

	"github.com/james-see/ledcostume/pkg/timeline"
)

// DefaultFrameInterval is one display refresh at 60Hz
const DefaultFrameInterval = time.Second / 60

// Tick is one clock update
type Tick struct {
	Run   uint64                // run generation that produced the tick
	Time  timeline.Milliseconds // virtual time since Start
	Final bool                  // the run reached its total duration
}

// Clock is a cooperative preview clock. It does not schedule itself: its owner
// calls Tick once per frame (from a UI update loop or Run). A Clock is owned by
// a single goroutine and is not safe for concurrent use.
type Clock struct {
	now func() time.Time

	origin  time.Time
	virtual timeline.Milliseconds
	total   timeline.Milliseconds
	running bool
	// stopped is set by Stop; a run that reaches its total is not stopped
	stopped bool
	run     uint64

	subs   []*subscriber
	nextID int
}

type subscriber struct {
	id int
	fn func(Tick)
}

// NewClock creates a stopped clock. A nil now uses time.Now.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Subscribe registers fn for every delivered tick. Delivery follows registration
// order. The returned function removes the subscription.
func (c *Clock) Subscribe(fn func(Tick)) (cancel func()) {
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, &subscriber{id: id, fn: fn})
	return func() {
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// Start begins a new run lasting total, stopping any active run first.
// It returns the run generation to pass to Tick.
func (c *Clock) Start(total timeline.Milliseconds) uint64 {
	c.Stop()
	if total < 0 {
		total = 0
	}
	c.run++
	c.origin = c.now()
	c.virtual = 0
	c.total = total
	c.running = true
	c.stopped = false
	return c.run
}

// Stop ends the active run. Ticks scheduled for it are dropped. Stop is idempotent.
func (c *Clock) Stop() {
	c.running = false
	c.stopped = true
}

// Tick advances the clock for run and delivers the new time to subscribers.
// It returns false without delivering when run is stale or the clock is stopped.
// When the total duration is reached the clock stops after delivering a final tick.
func (c *Clock) Tick(run uint64) (Tick, bool) {
	if !c.running || run != c.run {
		return Tick{}, false
	}

	elapsed := timeline.Milliseconds(c.now().Sub(c.origin) / time.Millisecond)
	if elapsed < c.virtual {
		elapsed = c.virtual
	}
	final := false
	if elapsed >= c.total {
		elapsed = c.total
		final = true
	}
	c.virtual = elapsed
	if final {
		c.running = false
	}

	tk := Tick{Run: run, Time: elapsed, Final: final}
	subs := append([]*subscriber(nil), c.subs...)
	for _, s := range subs {
		// a subscriber may stop or restart the clock mid-delivery
		if c.run != run || c.stopped {
			break
		}
		s.fn(tk)
	}
	return tk, true
}

// Run drives ticks for the current run every interval until it finishes,
// is stopped, or ctx is done. It must be called from the clock's owner.
func (c *Clock) Run(ctx context.Context, interval time.Duration) error {
	if !c.running {
		return nil
	}
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	run := c.run

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if c.run == run {
				c.Stop()
			}
			return ctx.Err()
		case <-ticker.C:
			if _, ok := c.Tick(run); !ok || !c.running || c.run != run {
				return nil
			}
		}
	}
}

// Running reports whether a run is active
func (c *Clock) Running() bool {
	return c.running
}

// Time returns the last delivered virtual time
func (c *Clock) Time() timeline.Milliseconds {
	return c.virtual
}

// Total returns the duration of the current or last run
func (c *Clock) Total() timeline.Milliseconds {
	return c.total
}

// Generation returns the current run generation
func (c *Clock) Generation() uint64 {
	return c.run
}
