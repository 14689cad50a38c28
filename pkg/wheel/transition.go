package wheel

import (
	"sync"
	"time"
)

// DefaultDuration is the length of every chart transition.
const DefaultDuration = 500 * time.Millisecond

// Clock supplies the current time to the scene.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock returns a clock stopped at t.
func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// EaseCubicInOut is the easing applied to all transitions.
func EaseCubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// progress returns the eased completion of a transition started at start.
func progress(start, now time.Time, dur time.Duration) float64 {
	if dur <= 0 {
		return 1
	}
	t := float64(now.Sub(start)) / float64(dur)
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return EaseCubicInOut(t)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// nearestTurn shifts from by whole turns so that rotating to to takes the
// short way round.
func nearestTurn(from, to float64) float64 {
	for to-from > 180 {
		from += 360
	}
	for from-to > 180 {
		from -= 360
	}
	return from
}
