package watcher

import (
	"sync"
	"time"
)

// Debouncer collapses bursts of filesystem events into a single callback.
// Every Trigger pushes the fire time out by delay; maxDelay caps how long a
// sustained burst can postpone the callback.
type Debouncer struct {
	delay    time.Duration
	maxDelay time.Duration
	fire     func()

	mu       sync.Mutex
	timer    *time.Timer
	deadline time.Time
}

// NewDebouncer creates a debouncer invoking fire from a timer goroutine.
func NewDebouncer(delay, maxDelay time.Duration, fire func()) *Debouncer {
	return &Debouncer{
		delay:    delay,
		maxDelay: maxDelay,
		fire:     fire,
	}
}

// Trigger records an event. The callback fires delay after the last trigger,
// or at the max-delay deadline of the burst, whichever comes first.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	if d.timer == nil {
		d.deadline = now.Add(d.maxDelay)
	}

	wait := d.delay
	if remaining := time.Until(d.deadline); d.timer != nil && remaining < wait {
		wait = max(remaining, 0)
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(wait, func() {
		d.mu.Lock()
		d.timer = nil
		d.mu.Unlock()
		d.fire()
	})
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
