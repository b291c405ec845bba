package form

import (
	"sync"
	"time"
)

// DefaultDebounceDelay is used when a Form is created without a Debouncer.
const DefaultDebounceDelay = 300 * time.Millisecond

// Debouncer runs only the last of a burst of calls, after delay has passed
// without a new call.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	done  chan struct{}
	gen   uint64
}

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	return &Debouncer{delay: delay}
}

// Do schedules fn, cancelling any call still pending. The returned channel
// is closed once fn has returned or the call was superseded or cancelled.
func (d *Debouncer) Do(fn func()) <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.gen++
	gen := d.gen
	done := make(chan struct{})
	d.done = done
	d.timer = time.AfterFunc(d.delay, func() {
		defer close(done)
		d.mu.Lock()
		current := gen == d.gen
		if current {
			d.timer = nil
			d.done = nil
		}
		d.mu.Unlock()
		if current {
			fn()
		}
	})
	return done
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.gen++
}

// stopLocked stops the pending timer. If it had not fired, its callback will
// never run, so its done channel is closed here.
func (d *Debouncer) stopLocked() {
	if d.timer != nil && d.timer.Stop() {
		close(d.done)
	}
	d.timer = nil
	d.done = nil
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
