package clock

import (
	"sync"
	"time"
)

// Fake is a manually advanced clock. Advance moves time forward and delivers
// one tick to every open ticker whose interval has elapsed, synchronously,
// so tests observe timer transitions deterministically.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) NewTicker(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{
		clock:    f,
		interval: d,
		next:     f.now.Add(d),
		ch:       make(chan time.Time, 1),
	}
	f.tickers = append(f.tickers, t)
	return t
}

// Advance moves the clock forward in ticker-interval steps, firing due ticks
// along the way. Delivery is non-blocking: a consumer that has fallen behind
// misses intermediate ticks, which matches real ticker semantics and keeps
// Advance safe to call after the consumer has stopped reading.
func (f *Fake) Advance(d time.Duration) {
	target := f.Now().Add(d)
	for {
		t := f.earliestDue(target)
		if t == nil {
			break
		}
		f.mu.Lock()
		f.now = t.next
		t.next = t.next.Add(t.interval)
		ch := t.ch
		now := f.now
		f.mu.Unlock()
		select {
		case ch <- now:
		default:
		}
	}
	f.mu.Lock()
	if f.now.Before(target) {
		f.now = target
	}
	f.mu.Unlock()
}

func (f *Fake) earliestDue(target time.Time) *fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due *fakeTicker
	for _, t := range f.tickers {
		if t.stopped || t.next.After(target) {
			continue
		}
		if due == nil || t.next.Before(due.next) {
			due = t
		}
	}
	return due
}

type fakeTicker struct {
	clock    *Fake
	interval time.Duration
	next     time.Time
	ch       chan time.Time
	stopped  bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.stopped = true
}
