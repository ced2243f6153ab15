// Package clock abstracts "current time" so that reminder planning and the
// local gateway can be driven by a fake clock in tests.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// System returns a clock backed by time.Now in the given location.
// A nil location means time.Local.
func System(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return systemClock{loc: loc}
}

type systemClock struct{ loc *time.Location }

func (c systemClock) Now() time.Time { return time.Now().In(c.loc) }

// Fake is a settable clock for tests. The zero value starts at the zero time;
// use NewFake to start somewhere sensible.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

func NewFake(now time.Time) *Fake { return &Fake{now: now} }

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
