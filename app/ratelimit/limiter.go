// Package ratelimit implements a sliding-window admission limiter. Callers
// over the limit are suspended until a slot frees up; nothing is dropped.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultWindow = time.Minute
	DefaultBuffer = 100 * time.Millisecond
)

type Limiter struct {
	max    int
	window time.Duration
	buffer time.Duration

	// OnWait is called before each suspension with the wait duration.
	OnWait func(time.Duration)

	mu     sync.Mutex
	stamps []time.Time
	now    func() time.Time
}

// New returns a limiter admitting at most requestsPerMinute calls in any
// one-minute window. A non-positive value disables limiting.
func New(requestsPerMinute int) *Limiter {
	return NewWindow(requestsPerMinute, DefaultWindow, DefaultBuffer)
}

func NewWindow(max int, window, buffer time.Duration) *Limiter {
	return &Limiter{
		max:    max,
		window: window,
		buffer: buffer,
		now:    time.Now,
	}
}

// Admit blocks until the call fits in the window, then records it. It
// returns the context error if ctx ends first, without recording anything.
func (l *Limiter) Admit(ctx context.Context) error {
	if l.max <= 0 {
		return ctx.Err()
	}

	for {
		wait, ok := l.tryAdmit()
		if ok {
			return nil
		}

		if l.OnWait != nil {
			l.OnWait(wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *Limiter) tryAdmit() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	if len(l.stamps) < l.max {
		l.stamps = append(l.stamps, now)
		return 0, true
	}

	oldest := l.stamps[0]
	return l.window - now.Sub(oldest) + l.buffer, false
}

func (l *Limiter) prune(now time.Time) {
	keep := 0
	for keep < len(l.stamps) && now.Sub(l.stamps[keep]) >= l.window {
		keep++
	}
	if keep > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[keep:]...)
	}
}

// InWindow reports how many admissions are currently inside the window.
func (l *Limiter) InWindow() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(l.now())
	return len(l.stamps)
}

// Reset forgets every admission, so the next calls are admitted at once.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stamps = nil
}
