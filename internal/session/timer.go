package session

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultTickInterval is the elapsed-time display resolution.
const DefaultTickInterval = time.Second

// Timer advances an elapsed-time counter once per tick until stopped.
// It drives display only; answer timing uses timestamps.
type Timer struct {
	interval time.Duration
	ticks    atomic.Int64
	cancel   context.CancelFunc
	done     chan struct{}
}

func startTimer(ctx context.Context, ticks <-chan time.Time, interval time.Duration, release func()) *Timer {
	ctx, cancel := context.WithCancel(ctx)
	t := &Timer{
		interval: interval,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		if release != nil {
			defer release()
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				t.ticks.Add(1)
			}
		}
	}()
	return t
}

// Elapsed returns ticks * interval.
func (t *Timer) Elapsed() time.Duration {
	return time.Duration(t.ticks.Load()) * t.interval
}

// Stop cancels the timer and waits for its goroutine to exit.
// Stop is idempotent.
func (t *Timer) Stop() {
	t.cancel()
	<-t.done
}

// Done is closed once the timer goroutine has exited.
func (t *Timer) Done() <-chan struct{} {
	return t.done
}

// StartTimer starts the elapsed-time ticker for an in-progress session.
// The ticker stops when ctx is cancelled, the session completes, or Close is
// called. Starting an already running timer is a no-op.
func (s *Session) StartTimer(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	if err := s.attachTimer(ctx, ticker.C, interval, ticker.Stop); err != nil {
		ticker.Stop()
		return err
	}
	return nil
}

func (s *Session) attachTimer(ctx context.Context, ticks <-chan time.Time, interval time.Duration, release func()) error {
	if s.closed || s.phase != PhaseInProgress {
		return ErrInvalidPhase
	}
	if s.timer != nil {
		select {
		case <-s.timer.Done():
		default:
			return nil
		}
	}
	s.timer = startTimer(ctx, ticks, interval, release)
	return nil
}

// Elapsed returns the time counted by the session timer, or zero when no
// timer was started.
func (s *Session) Elapsed() time.Duration {
	if s.timer == nil {
		return 0
	}
	return s.timer.Elapsed()
}

func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
	}
}
