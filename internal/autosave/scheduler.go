// Package autosave provides the debounced save trigger that decides when an
// in-memory document history is persisted. One scheduler watches one
// document; saves are serialized, change detection is structural, and a
// failed save leaves the baseline untouched so the same diff retries on the
// next trigger.
package autosave

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"quill/internal/domain/models"
)

// DefaultDelay is the quiescence window: the silence required after the last
// observed mutation before a save is issued.
const DefaultDelay = 2000 * time.Millisecond

// SaveFunc persists a history snapshot. It receives a value decoded from the
// serialized snapshot, so later caller mutations cannot leak into an
// in-flight save.
type SaveFunc func(ctx context.Context, history models.DocumentHistory) error

// State is the scheduler's lifecycle position.
type State string

const (
	StateIdle    State = "idle"
	StatePending State = "pending" // edit observed, timer armed
	StateSaving  State = "saving"  // write in flight
	StateSaved   State = "saved"
	StateError   State = "error"
)

// Options configures a Scheduler.
type Options struct {
	// Delay overrides the quiescence window. Zero means DefaultDelay.
	Delay time.Duration
	// OnError receives errors from timer-initiated saves. Flush errors are
	// returned directly and do not go through OnError.
	OnError func(error)
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Scheduler debounces saves of a single watched document. Every observed
// mutation restarts the quiescence timer; once the timer fires the latest
// snapshot is written. Only one save is ever in flight; a mutation arriving
// during a save re-arms the timer after the save completes rather than
// issuing a parallel write.
type Scheduler struct {
	save    SaveFunc
	delay   time.Duration
	onError func(error)
	logger  *slog.Logger

	mu          sync.Mutex
	timer       *time.Timer
	snapshot    []byte // latest observed serialized history
	baseline    []byte // serialized form most recently durably saved
	state       State
	inFlight    bool
	rearm       bool
	saveDone    chan struct{} // closed when the in-flight save completes
	closed      bool
	lastSavedAt time.Time
	lastErr     error
}

// New creates a scheduler around a save callback. The caller owns the
// scheduler's lifecycle and must Close it when the watched document goes
// away.
func New(save SaveFunc, opts Options) *Scheduler {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Scheduler{
		save:    save,
		delay:   opts.Delay,
		onError: opts.OnError,
		logger:  opts.Logger,
		state:   StateIdle,
	}
}

// Observe records the current in-memory history. If its serialized form
// differs from the last durably saved baseline the quiescence timer is
// (re)armed; structurally equal re-renders do not trigger anything.
func (s *Scheduler) Observe(history models.DocumentHistory) {
	snap, err := json.Marshal(history)
	if err != nil {
		// models.DocumentHistory has no unmarshalable fields; this is a
		// programming error, not a runtime condition.
		s.logger.Error("autosave snapshot encode failed", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.snapshot = snap
	if bytes.Equal(snap, s.baseline) {
		return
	}
	if s.inFlight {
		// Do not cancel the in-flight save; queue a re-check for when it
		// resolves.
		s.rearm = true
		return
	}
	s.armLocked()
}

// Flush cancels any pending timer and saves immediately. It still skips the
// write when nothing changed since the last successful save. If a save is
// already in flight, Flush waits for it and then re-checks rather than
// starting a second write.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	for s.inFlight {
		done := s.saveDone
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		s.mu.Lock()
	}
	s.mu.Unlock()
	return s.runSave(ctx)
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastSavedAt returns when the last successful save completed, zero if none.
func (s *Scheduler) LastSavedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSavedAt
}

// Err returns the error from the most recent save attempt, nil after a
// success.
func (s *Scheduler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Close cancels the pending timer and detaches the scheduler. An in-flight
// save runs to completion, but no new save starts and no timer callback does
// work after Close.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// armLocked restarts the quiescence timer. Caller holds s.mu.
func (s *Scheduler) armLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.state = StatePending
	s.timer = time.AfterFunc(s.delay, s.timerFired)
}

func (s *Scheduler) timerFired() {
	if err := s.runSave(context.Background()); err != nil && s.onError != nil {
		s.onError(err)
	}
}

// runSave performs one save attempt against the latest snapshot. It is the
// only path that writes, which is what serializes saves per document.
func (s *Scheduler) runSave(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	for s.inFlight {
		// A flush raced the timer; whoever got here second waits and then
		// re-evaluates against the post-save baseline.
		done := s.saveDone
		s.mu.Unlock()
		<-done
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return nil
		}
	}

	snap := s.snapshot
	if bytes.Equal(snap, s.baseline) {
		if s.state == StatePending {
			s.state = StateIdle
		}
		s.mu.Unlock()
		return nil
	}

	var history models.DocumentHistory
	if err := json.Unmarshal(snap, &history); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("decode autosave snapshot: %w", err)
	}

	s.inFlight = true
	s.state = StateSaving
	done := make(chan struct{})
	s.saveDone = done
	s.mu.Unlock()

	err := s.save(ctx, history)

	s.mu.Lock()
	s.inFlight = false
	close(done)
	if err != nil {
		// Baseline stays put so the same diff is retried on the next trigger.
		s.state = StateError
		s.lastErr = err
		s.logger.Warn("autosave failed", "error", err)
	} else {
		s.baseline = snap
		s.lastSavedAt = time.Now()
		s.state = StateSaved
		s.lastErr = nil
	}
	if s.rearm {
		s.rearm = false
		if !s.closed && !bytes.Equal(s.snapshot, s.baseline) {
			s.armLocked()
		}
	}
	s.mu.Unlock()
	return err
}
