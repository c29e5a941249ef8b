// Package scheduler drives periodic and on-demand synchronization cycles,
// gated on the identity provider. While nobody is signed in the scheduler
// stays disabled and runs nothing.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/akalniens/keepsync/internal/identity"
	"github.com/akalniens/keepsync/internal/logging"
	"github.com/akalniens/keepsync/internal/models"
)

// DefaultInterval is the pull cadence when the config does not set one.
const DefaultInterval = 5 * time.Minute

// State is the scheduler's externally observable mode.
type State string

const (
	StateDisabled State = "disabled"
	StateIdle     State = "idle"
	StateSyncing  State = "syncing"
	StateError    State = "error"
)

// Phase labels a step of a sync cycle in progress callbacks.
type Phase string

const (
	PhaseStarting Phase = "starting"
	PhasePushing  Phase = "pushing"
	PhasePulling  Phase = "pulling"
	PhaseDone     Phase = "done"
	PhaseFailed   Phase = "failed"
)

// Progress is one progress event of a running cycle.
type Progress struct {
	Phase      Phase
	Collection models.Collection
	Count      int
}

// Summary totals a completed cycle.
type Summary struct {
	Pushed int
	Pulled int
}

// SyncEngine is the subset of the synchronizer the scheduler drives.
// *syncer.Synchronizer satisfies it.
type SyncEngine interface {
	PushAllLocal(ctx context.Context, c models.Collection) (int, error)
	PullAll(ctx context.Context, c models.Collection) (int, error)
}

// Scheduler runs full sync cycles on a timer and on demand. A cycle pushes
// and then pulls every collection; per-collection failures are isolated so
// one collection's outage cannot starve the others.
type Scheduler struct {
	engine   SyncEngine
	ids      identity.Provider
	log      logging.Logger
	interval time.Duration

	mu    sync.Mutex
	state State

	kick chan struct{}
}

// New builds a Scheduler. interval <= 0 falls back to DefaultInterval.
func New(engine SyncEngine, ids identity.Provider, log logging.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		engine:   engine,
		ids:      ids,
		log:      log,
		interval: interval,
		state:    StateDisabled,
		kick:     make(chan struct{}, 1),
	}
}

// State returns the current scheduler state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Run drives the scheduler until ctx is cancelled. Signing in triggers an
// immediate cycle and starts the periodic timer; signing out disables the
// scheduler and stops it.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, ok := identity.CanSync(s.ids); ok {
		s.setState(StateIdle)
		s.requestCycle()
	}

	unsub := s.ids.OnChange(func(id identity.Identity, signedIn bool) {
		if signedIn && !id.Anonymous {
			s.setState(StateIdle)
			s.requestCycle()
		} else {
			s.setState(StateDisabled)
		}
	})
	defer unsub()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		case <-s.kick:
			s.runCycle(ctx)
			ticker.Reset(s.interval)
		}
	}
}

// requestCycle schedules a cycle without blocking; a cycle already queued
// absorbs the request.
func (s *Scheduler) requestCycle() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if s.State() == StateDisabled {
		return
	}
	sum, err := s.SyncNow(ctx, nil)
	if err != nil {
		s.log.Warn(ctx, "sync cycle finished with errors", "error", err)
		return
	}
	s.log.Info(ctx, "sync cycle complete", "pushed", sum.Pushed, "pulled", sum.Pulled)
}

// SyncNow runs one full cycle immediately: push every collection, then pull
// every collection. progress may be nil. A disabled scheduler returns an
// empty summary without touching the engine.
//
// Collection failures are aggregated and reported after the cycle runs to
// completion. A failed cycle leaves the scheduler in StateError until the
// next cycle starts.
func (s *Scheduler) SyncNow(ctx context.Context, progress func(Progress)) (Summary, error) {
	if _, ok := identity.CanSync(s.ids); !ok {
		return Summary{}, nil
	}

	notify := func(p Progress) {
		if progress != nil {
			progress(p)
		}
	}

	s.setState(StateSyncing)
	notify(Progress{Phase: PhaseStarting})

	var sum Summary
	var errs error

	for _, c := range models.Collections() {
		n, err := s.engine.PushAllLocal(ctx, c)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("push %s: %w", c, err))
		}
		sum.Pushed += n
		notify(Progress{Phase: PhasePushing, Collection: c, Count: n})
	}

	for _, c := range models.Collections() {
		n, err := s.engine.PullAll(ctx, c)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("pull %s: %w", c, err))
		}
		sum.Pulled += n
		notify(Progress{Phase: PhasePulling, Collection: c, Count: n})
	}

	if errs != nil {
		s.setState(StateError)
		notify(Progress{Phase: PhaseFailed})
		return sum, errs
	}

	s.setState(StateIdle)
	notify(Progress{Phase: PhaseDone})
	return sum, nil
}
