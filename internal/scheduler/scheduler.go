// Package scheduler owns the recurring sweep over the authorization
// registry. There is at most one active ticker per process: every restart
// cancels the previous ticker before computing the new period, so timers
// never overlap. The period scales with registry size (base interval times
// number of athletes), a deliberate load-shedding policy inherited from
// the original deployment: the more athletes authorized, the less often
// each one is swept, keeping total Strava traffic roughly constant.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/iliyamo/privacy2run/internal/model"
	"github.com/iliyamo/privacy2run/internal/registry"
)

// Store is the slice of the token store the scheduler needs: the one-shot
// load used to hydrate an empty registry.
type Store interface {
	LoadAll(ctx context.Context) ([]model.AuthCode, error)
}

// ProcessFunc sweeps a single athlete. onInvalid is called when the
// athlete's token turns out to be unusable.
type ProcessFunc func(ctx context.Context, code model.AuthCode, onInvalid func())

type Scheduler struct {
	base    time.Duration
	reg     *registry.Registry
	store   Store
	process ProcessFunc

	mu     sync.Mutex
	cancel context.CancelFunc // cancels the running ticker goroutine, nil when idle
}

func New(base time.Duration, reg *registry.Registry, store Store, process ProcessFunc) *Scheduler {
	return &Scheduler{base: base, reg: reg, store: store, process: process}
}

// Restart cancels any running ticker and installs a new one sized to the
// current registry. When the registry is empty it first hydrates from the
// store; if it is still empty afterwards (or the load failed) the
// scheduler stays idle, an expected state for a fresh deployment. Cancelling the old ticker stops future ticks only: sweeps already
// dispatched run to completion and still apply their invalidations.
func (s *Scheduler) Restart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	if s.reg.Len() == 0 {
		s.hydrate(ctx)
	}

	n := s.reg.Len()
	if n == 0 {
		log.Printf("scheduler: registry empty, nothing to process")
		return
	}

	period := s.base * time.Duration(n)
	log.Printf("scheduler: sweeping every %s (%d athlete(s))", period, n)

	tickCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(tickCtx, period)
}

// Stop cancels the ticker, if any. Used at process shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Scheduler) hydrate(ctx context.Context) {
	codes, err := s.store.LoadAll(ctx)
	if err != nil {
		log.Printf("scheduler: hydrate from store failed: %v", err)
		return
	}
	for _, c := range codes {
		s.reg.Upsert(c)
	}
	log.Printf("scheduler: hydrated %d authorization(s) from store", len(codes))
}

func (s *Scheduler) run(ctx context.Context, period time.Duration) {
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep()
		}
	}
}

// sweep fans out one goroutine per valid athlete and returns without
// waiting for them. Sweeps are given a background context on purpose:
// replacing the ticker must not abort remote calls already in flight. A
// slow Strava call can therefore overlap the next tick for the same
// athlete; remediation is idempotent, so no per-token guard is kept.
func (s *Scheduler) sweep() {
	for _, code := range s.reg.Snapshot() {
		if !code.Valid {
			continue
		}
		c := code
		go s.process(context.Background(), c, func() {
			log.Printf("scheduler: invalidating authorization for athlete %d", c.ID)
			s.reg.MarkInvalid(c.ID)
		})
	}
}
