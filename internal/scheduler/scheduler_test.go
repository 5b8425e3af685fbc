package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/privacy2run/internal/model"
	"github.com/iliyamo/privacy2run/internal/registry"
)

type fakeStore struct {
	mu    sync.Mutex
	codes []model.AuthCode
	err   error
	loads int
}

func (f *fakeStore) LoadAll(ctx context.Context) ([]model.AuthCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.codes, f.err
}

func (f *fakeStore) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

// recorder collects the athlete ids handed to the process func.
type recorder struct {
	mu  sync.Mutex
	ids []int64
}

func (r *recorder) process(ctx context.Context, code model.AuthCode, onInvalid func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, code.ID)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

func (r *recorder) seen(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, got := range r.ids {
		if got == id {
			return true
		}
	}
	return false
}

func TestRestartStaysIdleWhenStoreEmpty(t *testing.T) {
	reg := registry.New()
	store := &fakeStore{}
	rec := &recorder{}
	s := New(5*time.Millisecond, reg, store, rec.process)
	defer s.Stop()

	s.Restart(context.Background())

	time.Sleep(60 * time.Millisecond)
	if rec.count() != 0 {
		t.Fatalf("ticks fired with an empty registry: %d", rec.count())
	}
	if store.loadCount() != 1 {
		t.Fatalf("expected exactly one hydration load got %d", store.loadCount())
	}
}

func TestRestartStaysIdleWhenStoreFails(t *testing.T) {
	reg := registry.New()
	store := &fakeStore{err: errors.New("connection refused")}
	rec := &recorder{}
	s := New(5*time.Millisecond, reg, store, rec.process)
	defer s.Stop()

	s.Restart(context.Background())

	time.Sleep(40 * time.Millisecond)
	if rec.count() != 0 {
		t.Fatalf("ticks fired after a failed hydration: %d", rec.count())
	}
	if reg.Len() != 0 {
		t.Fatalf("registry populated after a failed hydration")
	}
}

func TestRestartHydratesAndTicks(t *testing.T) {
	reg := registry.New()
	store := &fakeStore{codes: []model.AuthCode{{ID: 1, Token: "t", Valid: true}}}
	rec := &recorder{}
	s := New(10*time.Millisecond, reg, store, rec.process)
	defer s.Stop()

	s.Restart(context.Background())

	if reg.Len() != 1 {
		t.Fatalf("expected hydrated registry of 1 got %d", reg.Len())
	}

	deadline := time.Now().Add(2 * time.Second)
	for rec.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !rec.seen(1) {
		t.Fatalf("athlete 1 never processed")
	}
}

func TestRestartSkipsHydrationWhenRegistryPopulated(t *testing.T) {
	reg := registry.New()
	reg.Upsert(model.AuthCode{ID: 5, Token: "t", Valid: true})
	store := &fakeStore{codes: []model.AuthCode{{ID: 9, Token: "u", Valid: true}}}
	rec := &recorder{}
	s := New(time.Hour, reg, store, rec.process)
	defer s.Stop()

	s.Restart(context.Background())

	if store.loadCount() != 0 {
		t.Fatalf("hydrated despite a populated registry")
	}
}

func TestTickSkipsInvalidRecords(t *testing.T) {
	reg := registry.New()
	reg.Upsert(model.AuthCode{ID: 1, Token: "good", Valid: true})
	reg.Upsert(model.AuthCode{ID: 2, Token: "bad", Valid: false})
	rec := &recorder{}
	s := New(10*time.Millisecond, reg, &fakeStore{}, rec.process)
	defer s.Stop()

	s.Restart(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for rec.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if rec.seen(2) {
		t.Fatalf("invalid record swept")
	}
	if !rec.seen(1) {
		t.Fatalf("valid record never swept")
	}
}

func TestPeriodScalesWithRegistrySize(t *testing.T) {
	reg := registry.New()
	for id := int64(1); id <= 3; id++ {
		reg.Upsert(model.AuthCode{ID: id, Token: "t", Valid: true})
	}
	rec := &recorder{}
	base := 60 * time.Millisecond // period = 180ms for 3 records
	s := New(base, reg, &fakeStore{}, rec.process)
	defer s.Stop()

	s.Restart(context.Background())

	time.Sleep(90 * time.Millisecond)
	if rec.count() != 0 {
		t.Fatalf("tick fired before base*N elapsed")
	}

	deadline := time.Now().Add(2 * time.Second)
	for rec.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if rec.count() < 3 {
		t.Fatalf("expected a sweep of all 3 records got %d", rec.count())
	}
}

func TestRestartReplacesTimer(t *testing.T) {
	reg := registry.New()
	reg.Upsert(model.AuthCode{ID: 1, Token: "t", Valid: true})
	rec := &recorder{}
	s := New(10*time.Millisecond, reg, &fakeStore{}, rec.process)
	defer s.Stop()

	s.Restart(context.Background())
	// A fourth upsert arrives: reconfigure. The old ticker must be gone and
	// sweeps must now cover the new record too.
	reg.Upsert(model.AuthCode{ID: 2, Token: "u", Valid: true})
	s.Restart(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for !(rec.seen(1) && rec.seen(2)) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !rec.seen(2) {
		t.Fatalf("new record never swept after restart")
	}
}

func TestStopPreventsFurtherTicks(t *testing.T) {
	reg := registry.New()
	reg.Upsert(model.AuthCode{ID: 1, Token: "t", Valid: true})
	rec := &recorder{}
	s := New(10*time.Millisecond, reg, &fakeStore{}, rec.process)

	s.Restart(context.Background())
	s.Stop()

	before := rec.count()
	time.Sleep(60 * time.Millisecond)
	if rec.count() != before {
		t.Fatalf("ticks continued after Stop")
	}
}

func TestSweepInvalidationReachesRegistry(t *testing.T) {
	reg := registry.New()
	reg.Upsert(model.AuthCode{ID: 1, Token: "stale", Valid: true})
	invalidating := func(ctx context.Context, code model.AuthCode, onInvalid func()) {
		onInvalid()
	}
	s := New(10*time.Millisecond, reg, &fakeStore{}, invalidating)
	defer s.Stop()

	s.Restart(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c, _ := reg.Get(1); !c.Valid {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("record never invalidated")
}
