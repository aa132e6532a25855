package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/renaissancebro/AGI-seed/internal/domain"
	"github.com/renaissancebro/AGI-seed/internal/emotion"
	"github.com/renaissancebro/AGI-seed/internal/store"
)

var ErrIdentityNotFound = errors.New("identity not found")

// liveIdentity is one loaded identity plus the emotion machinery bound to it.
// All fields are guarded by mu. A dead entry has left the registry and must
// not be used; callers holding it reload through get.
type liveIdentity struct {
	mu       sync.Mutex
	dead     bool
	lastUsed time.Time

	id       uuid.UUID
	identity *domain.Identity
	emotions *emotion.System
	comfort  *emotion.ComfortEngine
	pride    *emotion.PrideEngine
	shame    *emotion.ShameEngine
}

func newLiveIdentity(id uuid.UUID, ident *domain.Identity, emotionsEnabled bool, sensitivity float64) *liveIdentity {
	e := &liveIdentity{id: id, identity: ident, lastUsed: time.Now()}
	if emotionsEnabled {
		e.emotions = emotion.NewSystem()
		ident.AttachEmotions(e.emotions)
	}
	e.comfort = emotion.NewComfortEngine(ident, sensitivity)
	e.pride = emotion.NewPrideEngine(ident, sensitivity)
	e.shame = emotion.NewShameEngine(ident, sensitivity)
	e.shame.SetBuffer(e.pride.BufferShame)
	return e
}

func (e *liveIdentity) snapshot() *domain.IdentitySnapshot {
	s := e.identity.Snapshot()
	s.ID = e.id
	return &s
}

// decay advances every emotion clock one step.
func (e *liveIdentity) decay() {
	if e.emotions != nil {
		e.emotions.Decay()
	}
	e.comfort.Decay()
	e.pride.Decay()
	e.shame.Decay()
}

// unchanged marks an error raised by a mutation before it touched any state.
// mutate keeps the entry for these.
type unchanged struct{ error }

func (u unchanged) Unwrap() error { return u.error }

// Registry keeps loaded identities in memory and serializes access to each.
// Entries are loaded from the store on first use.
type Registry struct {
	identityStore   domain.IdentityStore
	aspirationStore domain.AspirationStore
	sensitivity     float64
	now             func() time.Time

	mu      sync.Mutex
	entries map[uuid.UUID]*liveIdentity
}

func NewRegistry(is domain.IdentityStore, as domain.AspirationStore, sensitivity float64) *Registry {
	return &Registry{
		identityStore:   is,
		aspirationStore: as,
		sensitivity:     sensitivity,
		now:             time.Now,
		entries:         make(map[uuid.UUID]*liveIdentity),
	}
}

// put registers a freshly created identity.
func (r *Registry) put(e *liveIdentity) {
	r.mu.Lock()
	r.entries[e.id] = e
	r.mu.Unlock()
}

// evict retires e. The caller must hold e.mu.
func (r *Registry) evict(e *liveIdentity) {
	e.dead = true
	r.mu.Lock()
	if r.entries[e.id] == e {
		delete(r.entries, e.id)
	}
	r.mu.Unlock()
}

func (r *Registry) loaded(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[id]
	return ok
}

// release evicts id if it is loaded and idle enough to lock right away.
func (r *Registry) release(id uuid.UUID) {
	r.mu.Lock()
	e, ok := r.entries[id]
	r.mu.Unlock()
	if !ok || !e.mu.TryLock() {
		return
	}
	defer e.mu.Unlock()
	r.evict(e)
}

// EvictIdle drops entries unused for longer than maxAge. Entries that are
// busy are skipped. It returns the number evicted.
func (r *Registry) EvictIdle(maxAge time.Duration) int {
	cutoff := r.now().Add(-maxAge)
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, e := range r.entries {
		if !e.mu.TryLock() {
			continue
		}
		if e.lastUsed.Before(cutoff) {
			e.dead = true
			delete(r.entries, id)
			evicted++
		}
		e.mu.Unlock()
	}
	return evicted
}

// get returns the live entry, loading it if needed. The entry is not locked.
func (r *Registry) get(ctx context.Context, id uuid.UUID) (*liveIdentity, error) {
	r.mu.Lock()
	e, ok := r.entries[id]
	r.mu.Unlock()
	if ok {
		return e, nil
	}

	loaded, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.entries[id]; ok {
		return existing, nil
	}
	r.entries[id] = loaded
	return loaded, nil
}

func (r *Registry) load(ctx context.Context, id uuid.UUID) (*liveIdentity, error) {
	snap, err := r.identityStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, fmt.Errorf("load identity: %w", err)
	}

	ident, err := domain.RestoreIdentity(*snap)
	if err != nil {
		return nil, fmt.Errorf("restore identity: %w", err)
	}
	e := newLiveIdentity(id, ident, snap.EmotionsEnabled, r.sensitivity)

	if r.aspirationStore == nil {
		return e, nil
	}
	aspirations, err := r.aspirationStore.ListAspirations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load aspirations: %w", err)
	}
	for i := range aspirations {
		e.pride.AddAspiration(&aspirations[i])
	}
	standards, err := r.aspirationStore.ListStandards(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load standards: %w", err)
	}
	for i := range standards {
		e.shame.AddStandard(&standards[i])
	}
	return e, nil
}

// with runs fn while holding the identity's lock. An entry evicted while
// waiting for the lock is replaced by a fresh load.
func (r *Registry) with(ctx context.Context, id uuid.UUID, fn func(e *liveIdentity) error) error {
	for {
		e, err := r.get(ctx, id)
		if err != nil {
			return err
		}
		e.mu.Lock()
		if e.dead {
			e.mu.Unlock()
			continue
		}
		e.lastUsed = r.now()
		err = fn(e)
		e.mu.Unlock()
		return err
	}
}

// mutate runs fn under the identity's lock and persists the resulting
// snapshot. When fn fails after touching state, or the save fails, the entry
// is dropped so the next access reloads the last stored state.
func (r *Registry) mutate(ctx context.Context, id uuid.UUID, fn func(e *liveIdentity) error) (*domain.IdentitySnapshot, error) {
	var snap *domain.IdentitySnapshot
	err := r.with(ctx, id, func(e *liveIdentity) error {
		if err := fn(e); err != nil {
			var u unchanged
			if errors.As(err, &u) {
				return u.error
			}
			r.evict(e)
			return err
		}
		snap = e.snapshot()
		if err := r.identityStore.Save(ctx, snap); err != nil {
			r.evict(e)
			return fmt.Errorf("save identity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Loaded returns the number of identities held in memory.
func (r *Registry) Loaded() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
