package history

import (
	"context"
	"sync"

	"logoden/internal/cache"
	"logoden/internal/logo"
	"logoden/internal/store"
)

// LoadState is the lifecycle of a card's image load.
type LoadState int

const (
	StateIdle LoadState = iota
	StateLoading
	StateLoaded
	StateErrored
)

// String returns the state name.
func (s LoadState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Watcher is the visibility source a CardLoader registers with. Watch
// arranges for fn to be called when the item becomes visible; callbacks may
// fire repeatedly until Unwatch.
type Watcher interface {
	Watch(id string, fn func())
	Unwatch(id string)
}

// CardLoader loads one card's heavy image payload the first time the card
// becomes visible. The state machine is Idle → Loading → {Loaded, Errored}
// with no transitions out of the terminal states: repeated visibility
// events after the first are no-ops, and a failed load is not retried
// (the card shows an error tile until the session is rebuilt).
type CardLoader struct {
	id      string
	ownerID string
	images  *cache.ImageCache
	store   store.Store
	watcher Watcher
	ctx     context.Context

	mu        sync.Mutex
	state     LoadState
	attempted bool
	payload   *logo.Payload
	loadErr   error
}

// NewCardLoader creates a loader for logo id and registers it with w.
// ctx bounds the eventual fetch; it is typically the session's lifetime.
func NewCardLoader(ctx context.Context, id, ownerID string, images *cache.ImageCache, st store.Store, w Watcher) *CardLoader {
	l := &CardLoader{
		id:      id,
		ownerID: ownerID,
		images:  images,
		store:   st,
		watcher: w,
		ctx:     ctx,
		state:   StateIdle,
	}
	if w != nil {
		w.Watch(id, l.onVisible)
	}
	return l
}

// State returns the loader's current state.
func (l *CardLoader) State() LoadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Payload returns the loaded payload, or nil unless state is Loaded.
func (l *CardLoader) Payload() *logo.Payload {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.payload
}

// Err returns the load error, or nil unless state is Errored.
func (l *CardLoader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadErr
}

// Close detaches the loader from its watcher. It does not cancel an
// already-started fetch; a stale completion simply lands in the cache.
func (l *CardLoader) Close() {
	if l.watcher != nil {
		l.watcher.Unwatch(l.id)
	}
}

// onVisible is the one-shot visibility trigger. The attempted flag
// guarantees exactly one Idle → Loading transition no matter how many
// visibility events arrive.
func (l *CardLoader) onVisible() {
	l.mu.Lock()
	if l.attempted {
		l.mu.Unlock()
		return
	}
	l.attempted = true
	l.state = StateLoading
	l.mu.Unlock()

	// One-shot: no further visibility events are needed
	if l.watcher != nil {
		l.watcher.Unwatch(l.id)
	}

	l.load()
}

func (l *CardLoader) load() {
	if p, ok := l.images.Get(l.id); ok {
		l.finish(p, nil)
		return
	}

	p, err := l.store.FetchFullLogo(l.ctx, l.id, l.ownerID)
	if err != nil {
		l.finish(nil, err)
		return
	}
	if p == nil {
		// Absent payload is an error tile, not a crash
		l.finish(nil, nil)
		return
	}

	l.images.Put(l.id, p)
	l.finish(p, nil)
}

func (l *CardLoader) finish(p *logo.Payload, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p != nil {
		l.state = StateLoaded
		l.payload = p
		return
	}
	l.state = StateErrored
	l.loadErr = err
}
