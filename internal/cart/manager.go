package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/art-storefront/internal/models"
)

// Manager keeps one Store per live session and evicts stores that have been
// idle for longer than idleTimeout.
type Manager struct {
	persister   Persister
	opts        Options
	idleTimeout time.Duration

	mu     sync.Mutex
	stores map[string]*Store

	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewManager(persister Persister, opts Options, idleTimeout time.Duration) *Manager {
	m := &Manager{
		persister:   persister,
		opts:        opts.withDefaults(),
		idleTimeout: idleTimeout,
		stores:      make(map[string]*Store),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}

	if idleTimeout > 0 {
		go m.janitor()
	} else {
		close(m.done)
	}

	return m
}

// Open returns the session's store, hydrating a new one when needed. A failed
// hydration registers nothing, so the next call tries again.
func (m *Manager) Open(ctx context.Context, sessionID string) (*Store, error) {
	m.mu.Lock()
	if s, ok := m.stores[sessionID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	// hydrate outside the lock so a slow snapshot read only delays this session
	fresh, err := NewStore(ctx, sessionID, m.persister, m.opts)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if s, ok := m.stores[sessionID]; ok {
		m.mu.Unlock()
		fresh.Close()

		return s, nil
	}
	m.stores[sessionID] = fresh
	m.mu.Unlock()

	return fresh, nil
}

// Dispatch routes action to the session's store, reopening it once if it was
// evicted between lookup and send.
func (m *Manager) Dispatch(ctx context.Context, sessionID string, action Action) (state models.Cart, err error) {
	for range 2 {
		var store *Store

		store, err = m.Open(ctx, sessionID)
		if err != nil {
			return models.Cart{}, err
		}

		state, err = store.Dispatch(ctx, action)
		if !errors.Is(err, ErrStoreClosed) {
			return state, err
		}
	}

	return state, err
}

func (m *Manager) State(ctx context.Context, sessionID string) (state models.Cart, err error) {
	for range 2 {
		var store *Store

		store, err = m.Open(ctx, sessionID)
		if err != nil {
			return models.Cart{}, err
		}

		state, err = store.State(ctx)
		if !errors.Is(err, ErrStoreClosed) {
			return state, err
		}
	}

	return state, err
}

// Release stops the session's store. The persisted snapshot is kept.
func (m *Manager) Release(sessionID string) {
	m.mu.Lock()
	s, ok := m.stores[sessionID]
	delete(m.stores, sessionID)
	m.mu.Unlock()

	if ok {
		s.Close()
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.stores)
}

// Close stops the janitor and every store.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.quit)
		<-m.done

		m.mu.Lock()
		stores := m.stores
		m.stores = make(map[string]*Store)
		m.mu.Unlock()

		for _, s := range stores {
			s.Close()
		}
	})
}

func (m *Manager) janitor() {
	defer close(m.done)

	ticker := time.NewTicker(max(m.idleTimeout/2, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.EvictIdle()
		case <-m.quit:
			return
		}
	}
}

// EvictIdle closes stores that have not been used within the idle timeout.
func (m *Manager) EvictIdle() int {
	cutoff := m.opts.Clock().Add(-m.idleTimeout)

	var idle []*Store

	m.mu.Lock()
	for id, s := range m.stores {
		if s.idleSince().Before(cutoff) {
			idle = append(idle, s)
			delete(m.stores, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}

	if len(idle) > 0 {
		slog.Debug("Evicted idle cart stores", slog.Int("count", len(idle)))
	}

	return len(idle)
}
