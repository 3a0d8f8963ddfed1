package cart_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/art-storefront/internal/cart"
	"github.com/aaravmahajanofficial/art-storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryPersister records writes so tests can inspect what reached storage.
type memoryPersister struct {
	mu      sync.Mutex
	carts   map[string]models.Cart
	saves   int
	deletes int
	saveErr error
	loadErr error
}

func newMemoryPersister() *memoryPersister {
	return &memoryPersister{carts: make(map[string]models.Cart)}
}

func (p *memoryPersister) Load(_ context.Context, sessionID string) (models.Cart, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loadErr != nil {
		return models.EmptyCart(), p.loadErr
	}

	if c, ok := p.carts[sessionID]; ok {
		return c.Clone(), nil
	}

	return models.EmptyCart(), nil
}

func (p *memoryPersister) failLoads(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.loadErr = err
}

func (p *memoryPersister) Save(_ context.Context, sessionID string, state models.Cart) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.saves++
	if p.saveErr != nil {
		return p.saveErr
	}
	p.carts[sessionID] = state.Clone()

	return nil
}

func (p *memoryPersister) Delete(_ context.Context, sessionID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.deletes++
	delete(p.carts, sessionID)

	return nil
}

func (p *memoryPersister) counts() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.saves, p.deletes
}

func (p *memoryPersister) stored(sessionID string) (models.Cart, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.carts[sessionID]

	return c, ok
}

func newStore(t *testing.T, ctx context.Context, sessionID string, persister cart.Persister, opts cart.Options) *cart.Store {
	t.Helper()

	store, err := cart.NewStore(ctx, sessionID, persister, opts)
	require.NoError(t, err)

	return store
}

func TestStore(t *testing.T) {
	ctx := t.Context()

	t.Run("Hydrates from the persisted cart", func(t *testing.T) {
		// Arrange
		persister := newMemoryPersister()
		product := originalProduct(300000)
		persister.carts["s1"] = models.Cart{Items: []models.CartItem{{Product: product, Quantity: 1}}}

		// Act
		store := newStore(t, ctx, "s1", persister, cart.Options{SweepInterval: time.Hour})
		t.Cleanup(store.Close)

		state, err := store.State(ctx)

		// Assert
		require.NoError(t, err)
		require.Len(t, state.Items, 1)
		assert.Equal(t, int64(300000+2500+15000), state.Total, "totals are recomputed on load")
		saves, _ := persister.counts()
		assert.Zero(t, saves, "hydration does not write back")
	})

	t.Run("Persists after every change only", func(t *testing.T) {
		persister := newMemoryPersister()
		store := newStore(t, ctx, "s2", persister, cart.Options{SweepInterval: time.Hour})
		t.Cleanup(store.Close)
		product := printProduct(1000, nil)

		_, err := store.Dispatch(ctx, cart.AddItem{Product: product, Quantity: 1})
		require.NoError(t, err)
		_, err = store.Dispatch(ctx, cart.RemoveItem{ProductID: product.ID, SelectedSize: &models.SelectedSize{Label: "missing"}})
		require.NoError(t, err)
		state, err := store.Dispatch(ctx, cart.UpdateQuantity{ProductID: product.ID, Quantity: 4})
		require.NoError(t, err)

		saves, _ := persister.counts()
		assert.Equal(t, 2, saves)
		stored, ok := persister.stored("s2")
		require.True(t, ok)
		assert.Equal(t, state, stored)
	})

	t.Run("ClearCart deletes the snapshot", func(t *testing.T) {
		persister := newMemoryPersister()
		store := newStore(t, ctx, "s3", persister, cart.Options{SweepInterval: time.Hour})
		t.Cleanup(store.Close)

		_, err := store.Dispatch(ctx, cart.AddItem{Product: printProduct(1000, nil), Quantity: 1})
		require.NoError(t, err)
		state, err := store.Dispatch(ctx, cart.ClearCart{})
		require.NoError(t, err)

		assert.Empty(t, state.Items)
		_, deletes := persister.counts()
		assert.Equal(t, 1, deletes)
		_, ok := persister.stored("s3")
		assert.False(t, ok)
	})

	t.Run("Persist failures do not reach the caller", func(t *testing.T) {
		persister := newMemoryPersister()
		persister.saveErr = assert.AnError
		store := newStore(t, ctx, "s4", persister, cart.Options{SweepInterval: time.Hour})
		t.Cleanup(store.Close)

		state, err := store.Dispatch(ctx, cart.AddItem{Product: printProduct(1000, nil), Quantity: 2})

		require.NoError(t, err)
		assert.Equal(t, int64(2000), state.Subtotal)
	})

	t.Run("Sweep removes expired lines", func(t *testing.T) {
		// Arrange
		now := time.Now()
		persister := newMemoryPersister()
		store := newStore(t, ctx, "s5", persister, cart.Options{
			SweepInterval: 10 * time.Millisecond,
			Clock:         func() time.Time { return now },
		})
		t.Cleanup(store.Close)

		held := originalProduct(50000)
		state, err := store.Dispatch(ctx, cart.AddItem{
			Product:       held,
			Quantity:      1,
			ReservationID: "r-1",
			ExpiresAt:     ptr(now.Add(-time.Second)),
		})
		require.NoError(t, err)
		require.Len(t, state.Items, 1)

		// Act + Assert
		require.Eventually(t, func() bool {
			current, err := store.State(ctx)
			return err == nil && len(current.Items) == 0 && current.Total == 0
		}, time.Second, 5*time.Millisecond)

		stored, ok := persister.stored("s5")
		require.True(t, ok)
		assert.Empty(t, stored.Items)
	})

	t.Run("Concurrent dispatches are serialized", func(t *testing.T) {
		persister := newMemoryPersister()
		store := newStore(t, ctx, "s6", persister, cart.Options{SweepInterval: time.Hour})
		t.Cleanup(store.Close)
		product := printProduct(100, nil)

		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = store.Dispatch(ctx, cart.AddItem{Product: product, Quantity: 1})
			}()
		}
		wg.Wait()

		state, err := store.State(ctx)
		require.NoError(t, err)
		assert.Equal(t, 50, state.Items[0].Quantity)
		assert.Equal(t, int64(5000), state.Subtotal)
	})

	t.Run("Closed store rejects actions", func(t *testing.T) {
		store := newStore(t, ctx, "s7", newMemoryPersister(), cart.Options{SweepInterval: time.Hour})
		store.Close()
		store.Close()

		_, err := store.Dispatch(ctx, cart.ClearCart{})

		assert.ErrorIs(t, err, cart.ErrStoreClosed)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		store := newStore(t, ctx, "s8", newMemoryPersister(), cart.Options{SweepInterval: time.Hour})
		t.Cleanup(store.Close)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := store.State(cancelled)

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Returned state is a copy", func(t *testing.T) {
		store := newStore(t, ctx, "s9", newMemoryPersister(), cart.Options{SweepInterval: time.Hour})
		t.Cleanup(store.Close)

		state, err := store.Dispatch(ctx, cart.AddItem{Product: printProduct(100, nil), Quantity: 1})
		require.NoError(t, err)
		state.Items[0].Quantity = 99

		current, err := store.State(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, current.Items[0].Quantity)
	})

	t.Run("Unreachable storage starts no store", func(t *testing.T) {
		persister := newMemoryPersister()
		persister.failLoads(cart.ErrSnapshotUnavailable)

		store, err := cart.NewStore(ctx, "s10", persister, cart.Options{SweepInterval: time.Hour})

		require.ErrorIs(t, err, cart.ErrSnapshotUnavailable)
		assert.Nil(t, store)
	})

	t.Run("Hydration ignores a cancelled request", func(t *testing.T) {
		persister := newMemoryPersister()
		persister.carts["s11"] = models.Cart{Items: []models.CartItem{{Product: printProduct(500, nil), Quantity: 2}}}

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		store := newStore(t, cancelled, "s11", persister, cart.Options{SweepInterval: time.Hour})
		t.Cleanup(store.Close)

		state, err := store.State(ctx)
		require.NoError(t, err)
		assert.Len(t, state.Items, 1)
	})
}
