package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/art-storefront/internal/cache"
	appErrors "github.com/aaravmahajanofficial/art-storefront/internal/errors"
	"github.com/aaravmahajanofficial/art-storefront/internal/metrics"
	"github.com/aaravmahajanofficial/art-storefront/internal/models"
)

const (
	DefaultSchemaVersion  = 1
	DefaultSnapshotMaxAge = 7 * 24 * time.Hour
)

// ErrSnapshotUnavailable means the snapshot could not be read at all. The
// stored cart may still be valid, so it must not be overwritten.
var ErrSnapshotUnavailable = errors.New("cart snapshot unavailable")

// Persister is the durable side of a session cart.
type Persister interface {
	// Load yields an empty cart for missing, unreadable or stale snapshots and
	// fails only when storage cannot be reached.
	Load(ctx context.Context, sessionID string) (models.Cart, error)
	Save(ctx context.Context, sessionID string, state models.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

func Encode(state models.Cart, version int, now time.Time) models.CartSnapshot {
	return models.CartSnapshot{
		Version:   version,
		Timestamp: now.UnixMilli(),
		Cart:      state.Clone(),
	}
}

// Restore checks a snapshot against the running schema version and its age.
func Restore(snapshot models.CartSnapshot, version int, maxAge time.Duration, now time.Time) (models.Cart, error) {
	if snapshot.Version != version {
		return models.EmptyCart(), fmt.Errorf("%w: version %d, want %d",
			appErrors.ErrCorruptedPersistedState, snapshot.Version, version)
	}

	age := now.Sub(time.UnixMilli(snapshot.Timestamp))
	if age > maxAge {
		return models.EmptyCart(), fmt.Errorf("%w: snapshot is %s old", appErrors.ErrCorruptedPersistedState, age.Round(time.Second))
	}

	state := snapshot.Cart.Clone()
	if state.Items == nil {
		state.Items = []models.CartItem{}
	}

	return state, nil
}

type SnapshotStore struct {
	cache   cache.Cache
	version int
	maxAge  time.Duration
	now     func() time.Time
}

func NewSnapshotStore(c cache.Cache, version int, maxAge time.Duration) *SnapshotStore {
	if version <= 0 {
		version = DefaultSchemaVersion
	}

	if maxAge <= 0 {
		maxAge = DefaultSnapshotMaxAge
	}

	return &SnapshotStore{cache: c, version: version, maxAge: maxAge, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (s *SnapshotStore) WithClock(now func() time.Time) *SnapshotStore {
	s.now = now
	return s
}

func snapshotKey(sessionID string) string {
	return cache.Key(cache.CartKeyPrefix, sessionID)
}

func (s *SnapshotStore) Load(ctx context.Context, sessionID string) (models.Cart, error) {
	key := snapshotKey(sessionID)

	var snapshot models.CartSnapshot

	found, err := s.cache.Get(ctx, key, &snapshot)
	if err != nil {
		if errors.Is(err, cache.ErrDecode) {
			slog.Warn("Discarding unreadable cart snapshot", slog.String("session_id", sessionID), slog.String("error", err.Error()))
			metrics.SnapshotDiscarded("decode")
			s.discard(ctx, key)

			return models.EmptyCart(), nil
		}

		return models.EmptyCart(), fmt.Errorf("%w: %w", ErrSnapshotUnavailable, err)
	}

	if !found {
		return models.EmptyCart(), nil
	}

	state, err := Restore(snapshot, s.version, s.maxAge, s.now())
	if err != nil {
		slog.Info("Discarding stale cart snapshot", slog.String("session_id", sessionID), slog.String("reason", err.Error()))
		metrics.SnapshotDiscarded("stale")
		s.discard(ctx, key)

		return models.EmptyCart(), nil
	}

	return state, nil
}

func (s *SnapshotStore) Save(ctx context.Context, sessionID string, state models.Cart) error {
	return s.cache.Set(ctx, snapshotKey(sessionID), Encode(state, s.version, s.now()), s.maxAge)
}

func (s *SnapshotStore) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, snapshotKey(sessionID))
}

func (s *SnapshotStore) discard(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		slog.Warn("Failed to delete cart snapshot", slog.String("key", key), slog.String("error", err.Error()))
	}
}
