package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aaravmahajanofficial/art-storefront/internal/metrics"
	"github.com/aaravmahajanofficial/art-storefront/internal/models"
)

var ErrStoreClosed = errors.New("cart store is closed")

const (
	DefaultSweepInterval  = 30 * time.Second
	DefaultPersistTimeout = 2 * time.Second
)

type Options struct {
	SweepInterval  time.Duration
	PersistTimeout time.Duration
	Clock          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.SweepInterval <= 0 {
		o.SweepInterval = DefaultSweepInterval
	}

	if o.PersistTimeout <= 0 {
		o.PersistTimeout = DefaultPersistTimeout
	}

	if o.Clock == nil {
		o.Clock = time.Now
	}

	return o
}

type request struct {
	action Action
	reply  chan models.Cart
}

// Store owns one session's cart. A single goroutine applies every action,
// including the periodic expiry sweep, so transitions are strictly ordered.
type Store struct {
	sessionID string
	persister Persister
	opts      Options

	requests chan request
	quit     chan struct{}
	done     chan struct{}

	closeOnce sync.Once
	lastUsed  atomic.Int64
}

// NewStore hydrates the cart from persister once, then starts the owner
// goroutine. Hydration outlives a cancelled ctx but not PersistTimeout. When
// storage is unreachable no store is started. Call Close to stop it.
func NewStore(ctx context.Context, sessionID string, persister Persister, opts Options) (*Store, error) {
	opts = opts.withDefaults()

	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opts.PersistTimeout)
	defer cancel()

	loaded, err := persister.Load(loadCtx, sessionID)
	if err != nil {
		slog.Warn("Cart hydration failed", slog.String("session_id", sessionID), slog.String("error", err.Error()))
		return nil, err
	}

	initial, _ := Reduce(models.EmptyCart(), LoadCart{Cart: loaded})

	s := &Store{
		sessionID: sessionID,
		persister: persister,
		opts:      opts,
		requests:  make(chan request),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	s.touch()

	metrics.CartStoreOpened()

	go s.run(initial)

	return s, nil
}

func (s *Store) SessionID() string {
	return s.sessionID
}

// Dispatch applies action and returns the resulting state. If ctx ends after
// the action was accepted, the action still takes effect.
func (s *Store) Dispatch(ctx context.Context, action Action) (models.Cart, error) {
	return s.send(ctx, action)
}

// State returns a copy of the current cart.
func (s *Store) State(ctx context.Context) (models.Cart, error) {
	return s.send(ctx, nil)
}

func (s *Store) send(ctx context.Context, action Action) (models.Cart, error) {
	s.touch()

	req := request{action: action, reply: make(chan models.Cart, 1)}

	select {
	case s.requests <- req:
	case <-s.quit:
		return models.Cart{}, ErrStoreClosed
	case <-ctx.Done():
		return models.Cart{}, ctx.Err()
	}

	select {
	case state := <-req.reply:
		return state, nil
	case <-ctx.Done():
		return models.Cart{}, ctx.Err()
	}
}

// Close stops the owner goroutine and waits for it. Safe to call more than once.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
		<-s.done
		metrics.CartStoreClosed()
	})
}

func (s *Store) idleSince() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

func (s *Store) touch() {
	s.lastUsed.Store(s.opts.Clock().UnixNano())
}

func (s *Store) run(state models.Cart) {
	defer close(s.done)

	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case req := <-s.requests:
			if req.action != nil {
				state = s.apply(state, req.action)
			}
			req.reply <- state.Clone()

		case <-ticker.C:
			state = s.apply(state, RemoveExpired{Now: s.opts.Clock()})

		case <-s.quit:
			return
		}
	}
}

func (s *Store) apply(state models.Cart, action Action) models.Cart {
	next, changed := Reduce(state, action)

	metrics.ObserveCartAction(action.Name(), changed)

	if !changed {
		return state
	}

	if _, ok := action.(RemoveExpired); ok {
		dropped := len(state.Items) - len(next.Items)
		metrics.AddExpiredLines(dropped)
		slog.Info("Removed expired cart lines", slog.String("session_id", s.sessionID), slog.Int("count", dropped))
	}

	s.persist(action, next)

	return next
}

func (s *Store) persist(action Action, state models.Cart) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.PersistTimeout)
	defer cancel()

	var err error

	if _, ok := action.(ClearCart); ok {
		err = s.persister.Delete(ctx, s.sessionID)
	} else {
		err = s.persister.Save(ctx, s.sessionID, state)
	}

	if err != nil {
		metrics.PersistFailed()
		slog.Warn("Failed to persist cart",
			slog.String("session_id", s.sessionID),
			slog.String("action", action.Name()),
			slog.String("error", err.Error()))
	}
}
