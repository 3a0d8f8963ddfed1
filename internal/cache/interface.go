package cache

import (
	"context"
	"errors"
	"time"
)

// ErrDecode is wrapped by Get when a stored value cannot be unmarshalled into
// the destination. Callers use it to tell corrupt entries from outages.
var ErrDecode = errors.New("cache: stored value could not be decoded")

type Cache interface {
	Get(ctx context.Context, key string, value any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

func Key(prefix string, parts ...string) string {
	key := prefix
	for _, part := range parts {
		key += ":" + part
	}

	return key
}

const (
	CartKeyPrefix        = "cart"
	ShippingKeyPrefix    = "shipping"
	ReservationKeyPrefix = "reservation"
)
