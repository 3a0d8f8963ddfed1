package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/art-storefront/internal/cache"
	"github.com/aaravmahajanofficial/art-storefront/internal/config"
	"github.com/aaravmahajanofficial/art-storefront/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrAlreadyReserved = errors.New("product is reserved by another session")

func NewRedisClient(cfg *config.Config) (*redis.Client, error) {

	redisURL := cfg.RedisConnect.GetDSN()
	slog.Info("Connecting to Redis", slog.String("url", fmt.Sprintf("redis://%s:<password>@%s", cfg.RedisConnect.Username, cfg.RedisConnect.Addr())))

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opt.DB = cfg.RedisConnect.DB

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("✅ Successfully connected to Redis")
	return client, nil

}

type ReservationRepository interface {
	Reserve(ctx context.Context, productID uuid.UUID, sessionID string, ttl time.Duration) (*models.Reservation, error)
	Release(ctx context.Context, productID uuid.UUID, sessionID string) error
	Holder(ctx context.Context, productID uuid.UUID) (string, error)
}

type reservationRepository struct {
	client *redis.Client
	now    func() time.Time
}

func NewReservationRepo(client *redis.Client) ReservationRepository {
	return &reservationRepository{client: client, now: time.Now}
}

// deletes the hold only if the caller still owns it
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

func reservationKey(productID uuid.UUID) string {
	return cache.Key(cache.ReservationKeyPrefix, productID.String())
}

// Reserve takes the hold on productID for sessionID, or extends it when the
// session already owns it.
func (r *reservationRepository) Reserve(ctx context.Context, productID uuid.UUID, sessionID string, ttl time.Duration) (*models.Reservation, error) {

	key := reservationKey(productID)

	acquired, err := r.client.SetNX(ctx, key, sessionID, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to reserve %s: %w", key, err)
	}

	if !acquired {

		owner, err := r.client.Get(ctx, key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("failed to read reservation %s: %w", key, err)
		}

		if owner != sessionID {
			return nil, ErrAlreadyReserved
		}

		if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
			return nil, fmt.Errorf("failed to extend reservation %s: %w", key, err)
		}

	}

	return &models.Reservation{
		ID:        uuid.NewString(),
		ProductID: productID,
		SessionID: sessionID,
		ExpiresAt: r.now().Add(ttl),
	}, nil
}

func (r *reservationRepository) Release(ctx context.Context, productID uuid.UUID, sessionID string) error {

	key := reservationKey(productID)

	if err := r.client.Eval(ctx, releaseScript, []string{key}, sessionID).Err(); err != nil {
		return fmt.Errorf("failed to release reservation %s: %w", key, err)
	}

	return nil
}

// Holder returns the session holding productID, or "" when it is free.
func (r *reservationRepository) Holder(ctx context.Context, productID uuid.UUID) (string, error) {

	key := reservationKey(productID)

	owner, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read reservation %s: %w", key, err)
	}

	return owner, nil
}
