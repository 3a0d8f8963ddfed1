package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/art-storefront/internal/cache"
	appErrors "github.com/aaravmahajanofficial/art-storefront/internal/errors"
	"github.com/aaravmahajanofficial/art-storefront/internal/metrics"
	"github.com/aaravmahajanofficial/art-storefront/internal/models"
)

const DefaultLocale = "nb"

// ShippingProvider is the carrier integration.
type ShippingProvider interface {
	ShippingOptions(ctx context.Context, postalCode, countryCode, locale string) ([]models.ShippingOption, error)
}

type ShippingService interface {
	GetOptions(ctx context.Context, req *models.ShippingOptionsRequest) ([]models.ShippingOption, error)
	FindOption(ctx context.Context, postalCode, countryCode, optionID string) (*models.ShippingOption, error)
}

type shippingService struct {
	provider ShippingProvider
	cache    cache.Cache
	ttl      time.Duration
}

func NewShippingService(provider ShippingProvider, c cache.Cache, ttl time.Duration) ShippingService {
	return &shippingService{provider: provider, cache: c, ttl: ttl}
}

func shippingKey(countryCode, postalCode, locale string) string {
	return cache.Key(cache.ShippingKeyPrefix, countryCode, postalCode, locale)
}

// GetOptions returns the carrier's options for an address, cheapest first.
// An empty list is an answer, not an error.
func (s *shippingService) GetOptions(ctx context.Context, req *models.ShippingOptionsRequest) ([]models.ShippingOption, error) {

	country := strings.ToUpper(req.CountryCode)
	locale := req.Locale
	if locale == "" || locale == "no" {
		locale = DefaultLocale
	}

	key := shippingKey(country, req.PostalCode, locale)

	var cached []models.ShippingOption
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		slog.WarnContext(ctx, "Shipping cache read failed", slog.String("key", key), slog.Any("error", err))
	}
	if found && err == nil {
		metrics.ShippingLookup("cache")
		return cached, nil
	}

	options, err := s.provider.ShippingOptions(ctx, req.PostalCode, country, locale)
	if err != nil {
		metrics.ShippingLookup("error")
		return nil, appErrors.ThirdPartyError("Failed to fetch shipping options").WithError(err)
	}
	metrics.ShippingLookup("carrier")

	if options == nil {
		options = []models.ShippingOption{}
	}

	slices.SortStableFunc(options, func(a, b models.ShippingOption) int {
		switch {
		case a.PriceWithVAT < b.PriceWithVAT:
			return -1
		case a.PriceWithVAT > b.PriceWithVAT:
			return 1
		default:
			return 0
		}
	})

	if err := s.cache.Set(ctx, key, options, s.ttl); err != nil {
		slog.WarnContext(ctx, "Shipping cache write failed", slog.String("key", key), slog.Any("error", err))
	}

	return options, nil
}

// FindOption re-resolves a selected option so its price comes from the
// carrier and not from the client.
func (s *shippingService) FindOption(ctx context.Context, postalCode, countryCode, optionID string) (*models.ShippingOption, error) {

	options, err := s.GetOptions(ctx, &models.ShippingOptionsRequest{
		PostalCode:  postalCode,
		CountryCode: countryCode,
		Locale:      DefaultLocale,
	})
	if err != nil {
		return nil, appErrors.ShippingUnavailableError("Shipping options are unavailable").WithError(err)
	}

	for i := range options {
		if options[i].ID == optionID {
			return &options[i], nil
		}
	}

	return nil, appErrors.ShippingUnavailableError("Selected shipping option is not available for this address")
}
