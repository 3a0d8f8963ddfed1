package service_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/art-storefront/internal/cache"
	"github.com/aaravmahajanofficial/art-storefront/internal/config"
	appErrors "github.com/aaravmahajanofficial/art-storefront/internal/errors"
	"github.com/aaravmahajanofficial/art-storefront/internal/models"
	service "github.com/aaravmahajanofficial/art-storefront/internal/services"
	"github.com/aaravmahajanofficial/art-storefront/internal/services/mocks"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const shippingTTL = 10 * time.Minute

func setupShippingServiceTest(t *testing.T) (service.ShippingService, *mocks.MockShippingProvider, redismock.ClientMock) {
	client, redisMock := redismock.NewClientMock()
	redisCache := cache.NewRedisCache(client, &config.CacheConfig{DefaultTTL: time.Minute})
	provider := mocks.NewMockShippingProvider(t)

	t.Cleanup(func() {
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	return service.NewShippingService(provider, redisCache, shippingTTL), provider, redisMock
}

func carrierOptions() []models.ShippingOption {
	return []models.ShippingOption{
		{ID: "PA_DOREN", Name: "På døren", DeliveryType: models.DeliveryTypeHomeDelivery, PriceWithVAT: 24900},
		{ID: "SERVICEPAKKE", Name: "Hentested", DeliveryType: models.DeliveryTypePickup, PriceWithVAT: 14900},
		{ID: "EXPRESS", Name: "Ekspress", DeliveryType: models.DeliveryTypeOther, PriceWithVAT: 24900},
	}
}

func TestGetOptions(t *testing.T) {
	req := &models.ShippingOptionsRequest{PostalCode: "5003", CountryCode: "no", Locale: "nb"}
	key := "shipping:NO:5003:nb"

	t.Run("Success - Carrier result is sorted and cached", func(t *testing.T) {
		// Arrange
		shippingService, provider, redisMock := setupShippingServiceTest(t)
		provider.On("ShippingOptions", mock.Anything, "5003", "NO", "nb").Return(carrierOptions(), nil).Once()

		sorted := []models.ShippingOption{carrierOptions()[1], carrierOptions()[0], carrierOptions()[2]}
		data, err := json.Marshal(sorted)
		require.NoError(t, err)

		redisMock.ExpectGet(key).SetErr(redis.Nil)
		redisMock.ExpectSet(key, data, shippingTTL).SetVal("OK")

		// Act
		options, err := shippingService.GetOptions(t.Context(), req)

		// Assert
		require.NoError(t, err)
		require.Len(t, options, 3)
		assert.Equal(t, "SERVICEPAKKE", options[0].ID, "cheapest first")
		assert.Equal(t, "PA_DOREN", options[1].ID, "equal prices keep carrier order")
		assert.Equal(t, "EXPRESS", options[2].ID)
	})

	t.Run("Success - Served from cache", func(t *testing.T) {
		shippingService, _, redisMock := setupShippingServiceTest(t)

		cached := []models.ShippingOption{{ID: "SERVICEPAKKE", PriceWithVAT: 14900}}
		data, err := json.Marshal(cached)
		require.NoError(t, err)
		redisMock.ExpectGet(key).SetVal(string(data))

		options, err := shippingService.GetOptions(t.Context(), req)

		require.NoError(t, err)
		assert.Equal(t, cached, options)
	})

	t.Run("Success - Empty list is an answer", func(t *testing.T) {
		shippingService, provider, redisMock := setupShippingServiceTest(t)
		provider.On("ShippingOptions", mock.Anything, "9170", "NO", "nb").Return(nil, nil).Once()

		redisMock.ExpectGet("shipping:NO:9170:nb").SetErr(redis.Nil)
		redisMock.ExpectSet("shipping:NO:9170:nb", []byte("[]"), shippingTTL).SetVal("OK")

		options, err := shippingService.GetOptions(t.Context(), &models.ShippingOptionsRequest{PostalCode: "9170", CountryCode: "NO"})

		require.NoError(t, err)
		assert.NotNil(t, options)
		assert.Empty(t, options)
	})

	t.Run("Success - Cache outage falls through to carrier", func(t *testing.T) {
		shippingService, provider, redisMock := setupShippingServiceTest(t)
		provider.On("ShippingOptions", mock.Anything, "5003", "NO", "en").Return([]models.ShippingOption{{ID: "A", PriceWithVAT: 1}}, nil).Once()

		enKey := "shipping:NO:5003:en"
		redisMock.ExpectGet(enKey).SetErr(errors.New("connection refused"))
		redisMock.ExpectSet(enKey, []byte(`[{"id":"A","name":"","description":"","deliveryType":"","estimatedDelivery":"","priceWithVat":1}]`), shippingTTL).
			SetErr(errors.New("connection refused"))

		options, err := shippingService.GetOptions(t.Context(), &models.ShippingOptionsRequest{PostalCode: "5003", CountryCode: "NO", Locale: "en"})

		require.NoError(t, err)
		assert.Len(t, options, 1)
	})

	t.Run("Failure - Carrier error", func(t *testing.T) {
		shippingService, provider, redisMock := setupShippingServiceTest(t)
		provider.On("ShippingOptions", mock.Anything, "5003", "NO", "nb").Return(nil, errors.New("timeout")).Once()
		redisMock.ExpectGet(key).SetErr(redis.Nil)

		options, err := shippingService.GetOptions(t.Context(), req)

		assert.Nil(t, options)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeThirdPartyError, appErr.Code)
	})
}

func TestFindOption(t *testing.T) {
	key := "shipping:NO:5003:nb"

	cachedOptions := func(t *testing.T, redisMock redismock.ClientMock) {
		data, err := json.Marshal(carrierOptions())
		require.NoError(t, err)
		redisMock.ExpectGet(key).SetVal(string(data))
	}

	t.Run("Success - Option found", func(t *testing.T) {
		shippingService, _, redisMock := setupShippingServiceTest(t)
		cachedOptions(t, redisMock)

		option, err := shippingService.FindOption(t.Context(), "5003", "NO", "SERVICEPAKKE")

		require.NoError(t, err)
		assert.Equal(t, int64(14900), option.PriceWithVAT)
	})

	t.Run("Failure - Unknown option", func(t *testing.T) {
		shippingService, _, redisMock := setupShippingServiceTest(t)
		cachedOptions(t, redisMock)

		option, err := shippingService.FindOption(t.Context(), "5003", "NO", "DRONE")

		assert.Nil(t, option)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeShippingUnavailable, appErr.Code)
	})

	t.Run("Failure - Carrier down", func(t *testing.T) {
		shippingService, provider, redisMock := setupShippingServiceTest(t)
		redisMock.ExpectGet(key).SetErr(redis.Nil)
		provider.On("ShippingOptions", mock.Anything, "5003", "NO", "nb").Return(nil, errors.New("timeout")).Once()

		_, err := shippingService.FindOption(t.Context(), "5003", "NO", "SERVICEPAKKE")

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeShippingUnavailable, appErr.Code)
	})
}
