package stripe_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	stripeClient "github.com/aaravmahajanofficial/art-storefront/pkg/stripe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) stripeClient.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(server.URL),
		HTTPClient:        server.Client(),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})

	return stripeClient.NewStripeClientWithBackends("sk_test_123", &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})
}

func TestGetPaymentIntent(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/v1/payment_intents/pi_123", r.URL.Path)
			assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","amount":357500,"currency":"nok","status":"succeeded"}`))
		})

		// Act
		intent, err := client.GetPaymentIntent(t.Context(), "pi_123")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "pi_123", intent.ID)
		assert.Equal(t, int64(357500), intent.Amount)
		assert.Equal(t, "nok", intent.Currency)
		assert.True(t, intent.Succeeded())
	})

	t.Run("Pending intent has not succeeded", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"pi_9","object":"payment_intent","amount":100,"currency":"nok","status":"requires_payment_method"}`))
		})

		intent, err := client.GetPaymentIntent(t.Context(), "pi_9")

		require.NoError(t, err)
		assert.False(t, intent.Succeeded())
	})

	t.Run("Unknown intent", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such payment_intent"}}`))
		})

		intent, err := client.GetPaymentIntent(t.Context(), "pi_missing")

		require.Error(t, err)
		assert.Nil(t, intent)
		assert.Contains(t, err.Error(), "failed to get payment intent pi_missing")
	})
}

func TestPing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/balance", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"balance","available":[],"pending":[]}`))
	})

	assert.NoError(t, client.Ping(t.Context()))
}
