package stripe

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

const StatusSucceeded = string(stripe.PaymentIntentStatusSucceeded)

// PaymentIntent is the part of a Stripe payment intent the checkout needs to
// confirm what was actually charged.
type PaymentIntent struct {
	ID       string
	Amount   int64
	Currency string
	Status   string
}

func (p *PaymentIntent) Succeeded() bool {
	return p.Status == StatusSucceeded
}

// Client only reads payment state; charges are created by the payment page.
type Client interface {
	GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error)
	Ping(ctx context.Context) error
}

type stripeClient struct {
	api *client.API
}

func NewStripeClient(apiKey string) Client {
	return NewStripeClientWithBackends(apiKey, nil)
}

// NewStripeClientWithBackends lets tests point the client at a fake API.
func NewStripeClientWithBackends(apiKey string, backends *stripe.Backends) Client {
	api := &client.API{}
	api.Init(apiKey, backends)

	return &stripeClient{api: api}
}

func (s *stripeClient) GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := s.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent %s: %w", id, err)
	}

	return &PaymentIntent{
		ID:       intent.ID,
		Amount:   intent.Amount,
		Currency: string(intent.Currency),
		Status:   string(intent.Status),
	}, nil
}

func (s *stripeClient) Ping(ctx context.Context) error {
	params := &stripe.BalanceParams{}
	params.Context = ctx

	if _, err := s.api.Balance.Get(params); err != nil {
		return fmt.Errorf("failed to connect to stripe: %w", err)
	}

	return nil
}
