// Package payment opens and verifies hosted checkout sessions with Stripe.
package payment

import (
	"context"
	"net/http"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"

	"storefront/internal/feature/order/usecase"
)

// StripeGateway is a usecase.PaymentGateway backed by Stripe Checkout.
type StripeGateway struct {
	sessions session.Client
	currency string
}

var _ usecase.PaymentGateway = (*StripeGateway)(nil)

// NewStripeGateway returns a gateway on the Stripe API backend. A nil client uses stripe-go's default.
func NewStripeGateway(secretKey, currency string, client *http.Client) *StripeGateway {
	if client == nil {
		return NewStripeGatewayWithBackend(stripe.GetBackend(stripe.APIBackend), secretKey, currency)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient:        client,
		MaxNetworkRetries: stripe.Int64(2),
	})
	return NewStripeGatewayWithBackend(backend, secretKey, currency)
}

// NewStripeGatewayWithBackend returns a gateway talking to backend, for tests and proxies.
func NewStripeGatewayWithBackend(backend stripe.Backend, secretKey, currency string) *StripeGateway {
	if currency == "" {
		currency = string(stripe.CurrencyINR)
	}
	return &StripeGateway{
		sessions: session.Client{B: backend, Key: secretKey},
		currency: currency,
	}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req usecase.CheckoutRequest) (*usecase.PaymentSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		CustomerEmail:      stripe.String(req.CustomerEmail),
		ClientReferenceID:  stripe.String(req.ClientReferenceID),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
		LineItems:          make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items)),
	}
	params.Context = ctx
	for _, it := range req.Items {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(g.currency),
				UnitAmount: stripe.Int64(it.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Name),
				},
			},
			Quantity: stripe.Int64(it.Quantity),
		})
	}

	s, err := g.sessions.New(params)
	if err != nil {
		return nil, err
	}
	return toPaymentSession(s), nil
}

func (g *StripeGateway) GetCheckoutSession(ctx context.Context, id string) (*usecase.PaymentSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := g.sessions.Get(id, params)
	if err != nil {
		return nil, err
	}
	return toPaymentSession(s), nil
}

func toPaymentSession(s *stripe.CheckoutSession) *usecase.PaymentSession {
	return &usecase.PaymentSession{
		ID:                s.ID,
		URL:               s.URL,
		Paid:              s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		ClientReferenceID: s.ClientReferenceID,
		AmountTotal:       s.AmountTotal,
		Currency:          string(s.Currency),
	}
}
