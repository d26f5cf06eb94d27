package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80"

	"storefront/internal/feature/order/usecase"
)

type captured struct {
	form   url.Values
	header http.Header
}

// fakeStripe answers the two checkout session endpoints and records the last session created.
func fakeStripe(t *testing.T, paymentStatus string) (*httptest.Server, *captured) {
	t.Helper()

	last := &captured{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/checkout/sessions", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		last.form = r.PostForm
		last.header = r.Header.Clone()
		writeJSON(t, w, map[string]any{
			"id":     "cs_test_1",
			"object": "checkout.session",
			"url":    "https://checkout.stripe.test/c/pay/cs_test_1",
		})
	})
	mux.HandleFunc("GET /v1/checkout/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"id":                  r.PathValue("id"),
			"object":              "checkout.session",
			"payment_status":      paymentStatus,
			"client_reference_id": "7",
			"amount_total":        3098,
			"currency":            "inr",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, last
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func newTestGateway(srv *httptest.Server) *StripeGateway {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		HTTPClient:        srv.Client(),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return NewStripeGatewayWithBackend(backend, "sk_test_123", "inr")
}

func TestStripeGateway_CreateCheckoutSession(t *testing.T) {
	srv, last := fakeStripe(t, "unpaid")
	g := newTestGateway(srv)

	s, err := g.CreateCheckoutSession(context.Background(), usecase.CheckoutRequest{
		Items: []usecase.LineItem{
			{Name: "Mug", UnitAmount: 1299, Quantity: 2},
		},
		CustomerEmail:     "ann@example.com",
		ClientReferenceID: "7",
		SuccessURL:        "http://shop.test/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         "http://shop.test/checkout/cancel",
	})
	require.NoError(t, err)

	assert.Equal(t, "cs_test_1", s.ID)
	assert.Equal(t, "https://checkout.stripe.test/c/pay/cs_test_1", s.URL)
	assert.False(t, s.Paid)

	form := last.form
	assert.Equal(t, "payment", form.Get("mode"))
	assert.Equal(t, "card", form.Get("payment_method_types[0]"))
	assert.Equal(t, "ann@example.com", form.Get("customer_email"))
	assert.Equal(t, "7", form.Get("client_reference_id"))
	assert.Equal(t, "inr", form.Get("line_items[0][price_data][currency]"))
	assert.Equal(t, "1299", form.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "Mug", form.Get("line_items[0][price_data][product_data][name]"))
	assert.Equal(t, "2", form.Get("line_items[0][quantity]"))
	assert.Equal(t, "Bearer sk_test_123", last.header.Get("Authorization"))
}

func TestStripeGateway_GetCheckoutSession(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		wantPaid bool
	}{
		{name: "paid", status: "paid", wantPaid: true},
		{name: "unpaid", status: "unpaid", wantPaid: false},
		{name: "no payment required", status: "no_payment_required", wantPaid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := fakeStripe(t, tt.status)
			g := newTestGateway(srv)

			s, err := g.GetCheckoutSession(context.Background(), "cs_test_9")
			require.NoError(t, err)
			assert.Equal(t, "cs_test_9", s.ID)
			assert.Equal(t, tt.wantPaid, s.Paid)
			assert.Equal(t, "7", s.ClientReferenceID)
			assert.Equal(t, int64(3098), s.AmountTotal)
			assert.Equal(t, "inr", s.Currency)
		})
	}
}

func TestStripeGateway_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such checkout.session"}}`))
	}))
	defer srv.Close()

	_, err := newTestGateway(srv).GetCheckoutSession(context.Background(), "cs_missing")
	require.Error(t, err)

	var stripeErr *stripe.Error
	require.ErrorAs(t, err, &stripeErr)
	assert.Equal(t, stripe.ErrorTypeInvalidRequest, stripeErr.Type)
}
