package usecase

import (
	"context"
	"io"

	cart "storefront/internal/feature/cart/domain/entity"
	"storefront/internal/feature/order/domain/entity"
)

// OrderRepository persists orders. Create returns ErrOrderExists when the payment
// session already has an order.
type OrderRepository interface {
	Create(ctx context.Context, o *entity.Order) error
	FindByID(ctx context.Context, id uint) (*entity.Order, error)
	FindByPaymentSessionID(ctx context.Context, sessionID string) (*entity.Order, error)
	// ListByUser returns the user's orders newest first.
	ListByUser(ctx context.Context, userID uint) ([]entity.Order, error)
}

// CartService reads and empties a user's cart.
type CartService interface {
	Lines(ctx context.Context, userID uint) ([]cart.Line, error)
	Clear(ctx context.Context, userID uint) error
}

// LineItem is one priced line sent to the payment processor.
// UnitAmount is in the currency's smallest unit.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// CheckoutRequest describes a hosted payment page to open.
type CheckoutRequest struct {
	Items             []LineItem
	CustomerEmail     string
	ClientReferenceID string
	SuccessURL        string
	CancelURL         string
}

// PaymentSession is the processor's view of a checkout.
// AmountTotal is what the buyer was charged, in the currency's smallest unit.
type PaymentSession struct {
	ID                string
	URL               string
	Paid              bool
	ClientReferenceID string
	AmountTotal       int64
	Currency          string
}

// PaymentGateway opens and inspects hosted checkout sessions.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*PaymentSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*PaymentSession, error)
}

// Customer identifies the buyer for checkout and invoices.
type Customer struct {
	ID    uint
	Name  string
	Email string
}

// InvoiceWriter renders an order's invoice to w and keeps a copy on disk.
type InvoiceWriter interface {
	Write(o *entity.Order, c Customer, w io.Writer) error
	FileName(o *entity.Order) string
}
