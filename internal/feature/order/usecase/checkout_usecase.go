package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	cart "storefront/internal/feature/cart/domain/entity"
	"storefront/internal/feature/order/domain/entity"
)

// SuccessPath and CancelPath are where the payment page sends the buyer back to.
const (
	SuccessPath = "/checkout/success"
	CancelPath  = "/checkout/cancel"
)

// Checkout is what the checkout page shows.
type Checkout struct {
	Lines   []cart.Line
	Total   decimal.Decimal
	Session *PaymentSession
}

// CheckoutUsecase turns carts into payment sessions and paid sessions into orders.
type CheckoutUsecase struct {
	carts   CartService
	orders  OrderRepository
	gateway PaymentGateway
}

func NewCheckoutUsecase(carts CartService, orders OrderRepository, gateway PaymentGateway) *CheckoutUsecase {
	return &CheckoutUsecase{carts: carts, orders: orders, gateway: gateway}
}

// Start opens a payment session for the customer's cart. origin is the scheme and host
// the processor redirects back to.
func (u *CheckoutUsecase) Start(ctx context.Context, c Customer, origin string) (*Checkout, error) {
	lines, err := u.carts.Lines(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	req := CheckoutRequest{
		Items:             make([]LineItem, 0, len(lines)),
		CustomerEmail:     c.Email,
		ClientReferenceID: strconv.FormatUint(uint64(c.ID), 10),
		SuccessURL:        origin + SuccessPath + "?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         origin + CancelPath,
	}
	for _, l := range lines {
		req.Items = append(req.Items, LineItem{
			Name:       l.Product.Title,
			UnitAmount: MinorUnits(l.Product.Price),
			Quantity:   int64(l.Quantity),
		})
	}

	session, err := u.gateway.CreateCheckoutSession(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &Checkout{Lines: lines, Total: cart.Total(lines), Session: session}, nil
}

// Complete records the order for a paid session and empties the cart.
// Completing the same session again returns the existing order.
func (u *CheckoutUsecase) Complete(ctx context.Context, c Customer, sessionID string) (*entity.Order, error) {
	if sessionID == "" {
		return nil, ErrPaymentNotCompleted
	}

	existing, err := u.existing(ctx, c, sessionID)
	if err != nil || existing != nil {
		return existing, err
	}

	session, err := u.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}
	if !session.Paid || session.ClientReferenceID != strconv.FormatUint(uint64(c.ID), 10) {
		zap.S().Warnw("checkout session not payable for user",
			"session_id", sessionID,
			"user_id", c.ID,
			"paid", session.Paid,
		)
		return nil, ErrPaymentNotCompleted
	}

	lines, err := u.carts.Lines(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if due := AmountDue(lines); session.AmountTotal != due {
		zap.S().Warnw("cart changed after payment",
			"session_id", sessionID,
			"user_id", c.ID,
			"paid", session.AmountTotal,
			"currency", session.Currency,
			"due", due,
		)
		return nil, ErrPaymentMismatch
	}

	order := entity.NewOrder(c.ID, c.Email, sessionID, lines)
	if err := u.orders.Create(ctx, order); err != nil {
		if errors.Is(err, ErrOrderExists) {
			return u.existing(ctx, c, sessionID)
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := u.carts.Clear(ctx, c.ID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	zap.S().Infow("order placed", "order_id", order.ID, "user_id", c.ID, "total", order.TotalAmount.StringFixed(2))
	return order, nil
}

// existing returns the order already recorded for sessionID, or nil.
func (u *CheckoutUsecase) existing(ctx context.Context, c Customer, sessionID string) (*entity.Order, error) {
	o, err := u.orders.FindByPaymentSessionID(ctx, sessionID)
	if errors.Is(err, ErrOrderNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !o.BelongsTo(c.ID) {
		return nil, ErrOrderAccessDenied
	}
	return o, nil
}

// AmountDue is what the processor charges for lines, in the currency's smallest unit.
func AmountDue(lines []cart.Line) int64 {
	var total int64
	for _, l := range lines {
		total += MinorUnits(l.Product.Price) * int64(l.Quantity)
	}
	return total
}

// MinorUnits converts a price to the processor's smallest currency unit.
func MinorUnits(price decimal.Decimal) int64 {
	return price.Shift(2).Round(0).IntPart()
}
