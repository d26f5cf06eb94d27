package usecase

import "errors"

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderAccessDenied is returned when a user asks for someone else's order.
	ErrOrderAccessDenied = errors.New("order belongs to another user")
	// ErrOrderExists is returned by repositories when an order for the payment session is already stored.
	ErrOrderExists = errors.New("order already exists for payment session")
	ErrEmptyCart   = errors.New("cart is empty")
	// ErrPaymentNotCompleted is returned when the processor does not report the session as paid by the user.
	ErrPaymentNotCompleted = errors.New("payment not completed")
	// ErrPaymentMismatch is returned when the paid amount differs from the cart being ordered.
	ErrPaymentMismatch = errors.New("paid amount does not match cart")
)
