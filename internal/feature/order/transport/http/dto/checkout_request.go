// Package dto holds the request payloads of the checkout and order pages.
package dto

// CheckoutSuccessQuery is the query the payment page redirects back with.
type CheckoutSuccessQuery struct {
	SessionID string `form:"session_id"`
}

// InvoiceURI is the GET /orders/:orderId path.
type InvoiceURI struct {
	OrderID uint `uri:"orderId" binding:"required"`
}
