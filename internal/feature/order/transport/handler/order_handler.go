// Package handler serves checkout, order history and invoices.
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/feature/order/domain/entity"
	"storefront/internal/feature/order/transport/http/dto"
	"storefront/internal/feature/order/usecase"
	"storefront/internal/platform/web"
)

// CheckoutUsecase opens payment sessions and finalises paid ones.
type CheckoutUsecase interface {
	Start(ctx context.Context, c usecase.Customer, origin string) (*usecase.Checkout, error)
	Complete(ctx context.Context, c usecase.Customer, sessionID string) (*entity.Order, error)
}

// OrderUsecase reads orders and renders invoices.
type OrderUsecase interface {
	List(ctx context.Context, userID uint) ([]entity.Order, error)
	GetOwned(ctx context.Context, userID, id uint) (*entity.Order, error)
	InvoiceFileName(o *entity.Order) string
	WriteInvoice(o *entity.Order, c usecase.Customer, w io.Writer) error
}

type OrderHandler struct {
	checkout CheckoutUsecase
	orders   OrderUsecase
}

func NewOrderHandler(checkout CheckoutUsecase, orders OrderUsecase) *OrderHandler {
	return &OrderHandler{checkout: checkout, orders: orders}
}

func customer(c *gin.Context) usecase.Customer {
	v, _ := web.CurrentViewer(c)
	return usecase.Customer{ID: v.ID, Name: v.Name, Email: v.Email}
}

// origin is the scheme and host the browser used to reach us.
func origin(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}

// GetCheckout opens a payment session for the cart and shows the summary page.
// GET /checkout/cancel lands here too so the buyer can try again.
func (h *OrderHandler) GetCheckout(c *gin.Context) {
	co, err := h.checkout.Start(c.Request.Context(), customer(c), origin(c))
	if errors.Is(err, usecase.ErrEmptyCart) {
		web.AddFlash(c, web.FlashError, "Your cart is empty.")
		c.Redirect(http.StatusFound, "/cart")
		return
	}
	if err != nil {
		web.Fail(c, err)
		return
	}
	web.Render(c, http.StatusOK, "shop/checkout.html", gin.H{
		"pageTitle":   "Checkout",
		"path":        "/checkout",
		"products":    co.Lines,
		"totalSum":    co.Total,
		"sessionId":   co.Session.ID,
		"checkoutURL": co.Session.URL,
	})
}

// GetCheckoutSuccess records the order once the processor confirms payment.
func (h *OrderHandler) GetCheckoutSuccess(c *gin.Context) {
	var q dto.CheckoutSuccessQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		web.RenderError(c, http.StatusBadRequest)
		return
	}

	buyer := customer(c)
	order, err := h.checkout.Complete(c.Request.Context(), buyer, q.SessionID)
	switch {
	case errors.Is(err, usecase.ErrPaymentNotCompleted):
		web.AddFlash(c, web.FlashError, "Payment was not completed.")
		c.Redirect(http.StatusFound, "/cart")
		return
	case errors.Is(err, usecase.ErrEmptyCart):
		web.AddFlash(c, web.FlashError, "Your cart is empty.")
		c.Redirect(http.StatusFound, "/cart")
		return
	case errors.Is(err, usecase.ErrPaymentMismatch):
		web.AddFlash(c, web.FlashError, "Your cart changed after payment. Please contact us about this order.")
		c.Redirect(http.StatusFound, "/cart")
		return
	case errors.Is(err, usecase.ErrOrderAccessDenied):
		web.RenderError(c, http.StatusForbidden)
		return
	case err != nil:
		web.Fail(c, err)
		return
	}

	zap.S().Infow("checkout completed", "order_id", order.ID, "user_id", buyer.ID, "remote_addr", c.ClientIP())
	c.Redirect(http.StatusFound, "/orders")
}

// GetOrders lists the user's orders newest first.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	buyer := customer(c)
	orders, err := h.orders.List(c.Request.Context(), buyer.ID)
	if err != nil {
		web.Fail(c, err)
		return
	}
	web.Render(c, http.StatusOK, "shop/orders.html", gin.H{
		"pageTitle": "Orders",
		"path":      "/orders",
		"orders":    orders,
	})
}

// GetInvoice streams the PDF invoice of one of the user's orders.
func (h *OrderHandler) GetInvoice(c *gin.Context) {
	var uri dto.InvoiceURI
	if err := c.ShouldBindUri(&uri); err != nil {
		web.RenderError(c, http.StatusNotFound)
		return
	}

	buyer := customer(c)
	order, err := h.orders.GetOwned(c.Request.Context(), buyer.ID, uri.OrderID)
	switch {
	case errors.Is(err, usecase.ErrOrderNotFound):
		web.RenderError(c, http.StatusNotFound)
		return
	case errors.Is(err, usecase.ErrOrderAccessDenied):
		zap.S().Warnw("invoice requested for another user's order",
			"order_id", uri.OrderID, "user_id", buyer.ID, "remote_addr", c.ClientIP())
		web.RenderError(c, http.StatusForbidden)
		return
	case err != nil:
		web.Fail(c, err)
		return
	}

	out := &pdfResponse{c: c, name: h.orders.InvoiceFileName(order)}
	if err := h.orders.WriteInvoice(order, buyer, out); err != nil {
		zap.S().Errorw("failed to write invoice", "order_id", order.ID, "error", err)
		_ = c.Error(err)
	}
}

// pdfResponse sets the PDF headers on the first write, so a failure before any
// output still gets the HTML error page.
type pdfResponse struct {
	c       *gin.Context
	name    string
	started bool
}

func (p *pdfResponse) Write(b []byte) (int, error) {
	if !p.started {
		p.started = true
		p.c.Header("Content-Type", "application/pdf")
		p.c.Header("Content-Disposition", `inline; filename="`+p.name+`"`)
		p.c.Status(http.StatusOK)
	}
	return p.c.Writer.Write(b)
}
