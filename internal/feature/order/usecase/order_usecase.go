package usecase

import (
	"context"
	"io"

	"storefront/internal/feature/order/domain/entity"
)

// OrderUsecase reads a user's orders and renders their invoices.
type OrderUsecase struct {
	orders   OrderRepository
	invoices InvoiceWriter
}

func NewOrderUsecase(orders OrderRepository, invoices InvoiceWriter) *OrderUsecase {
	return &OrderUsecase{orders: orders, invoices: invoices}
}

// List returns the user's orders newest first.
func (u *OrderUsecase) List(ctx context.Context, userID uint) ([]entity.Order, error) {
	return u.orders.ListByUser(ctx, userID)
}

// GetOwned returns order id if it belongs to userID.
func (u *OrderUsecase) GetOwned(ctx context.Context, userID, id uint) (*entity.Order, error) {
	o, err := u.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.BelongsTo(userID) {
		return nil, ErrOrderAccessDenied
	}
	return o, nil
}

// InvoiceFileName is the name the invoice of o is stored and served under.
func (u *OrderUsecase) InvoiceFileName(o *entity.Order) string {
	return u.invoices.FileName(o)
}

// WriteInvoice streams the invoice of o to w.
func (u *OrderUsecase) WriteInvoice(o *entity.Order, c Customer, w io.Writer) error {
	return u.invoices.Write(o, c, w)
}
