// Package entity defines orders, the immutable record of a completed checkout.
package entity

import (
	"time"

	"github.com/shopspring/decimal"

	cart "storefront/internal/feature/cart/domain/entity"
)

// Item is a product as it was when the order was placed.
type Item struct {
	ProductID uint
	Title     string
	Price     decimal.Decimal
	Quantity  int
}

func (it Item) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Order is a snapshot of a paid cart. It never changes after creation.
type Order struct {
	ID               uint
	UserID           uint
	UserEmail        string
	PaymentSessionID string
	Items            []Item
	TotalAmount      decimal.Decimal
	CreatedAt        time.Time
}

// NewOrder copies title, price and quantity out of lines so later product edits
// do not reach the order.
func NewOrder(userID uint, email, paymentSessionID string, lines []cart.Line) *Order {
	o := &Order{
		UserID:           userID,
		UserEmail:        email,
		PaymentSessionID: paymentSessionID,
		Items:            make([]Item, 0, len(lines)),
	}
	for _, l := range lines {
		o.Items = append(o.Items, Item{
			ProductID: l.Product.ID,
			Title:     l.Product.Title,
			Price:     l.Product.Price,
			Quantity:  l.Quantity,
		})
	}
	o.TotalAmount = o.Total()
	return o
}

// Total recomputes the sum of the snapshot lines.
func (o *Order) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

func (o *Order) BelongsTo(userID uint) bool {
	return o.UserID == userID
}
