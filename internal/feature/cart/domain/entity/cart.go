// Package entity defines the shopping cart aggregate.
package entity

import (
	"github.com/shopspring/decimal"

	catalog "storefront/internal/feature/catalog/domain/entity"
)

// Item is one cart line. Quantity is always at least 1.
type Item struct {
	ProductID uint
	Quantity  int
}

// Cart is a user's ordered list of lines, at most one per product.
type Cart struct {
	UserID uint
	Items  []Item
}

func (c *Cart) index(productID uint) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// Add increments the line for productID, appending a new line with quantity 1 if absent.
func (c *Cart) Add(productID uint) {
	if i := c.index(productID); i >= 0 {
		c.Items[i].Quantity++
		return
	}
	c.Items = append(c.Items, Item{ProductID: productID, Quantity: 1})
}

// Increase adds one to an existing line. It reports whether the line existed.
func (c *Cart) Increase(productID uint) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Items[i].Quantity++
	return true
}

// Decrease takes one from an existing line and drops the line when it reaches zero.
func (c *Cart) Decrease(productID uint) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Items[i].Quantity--
	if c.Items[i].Quantity <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
	return true
}

// Remove drops the line for productID regardless of its quantity.
func (c *Cart) Remove(productID uint) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ProductIDs returns the product of every line in cart order.
func (c *Cart) ProductIDs() []uint {
	ids := make([]uint, len(c.Items))
	for i, it := range c.Items {
		ids[i] = it.ProductID
	}
	return ids
}

// Line is a cart item joined with the product's current data.
type Line struct {
	Product  catalog.Product
	Quantity int
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Total sums price times quantity over lines.
func Total(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}
