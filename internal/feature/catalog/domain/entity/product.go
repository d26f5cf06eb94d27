// Package entity defines the domain entities for the catalog feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is an item listed for sale by one user.
type Product struct {
	ID          uint
	Title       string
	ImageURL    string
	Description string
	Price       decimal.Decimal
	UserID      uint
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnedBy reports whether userID listed the product.
func (p *Product) OwnedBy(userID uint) bool {
	return p.UserID == userID
}
