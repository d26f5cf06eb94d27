package usecase

import (
	"context"
	"fmt"

	"storefront/internal/feature/cart/domain/entity"
	catalog "storefront/internal/feature/catalog/domain/entity"
)

// CartRepository persists one cart per user.
type CartRepository interface {
	// Get returns the user's cart, empty if nothing was ever saved.
	Get(ctx context.Context, userID uint) (*entity.Cart, error)
	// Save replaces the stored lines with c's lines.
	Save(ctx context.Context, c *entity.Cart) error
	RemoveProductFromAllCarts(ctx context.Context, productID uint) error
}

// ProductLookup reads current product data for cart lines.
type ProductLookup interface {
	FindByID(ctx context.Context, id uint) (*catalog.Product, error)
	FindByIDs(ctx context.Context, ids []uint) ([]catalog.Product, error)
}

// UpdateType selects the POST /update-cart action.
type UpdateType string

const (
	IncreaseItem UpdateType = "increaseItem"
	DecreaseItem UpdateType = "decreaseItem"
	DeleteItem   UpdateType = "deleteItem"
)

// CartUsecase mutates carts and joins them with current product prices.
type CartUsecase struct {
	carts    CartRepository
	products ProductLookup
}

func NewCartUsecase(carts CartRepository, products ProductLookup) *CartUsecase {
	return &CartUsecase{carts: carts, products: products}
}

// Lines returns the user's cart lines with current product data.
// Lines whose product no longer exists are skipped.
func (u *CartUsecase) Lines(ctx context.Context, userID uint) ([]entity.Line, error) {
	c, err := u.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if c.IsEmpty() {
		return []entity.Line{}, nil
	}

	products, err := u.products.FindByIDs(ctx, c.ProductIDs())
	if err != nil {
		return nil, fmt.Errorf("load cart products: %w", err)
	}
	byID := make(map[uint]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]entity.Line, 0, len(c.Items))
	for _, it := range c.Items {
		p, ok := byID[it.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, entity.Line{Product: p, Quantity: it.Quantity})
	}
	return lines, nil
}

// Add puts one more of productID in the user's cart. The product must exist.
func (u *CartUsecase) Add(ctx context.Context, userID, productID uint) error {
	if _, err := u.products.FindByID(ctx, productID); err != nil {
		return err
	}
	c, err := u.carts.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	c.Add(productID)
	return u.carts.Save(ctx, c)
}

// Update applies one update-cart action. Acting on a product not in the cart changes nothing.
func (u *CartUsecase) Update(ctx context.Context, userID, productID uint, action UpdateType) error {
	c, err := u.carts.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}

	var changed bool
	switch action {
	case IncreaseItem:
		changed = c.Increase(productID)
	case DecreaseItem:
		changed = c.Decrease(productID)
	case DeleteItem:
		changed = c.Remove(productID)
	default:
		return ErrUnknownUpdateType
	}
	if !changed {
		return nil
	}
	return u.carts.Save(ctx, c)
}

func (u *CartUsecase) Clear(ctx context.Context, userID uint) error {
	return u.carts.Save(ctx, &entity.Cart{UserID: userID})
}

// RemoveProductFromAllCarts drops productID from every cart.
func (u *CartUsecase) RemoveProductFromAllCarts(ctx context.Context, productID uint) error {
	return u.carts.RemoveProductFromAllCarts(ctx, productID)
}
