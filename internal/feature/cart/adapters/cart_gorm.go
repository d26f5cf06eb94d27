package adapters

import (
	"context"

	"gorm.io/gorm"

	"storefront/internal/feature/cart/domain/entity"
	"storefront/internal/feature/cart/usecase"
)

// CartItemModel is one row of cart_items. Position keeps the order lines were added in.
type CartItemModel struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_cart_user_product"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_cart_user_product;index"`
	Position  int  `gorm:"not null"`
	Quantity  int  `gorm:"not null"`
}

func (CartItemModel) TableName() string {
	return "cart_items"
}

type cartGorm struct {
	db *gorm.DB
}

var _ usecase.CartRepository = (*cartGorm)(nil)

// NewCartGorm returns a cart repository backed by db.
func NewCartGorm(db *gorm.DB) *cartGorm {
	return &cartGorm{db: db}
}

func (r *cartGorm) Get(ctx context.Context, userID uint) (*entity.Cart, error) {
	var rows []CartItemModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	c := &entity.Cart{UserID: userID, Items: make([]entity.Item, 0, len(rows))}
	for _, row := range rows {
		c.Items = append(c.Items, entity.Item{ProductID: row.ProductID, Quantity: row.Quantity})
	}
	return c, nil
}

// Save rewrites the user's lines in one transaction.
func (r *cartGorm) Save(ctx context.Context, c *entity.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", c.UserID).Delete(&CartItemModel{}).Error; err != nil {
			return err
		}
		if len(c.Items) == 0 {
			return nil
		}
		rows := make([]CartItemModel, len(c.Items))
		for i, it := range c.Items {
			rows[i] = CartItemModel{
				UserID:    c.UserID,
				ProductID: it.ProductID,
				Position:  i,
				Quantity:  it.Quantity,
			}
		}
		return tx.Create(&rows).Error
	})
}

func (r *cartGorm) RemoveProductFromAllCarts(ctx context.Context, productID uint) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&CartItemModel{}).Error
}
