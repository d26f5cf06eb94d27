// Package adapters provides the gorm-backed product repository.
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/feature/catalog/domain/entity"
	"storefront/internal/feature/catalog/usecase"
)

// ProductModel is the row shape of the products table.
type ProductModel struct {
	ID          uint            `gorm:"primaryKey"`
	Title       string          `gorm:"size:255;not null"`
	ImageURL    string          `gorm:"size:512;not null"`
	Description string          `gorm:"size:500;not null"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	UserID      uint            `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ProductModel) TableName() string {
	return "products"
}

func (m *ProductModel) toEntity() entity.Product {
	return entity.Product{
		ID:          m.ID,
		Title:       m.Title,
		ImageURL:    m.ImageURL,
		Description: m.Description,
		Price:       m.Price,
		UserID:      m.UserID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func productModelFromEntity(p *entity.Product) *ProductModel {
	return &ProductModel{
		ID:          p.ID,
		Title:       p.Title,
		ImageURL:    p.ImageURL,
		Description: p.Description,
		Price:       p.Price,
		UserID:      p.UserID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toEntities(models []ProductModel) []entity.Product {
	out := make([]entity.Product, len(models))
	for i := range models {
		out[i] = models[i].toEntity()
	}
	return out
}

type productGorm struct {
	db *gorm.DB
}

var _ usecase.ProductRepository = (*productGorm)(nil)

// NewProductGorm returns a product repository backed by db.
func NewProductGorm(db *gorm.DB) *productGorm {
	return &productGorm{db: db}
}

func (r *productGorm) Create(ctx context.Context, p *entity.Product) error {
	m := productModelFromEntity(p)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*p = m.toEntity()
	return nil
}

func (r *productGorm) FindByID(ctx context.Context, id uint) (*entity.Product, error) {
	var m ProductModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrProductNotFound
		}
		return nil, err
	}
	p := m.toEntity()
	return &p, nil
}

// FindByIDs returns the products among ids that still exist, in no particular order.
func (r *productGorm) FindByIDs(ctx context.Context, ids []uint) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var models []ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	return toEntities(models), nil
}

func (r *productGorm) Update(ctx context.Context, p *entity.Product) error {
	result := r.db.WithContext(ctx).
		Model(&ProductModel{ID: p.ID}).
		Select("Title", "ImageURL", "Description", "Price").
		Updates(productModelFromEntity(p))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrProductNotFound
	}
	return nil
}

func (r *productGorm) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&ProductModel{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrProductNotFound
	}
	return nil
}

func (r *productGorm) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ProductModel{}).Count(&n).Error
	return n, err
}

// List returns products in insertion order.
func (r *productGorm) List(ctx context.Context, offset, limit int) ([]entity.Product, error) {
	var models []ProductModel
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toEntities(models), nil
}

func (r *productGorm) ListByOwner(ctx context.Context, userID uint) ([]entity.Product, error) {
	var models []ProductModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toEntities(models), nil
}
