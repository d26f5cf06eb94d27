package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/feature/catalog/domain/entity"
)

// ProductRepository abstracts product persistence.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	FindByID(ctx context.Context, id uint) (*entity.Product, error)
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, offset, limit int) ([]entity.Product, error)
	ListByOwner(ctx context.Context, userID uint) ([]entity.Product, error)
}

// CartCleaner drops a product from every cart that holds it.
type CartCleaner interface {
	RemoveProductFromAllCarts(ctx context.Context, productID uint) error
}

// ImageRemover deletes a stored product image.
type ImageRemover interface {
	Delete(url string) error
}

// ProductInput is the validated content of the add and edit forms.
// An empty ImageURL on update keeps the current image.
type ProductInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	ImageURL    string
}

// CatalogUsecase lists products for shoppers and manages them for their owners.
type CatalogUsecase struct {
	products ProductRepository
	carts    CartCleaner
	images   ImageRemover
	pageSize int
}

// NewCatalogUsecase returns a catalog listing pageSize products per page.
func NewCatalogUsecase(products ProductRepository, carts CartCleaner, images ImageRemover, pageSize int) *CatalogUsecase {
	if pageSize <= 0 {
		pageSize = 3
	}
	return &CatalogUsecase{
		products: products,
		carts:    carts,
		images:   images,
		pageSize: pageSize,
	}
}

// ListPage returns one page of the catalog and its navigation.
func (u *CatalogUsecase) ListPage(ctx context.Context, page int) ([]entity.Product, entity.Pagination, error) {
	if page < 1 {
		page = 1
	}
	total, err := u.products.Count(ctx)
	if err != nil {
		return nil, entity.Pagination{}, fmt.Errorf("count products: %w", err)
	}
	items, err := u.products.List(ctx, entity.Offset(page, u.pageSize), u.pageSize)
	if err != nil {
		return nil, entity.Pagination{}, fmt.Errorf("list products: %w", err)
	}
	return items, entity.NewPagination(page, u.pageSize, total), nil
}

func (u *CatalogUsecase) Get(ctx context.Context, id uint) (*entity.Product, error) {
	return u.products.FindByID(ctx, id)
}

// ListOwned returns every product userID listed.
func (u *CatalogUsecase) ListOwned(ctx context.Context, userID uint) ([]entity.Product, error) {
	return u.products.ListByOwner(ctx, userID)
}

// GetOwned returns product id if userID owns it.
func (u *CatalogUsecase) GetOwned(ctx context.Context, userID, id uint) (*entity.Product, error) {
	p, err := u.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.OwnedBy(userID) {
		return nil, ErrNotProductOwner
	}
	return p, nil
}

func (u *CatalogUsecase) Create(ctx context.Context, userID uint, in ProductInput) (*entity.Product, error) {
	p := &entity.Product{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		UserID:      userID,
	}
	if err := u.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the owner's product fields. A replaced image is deleted best effort.
func (u *CatalogUsecase) Update(ctx context.Context, userID, id uint, in ProductInput) error {
	p, err := u.GetOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	oldImage := ""
	p.Title = in.Title
	p.Description = in.Description
	p.Price = in.Price
	if in.ImageURL != "" && in.ImageURL != p.ImageURL {
		oldImage = p.ImageURL
		p.ImageURL = in.ImageURL
	}
	if err := u.products.Update(ctx, p); err != nil {
		return err
	}

	if oldImage != "" {
		u.removeImage(oldImage, id)
	}
	return nil
}

// Delete removes the owner's product, drops it from every cart and deletes its image.
func (u *CatalogUsecase) Delete(ctx context.Context, userID, id uint) error {
	p, err := u.GetOwned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := u.products.Delete(ctx, id); err != nil {
		return err
	}
	if err := u.carts.RemoveProductFromAllCarts(ctx, id); err != nil {
		return fmt.Errorf("remove product %d from carts: %w", id, err)
	}
	u.removeImage(p.ImageURL, id)
	return nil
}

func (u *CatalogUsecase) removeImage(url string, productID uint) {
	if url == "" {
		return
	}
	if err := u.images.Delete(url); err != nil {
		zap.S().Warnw("failed to delete product image", "product_id", productID, "image", url, "error", err)
	}
}
