package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/feature/catalog/domain/entity"
	"storefront/internal/feature/catalog/transport/http/dto"
	"storefront/internal/feature/catalog/usecase"
	"storefront/internal/platform/web"
)

// ShopUsecase is what the public catalog pages need.
type ShopUsecase interface {
	ListPage(ctx context.Context, page int) ([]entity.Product, entity.Pagination, error)
	Get(ctx context.Context, id uint) (*entity.Product, error)
}

type ShopHandler struct {
	catalog ShopUsecase
}

func NewShopHandler(catalog ShopUsecase) *ShopHandler {
	return &ShopHandler{catalog: catalog}
}

// GetIndex renders one page of the catalog. Bad or missing ?page= values show page 1.
func (h *ShopHandler) GetIndex(c *gin.Context) {
	products, p, err := h.catalog.ListPage(c.Request.Context(), entity.ParsePage(c.Query("page")))
	if err != nil {
		web.Fail(c, err)
		return
	}
	web.Render(c, http.StatusOK, "shop/index.html", gin.H{
		"pageTitle":       "Shop",
		"path":            "/",
		"prods":           products,
		"currentPage":     p.CurrentPage,
		"nextPage":        p.NextPage,
		"previousPage":    p.PreviousPage,
		"hasNextPage":     p.HasNextPage,
		"hasPreviousPage": p.HasPrevPage,
		"lastPage":        p.LastPage,
	})
}

func (h *ShopHandler) GetProduct(c *gin.Context) {
	var uri dto.ProductURI
	if err := c.ShouldBindUri(&uri); err != nil {
		web.NotFound(c)
		return
	}
	product, err := h.catalog.Get(c.Request.Context(), uri.ProductID)
	if errors.Is(err, usecase.ErrProductNotFound) {
		web.NotFound(c)
		return
	}
	if err != nil {
		web.Fail(c, err)
		return
	}
	web.Render(c, http.StatusOK, "shop/product-detail.html", gin.H{
		"pageTitle": product.Title,
		"path":      "/products",
		"product":   product,
	})
}
