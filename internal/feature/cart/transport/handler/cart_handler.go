// Package handler serves the cart pages.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/feature/cart/domain/entity"
	"storefront/internal/feature/cart/transport/http/dto"
	"storefront/internal/feature/cart/usecase"
	catalogusecase "storefront/internal/feature/catalog/usecase"
	"storefront/internal/platform/web"
)

// CartUsecase is what the cart pages need.
type CartUsecase interface {
	Lines(ctx context.Context, userID uint) ([]entity.Line, error)
	Add(ctx context.Context, userID, productID uint) error
	Update(ctx context.Context, userID, productID uint, action usecase.UpdateType) error
}

type CartHandler struct {
	carts CartUsecase
}

func NewCartHandler(carts CartUsecase) *CartHandler {
	return &CartHandler{carts: carts}
}

// GetCart renders the cart with totals at current prices.
func (h *CartHandler) GetCart(c *gin.Context) {
	viewer, _ := web.CurrentViewer(c)
	lines, err := h.carts.Lines(c.Request.Context(), viewer.ID)
	if err != nil {
		web.Fail(c, err)
		return
	}
	web.Render(c, http.StatusOK, "shop/cart.html", gin.H{
		"pageTitle": "Your Cart",
		"path":      "/cart",
		"products":  lines,
		"total":     entity.Total(lines),
	})
}

// PostCart adds one of the posted product to the cart.
func (h *CartHandler) PostCart(c *gin.Context) {
	var req dto.AddToCartRequest
	if err := c.ShouldBind(&req); err != nil {
		web.RenderError(c, http.StatusBadRequest)
		return
	}
	viewer, _ := web.CurrentViewer(c)
	if err := h.carts.Add(c.Request.Context(), viewer.ID, req.ProductID); err != nil {
		if errors.Is(err, catalogusecase.ErrProductNotFound) {
			web.RenderError(c, http.StatusNotFound)
			return
		}
		web.Fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/cart")
}

// PostUpdateCart increases, decreases or deletes one cart line.
func (h *CartHandler) PostUpdateCart(c *gin.Context) {
	var req dto.UpdateCartRequest
	if err := c.ShouldBind(&req); err != nil {
		web.RenderError(c, http.StatusBadRequest)
		return
	}
	viewer, _ := web.CurrentViewer(c)
	err := h.carts.Update(c.Request.Context(), viewer.ID, req.ProductID, usecase.UpdateType(req.UpdateType))
	if err != nil && !errors.Is(err, usecase.ErrUnknownUpdateType) {
		web.Fail(c, err)
		return
	}
	if err != nil {
		zap.S().Warnw("ignored cart update", "user_id", viewer.ID, "update_type", req.UpdateType)
	}
	c.Redirect(http.StatusFound, "/cart")
}
