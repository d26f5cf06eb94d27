// Package handler serves the shop listing and the owner's product admin pages.
package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/feature/catalog/domain/entity"
	"storefront/internal/feature/catalog/transport/http/dto"
	"storefront/internal/feature/catalog/usecase"
	"storefront/internal/platform/storage"
	"storefront/internal/platform/validation"
	"storefront/internal/platform/web"
)

const notImageMessage = "Attached file is not an image"

// AdminUsecase is what the product admin pages need.
type AdminUsecase interface {
	ListOwned(ctx context.Context, userID uint) ([]entity.Product, error)
	GetOwned(ctx context.Context, userID, id uint) (*entity.Product, error)
	Create(ctx context.Context, userID uint, in usecase.ProductInput) (*entity.Product, error)
	Update(ctx context.Context, userID, id uint, in usecase.ProductInput) error
	Delete(ctx context.Context, userID, id uint) error
}

// ImageStore keeps uploaded product images.
type ImageStore interface {
	Save(fh *multipart.FileHeader) (string, error)
	Delete(url string) error
}

// productForm is what the edit-product template shows in its inputs.
type productForm struct {
	ID          uint
	Title       string
	Price       string
	Description string
	ImageURL    string
}

type AdminHandler struct {
	catalog AdminUsecase
	images  ImageStore
}

func NewAdminHandler(catalog AdminUsecase, images ImageStore) *AdminHandler {
	return &AdminHandler{catalog: catalog, images: images}
}

// GetProducts lists the viewer's own products.
func (h *AdminHandler) GetProducts(c *gin.Context) {
	viewer, _ := web.CurrentViewer(c)
	products, err := h.catalog.ListOwned(c.Request.Context(), viewer.ID)
	if err != nil {
		web.Fail(c, err)
		return
	}
	web.Render(c, http.StatusOK, "admin/products.html", gin.H{
		"pageTitle": "Admin Products",
		"path":      "/admin/products",
		"prods":     products,
	})
}

func (h *AdminHandler) GetAddProduct(c *gin.Context) {
	h.renderForm(c, http.StatusOK, false, productForm{}, "", map[string]bool{})
}

// PostAddProduct validates the form and the image, then lists the product.
func (h *AdminHandler) PostAddProduct(c *gin.Context) {
	var req dto.ProductRequest
	bindErr := c.ShouldBind(&req)
	form := productForm{Title: req.Title, Price: req.Price, Description: req.Description}

	file, err := c.FormFile("image")
	if err != nil {
		h.renderForm(c, http.StatusUnprocessableEntity, false, form, notImageMessage, map[string]bool{})
		return
	}
	if bindErr != nil {
		h.renderForm(c, http.StatusUnprocessableEntity, false, form, validation.FirstMessage(bindErr), validation.InvalidFields(bindErr))
		return
	}

	imageURL, err := h.images.Save(file)
	if errors.Is(err, storage.ErrNotImage) {
		h.renderForm(c, http.StatusUnprocessableEntity, false, form, notImageMessage, map[string]bool{})
		return
	}
	if err != nil {
		web.Fail(c, err)
		return
	}

	viewer, _ := web.CurrentViewer(c)
	p, err := h.catalog.Create(c.Request.Context(), viewer.ID, usecase.ProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.DecimalPrice(),
		ImageURL:    imageURL,
	})
	if err != nil {
		h.discardImage(imageURL)
		web.Fail(c, err)
		return
	}
	zap.S().Infow("product created", "product_id", p.ID, "user_id", viewer.ID)
	c.Redirect(http.StatusFound, "/admin/products")
}

// GetEditProduct shows the edit form. Without ?edit=true, or for another user's product, it redirects home.
func (h *AdminHandler) GetEditProduct(c *gin.Context) {
	if c.Query("edit") != "true" {
		c.Redirect(http.StatusFound, "/")
		return
	}
	var uri dto.ProductURI
	if err := c.ShouldBindUri(&uri); err != nil {
		web.NotFound(c)
		return
	}

	viewer, _ := web.CurrentViewer(c)
	p, err := h.catalog.GetOwned(c.Request.Context(), viewer.ID, uri.ProductID)
	switch {
	case errors.Is(err, usecase.ErrProductNotFound):
		web.NotFound(c)
		return
	case errors.Is(err, usecase.ErrNotProductOwner):
		c.Redirect(http.StatusFound, "/")
		return
	case err != nil:
		web.Fail(c, err)
		return
	}

	h.renderForm(c, http.StatusOK, true, productForm{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price.StringFixed(2),
		Description: p.Description,
		ImageURL:    p.ImageURL,
	}, "", map[string]bool{})
}

// PostEditProduct saves the owner's changes. A new image replaces the old one; no image keeps it.
func (h *AdminHandler) PostEditProduct(c *gin.Context) {
	var req dto.EditProductRequest
	if err := c.ShouldBind(&req); err != nil {
		form := productForm{ID: req.ProductID, Title: req.Title, Price: req.Price, Description: req.Description}
		h.renderForm(c, http.StatusUnprocessableEntity, true, form, validation.FirstMessage(err), validation.InvalidFields(err))
		return
	}

	imageURL := ""
	if file, err := c.FormFile("image"); err == nil {
		imageURL, err = h.images.Save(file)
		if errors.Is(err, storage.ErrNotImage) {
			form := productForm{ID: req.ProductID, Title: req.Title, Price: req.Price, Description: req.Description}
			h.renderForm(c, http.StatusUnprocessableEntity, true, form, notImageMessage, map[string]bool{})
			return
		}
		if err != nil {
			web.Fail(c, err)
			return
		}
	}

	viewer, _ := web.CurrentViewer(c)
	err := h.catalog.Update(c.Request.Context(), viewer.ID, req.ProductID, usecase.ProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.DecimalPrice(),
		ImageURL:    imageURL,
	})
	if err != nil {
		h.discardImage(imageURL)
	}
	switch {
	case errors.Is(err, usecase.ErrProductNotFound):
		web.NotFound(c)
		return
	case errors.Is(err, usecase.ErrNotProductOwner):
		zap.S().Warnw("edit of another user's product", "product_id", req.ProductID, "user_id", viewer.ID)
		c.Redirect(http.StatusFound, "/")
		return
	case err != nil:
		web.Fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/admin/products")
}

// DeleteProduct answers the admin page's script with JSON.
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	var uri dto.ProductURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed"})
		return
	}
	viewer, _ := web.CurrentViewer(c)
	if err := h.catalog.Delete(c.Request.Context(), viewer.ID, uri.ProductID); err != nil {
		zap.S().Errorw("failed to delete product", "product_id", uri.ProductID, "user_id", viewer.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Success"})
}

func (h *AdminHandler) renderForm(c *gin.Context, status int, editing bool, form productForm, msg string, invalid map[string]bool) {
	title, path := "Add Product", "/admin/add-product"
	if editing {
		title, path = "Edit Product", "/admin/edit-product"
	}
	data := gin.H{
		"pageTitle":        title,
		"path":             path,
		"editing":          editing,
		"hasError":         msg != "",
		"product":          form,
		"validationErrors": invalid,
	}
	if msg != "" {
		data["errorMessage"] = msg
	}
	web.Render(c, status, "admin/edit-product.html", data)
}

func (h *AdminHandler) discardImage(url string) {
	if url == "" {
		return
	}
	if err := h.images.Delete(url); err != nil {
		zap.S().Warnw("failed to delete unused image", "image", url, "error", err)
	}
}
