// Package dto holds the form and URI payloads of the catalog pages.
package dto

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ProductRequest is the shared body of the add and edit product forms.
// The image travels as the multipart file "image" and is read separately.
type ProductRequest struct {
	Title       string `form:"title" binding:"min=3" msg:"Title must have min 3 characters."`
	Price       string `form:"price" binding:"decgte=1" msg:"Price must be a number of at least 1."`
	Description string `form:"description" binding:"min=5,max=500" msg:"Description must have 5 to 500 characters."`
}

func (r *ProductRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Price = strings.TrimSpace(r.Price)
	r.Description = strings.TrimSpace(r.Description)
}

// DecimalPrice parses the validated price.
func (r *ProductRequest) DecimalPrice() decimal.Decimal {
	d, _ := decimal.NewFromString(r.Price)
	return d.Round(2)
}

// EditProductRequest is the POST /admin/edit-product form.
type EditProductRequest struct {
	ProductID uint `form:"productId" binding:"required" msg:"Product not found."`
	ProductRequest
}

// ProductURI carries the :productId path parameter.
type ProductURI struct {
	ProductID uint `uri:"productId" binding:"required"`
}
