// Package dto holds the form payloads of the cart pages.
package dto

// AddToCartRequest is the POST /cart form.
type AddToCartRequest struct {
	ProductID uint `form:"productId" binding:"required"`
}

// UpdateCartRequest is the POST /update-cart form.
type UpdateCartRequest struct {
	ProductID  uint   `form:"productId" binding:"required"`
	UpdateType string `form:"updateType" binding:"required"`
}
