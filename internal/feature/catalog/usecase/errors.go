// Package usecase implements product listing and the owner's catalog management.
package usecase

import "errors"

var (
	// ErrProductNotFound is returned when no product has the requested ID.
	ErrProductNotFound = errors.New("product not found")

	// ErrNotProductOwner is returned when a user tries to change a product they did not list.
	ErrNotProductOwner = errors.New("product belongs to another user")
)
