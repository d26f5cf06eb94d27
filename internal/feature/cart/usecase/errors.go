package usecase

import "errors"

var (
	// ErrUnknownUpdateType is returned for an update-cart action other than increase, decrease or delete.
	ErrUnknownUpdateType = errors.New("unknown cart update type")
)
