package catalog

import "errors"

// Catalog errors.
var (
	ErrStoreNotFound = errors.New("store not found")
	ErrInvalidOwner  = errors.New("owner must be an existing store owner")
)
