package catalog

import (
	"errors"
	"strings"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductReferenced = errors.New("product is referenced by existing order items")
)

// ValidationError collects all field problems found in one request.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation error: " + strings.Join(e.Details, "; ")
}
