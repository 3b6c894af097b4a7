package order

import (
	"errors"
	"strings"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderItemNotFound = errors.New("order item not found")
)

type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation error: " + strings.Join(e.Details, "; ")
}
