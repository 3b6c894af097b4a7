package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type NewProduct struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

// UpdateProduct carries only the fields the caller supplied; nil means "leave as is".
type UpdateProduct struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	IsActive    *bool            `json:"isActive"`
}
