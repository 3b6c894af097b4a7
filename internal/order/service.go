package order

import (
	"context"
	"fmt"
	"strings"

	"kopimas-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id int64) (*Order, error)
	Create(ctx context.Context, input CreateOrderInput) (*Order, error)
	Update(ctx context.Context, id int64, input UpdateOrderInput) (*Order, error)
	Delete(ctx context.Context, id int64) error
	SetPaid(ctx context.Context, id int64, paid bool) (*Order, error)

	AddItem(ctx context.Context, orderID int64, input ItemInput) (*OrderItem, error)
	UpdateItem(ctx context.Context, orderID, itemID int64, input ItemInput) (*OrderItem, error)
	RemoveItem(ctx context.Context, orderID, itemID int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]Order, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*Order, error) {
	var details []string

	if strings.TrimSpace(input.CustomerName) == "" {
		details = append(details, "customer name is required")
	}
	if len(input.Items) == 0 {
		details = append(details, "at least one order item is required")
	}
	details = append(details, validateItems(input.Items)...)

	if len(details) > 0 {
		return nil, &ValidationError{Details: details}
	}

	// The caller's prices are the point-of-sale snapshot; they are not
	// re-fetched from the catalog.
	total := Total(input.Items)

	orderID, err := s.repo.CreateTx(ctx, input.CustomerName, toOrderItems(input.Items), total)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to create order", zap.Error(err))
		return nil, err
	}

	return s.repo.GetByID(ctx, orderID)
}

func (s *service) Update(ctx context.Context, id int64, input UpdateOrderInput) (*Order, error) {
	var details []string

	if input.CustomerName != nil && strings.TrimSpace(*input.CustomerName) == "" {
		details = append(details, "customer name cannot be empty")
	}
	if input.Items != nil {
		details = append(details, validateItems(*input.Items)...)
	}

	if len(details) > 0 {
		return nil, &ValidationError{Details: details}
	}

	switch {
	case input.Items != nil:
		// An empty replacement list is a valid end state: no items, total 0.
		total := Total(*input.Items)
		err := s.repo.ReplaceItemsTx(ctx, id, input.CustomerName, toOrderItems(*input.Items), total)
		if err != nil {
			return nil, err
		}
	case input.CustomerName != nil:
		if err := s.repo.UpdateCustomerName(ctx, id, *input.CustomerName); err != nil {
			return nil, err
		}
	}

	return s.repo.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("order deleted", zap.Int64("order_id", id))
	return nil
}

func (s *service) SetPaid(ctx context.Context, id int64, paid bool) (*Order, error) {
	if err := s.repo.SetPaid(ctx, id, paid); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) AddItem(ctx context.Context, orderID int64, input ItemInput) (*OrderItem, error) {
	if details := validateItems([]ItemInput{input}); len(details) > 0 {
		return nil, &ValidationError{Details: details}
	}

	exists, err := s.repo.Exists(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrOrderNotFound
	}

	itemID, err := s.repo.AddItemTx(ctx, orderID, OrderItem{
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
		Price:     input.Price,
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetItem(ctx, orderID, itemID)
}

func (s *service) UpdateItem(ctx context.Context, orderID, itemID int64, input ItemInput) (*OrderItem, error) {
	if details := validateItems([]ItemInput{input}); len(details) > 0 {
		return nil, &ValidationError{Details: details}
	}

	current, err := s.repo.GetItem(ctx, orderID, itemID)
	if err != nil {
		return nil, err
	}

	updated := OrderItem{
		ID:        itemID,
		OrderID:   orderID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
		Price:     input.Price,
	}
	diff := updated.Subtotal().Sub(current.Subtotal())

	if err := s.repo.UpdateItemTx(ctx, orderID, updated, diff); err != nil {
		return nil, err
	}

	return s.repo.GetItem(ctx, orderID, itemID)
}

func (s *service) RemoveItem(ctx context.Context, orderID, itemID int64) error {
	current, err := s.repo.GetItem(ctx, orderID, itemID)
	if err != nil {
		return err
	}

	return s.repo.RemoveItemTx(ctx, orderID, itemID, current.Subtotal())
}

func validateItems(items []ItemInput) []string {
	var details []string
	for i, item := range items {
		if item.ProductID <= 0 {
			details = append(details, fmt.Sprintf("item %d: product id is required", i))
		}
		if item.Quantity < 1 {
			details = append(details, fmt.Sprintf("item %d: quantity must be at least 1", i))
		}
		if !item.Price.IsPositive() {
			details = append(details, fmt.Sprintf("item %d: price must be positive", i))
		}
	}
	return details
}

func toOrderItems(items []ItemInput) []OrderItem {
	out := make([]OrderItem, 0, len(items))
	for _, item := range items {
		out = append(out, OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return out
}
