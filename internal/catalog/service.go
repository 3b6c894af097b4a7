package catalog

import (
	"context"
	"strings"

	"kopimas-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	ListActive(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, input NewProduct) (*Product, error)
	Update(ctx context.Context, id int64, input UpdateProduct) (*Product, error)
	Deactivate(ctx context.Context, id int64) (*Product, error)
	HardDelete(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListActive(ctx context.Context) ([]Product, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, input NewProduct) (*Product, error) {
	var details []string

	if strings.TrimSpace(input.Name) == "" {
		details = append(details, "name is required")
	}
	if !input.Price.IsPositive() {
		details = append(details, "price must be positive")
	}
	if strings.TrimSpace(input.Category) == "" {
		details = append(details, "category is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		details = append(details, "description is required")
	}

	if len(details) > 0 {
		return nil, &ValidationError{Details: details}
	}

	p, err := s.repo.Create(ctx, input)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to create product", zap.Error(err))
		return nil, err
	}

	logger.FromCtx(ctx).Info("product created",
		zap.Int64("product_id", p.ID),
		zap.String("name", p.Name),
	)

	return p, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateProduct) (*Product, error) {
	var details []string

	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		details = append(details, "name cannot be empty")
	}
	if input.Price != nil && !input.Price.IsPositive() {
		details = append(details, "price must be positive")
	}
	if input.Category != nil && strings.TrimSpace(*input.Category) == "" {
		details = append(details, "category cannot be empty")
	}
	if input.Description != nil && strings.TrimSpace(*input.Description) == "" {
		details = append(details, "description cannot be empty")
	}

	if len(details) > 0 {
		return nil, &ValidationError{Details: details}
	}

	return s.repo.Update(ctx, id, input)
}

func (s *service) Deactivate(ctx context.Context, id int64) (*Product, error) {
	p, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("product deactivated", zap.Int64("product_id", id))
	return p, nil
}

func (s *service) HardDelete(ctx context.Context, id int64) error {
	return s.repo.HardDelete(ctx, id)
}
