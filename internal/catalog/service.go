package catalog

import (
	"context"

	"ordermgmt-be/internal/logger"

	"go.uber.org/zap"
)

// Service exposes the read-only menu the order screens are built from.
type Service interface {
	GetActiveCategories(ctx context.Context) ([]*Category, error)
	GetProductsByCategory(ctx context.Context, categoryID *int64) ([]*Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetActiveCategories(ctx context.Context) ([]*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GetActiveCategories"),
	)

	categories, err := s.repo.GetActiveCategories(ctx)
	if err != nil {
		log.Error("failed to get categories", zap.Error(err))
		return nil, err
	}

	log.Debug("GetActiveCategories success", zap.Int("count", len(categories)))
	return categories, nil
}

// GetProductsByCategory lists every product when categoryID is nil.
func (s *service) GetProductsByCategory(ctx context.Context, categoryID *int64) ([]*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GetProductsByCategory"),
	)
	if categoryID != nil {
		log = log.With(zap.Int64("category_id", *categoryID))
	}

	products, err := s.repo.GetProducts(ctx, categoryID)
	if err != nil {
		log.Error("failed to get products", zap.Error(err))
		return nil, err
	}

	log.Debug("GetProductsByCategory success", zap.Int("count", len(products)))
	return products, nil
}
