package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ordermgmt-be/internal/logger"

	"go.uber.org/zap"
)

// ErrQuery marks catalog read failures.
var ErrQuery = errors.New("database query issue")

const statusActive = "active"

type Repository interface {
	GetActiveCategories(ctx context.Context) ([]*Category, error)
	GetProducts(ctx context.Context, categoryID *int64) ([]*Product, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetActiveCategories(ctx context.Context) ([]*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetActiveCategories"),
	)

	rows, err := r.db.QueryContext(ctx, `
		SELECT category_id, category_name, status
		FROM inventory_category
		WHERE status = $1
		ORDER BY category_name ASC
	`, statusActive)
	if err != nil {
		log.Error("DB query failed GetActiveCategories", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	defer rows.Close()

	categories := make([]*Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Status); err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrQuery, err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		log.Error("Rows iteration failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}

	return categories, nil
}

func (r *repository) GetProducts(ctx context.Context, categoryID *int64) ([]*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetProducts"),
	)

	query := `
		SELECT p.product_id, p.product_name, p.image_url, p.price, p.status, c.category_name
		FROM products p
		JOIN inventory_category c ON p.category_id = c.category_id
	`
	args := []any{}
	if categoryID != nil {
		query += " WHERE p.category_id = $1"
		args = append(args, *categoryID)
	}
	query += " ORDER BY p.product_id ASC"

	log.Debug("Executing GetProducts query", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("DB query failed GetProducts", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	defer rows.Close()

	products := make([]*Product, 0)
	for rows.Next() {
		var (
			p   Product
			img sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &img, &p.Price, &p.Status, &p.CategoryName); err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrQuery, err)
		}
		if img.Valid {
			p.ImageURL = &img.String
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		log.Error("Rows iteration failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}

	return products, nil
}
