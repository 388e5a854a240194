package repository

import (
	"context"

	"github.com/ElenaCherpakova/e-store-aws-backend/services/product-service/models"
)

// CatalogRepo stores products together with their stock. A product is never
// written without its stock row and vice versa.
type CatalogRepo interface {
	// CreateProductWithStock writes both rows in one transaction.
	CreateProductWithStock(ctx context.Context, product models.Product, count int) error
	// FindByID returns apperrors.ErrProductNotFound when no product has id.
	FindByID(ctx context.Context, id string) (*models.ProductWithStock, error)
	// FindAll joins every product with its stock; missing stock counts as 0.
	FindAll(ctx context.Context) ([]models.ProductWithStock, error)
}
