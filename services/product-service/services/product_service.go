package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apperrors "github.com/ElenaCherpakova/e-store-aws-backend/services/common/errors"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/product-service/models"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/product-service/repository"
)

// ProductCreateRequest is the body of POST /products. Price and count are
// pointers so an explicit zero can be told apart from a missing field.
type ProductCreateRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required"`
	Count       *int     `json:"count" validate:"required"`
}

var (
	errMissingFields = apperrors.New(http.StatusBadRequest, "Title OR description OR Price OR count is required", nil)
	errNegativeCount = apperrors.New(http.StatusBadRequest, "Count cannot be negative", nil)
	errNegativePrice = apperrors.New(http.StatusBadRequest, "Price cannot be negative", nil)
)

// ProductService serves the product API.
type ProductService struct {
	repo     repository.CatalogRepo
	validate *validator.Validate
	newID    func() string
}

func NewProductService(repo repository.CatalogRepo) *ProductService {
	return &ProductService{repo: repo, validate: validator.New(), newID: uuid.NewString}
}

func (s *ProductService) ListProducts(ctx context.Context) ([]models.ProductWithStock, error) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.ProductWithStock, error) {
	return s.repo.FindByID(ctx, id)
}

// CreateProduct validates req and writes the product with its stock in one
// transaction. It returns the new product id.
func (s *ProductService) CreateProduct(ctx context.Context, req ProductCreateRequest) (string, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)

	if err := s.validate.Struct(req); err != nil {
		return "", errMissingFields.Wrap(err)
	}
	if *req.Count < 0 {
		return "", errNegativeCount
	}
	if *req.Price < 0 {
		return "", errNegativePrice
	}

	product := models.Product{
		ID:          s.newID(),
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
	}
	if err := s.repo.CreateProductWithStock(ctx, product, *req.Count); err != nil {
		return "", fmt.Errorf("create product: %w", err)
	}
	return product.ID, nil
}
