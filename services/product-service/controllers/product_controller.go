package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/ElenaCherpakova/e-store-aws-backend/services/common/errors"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/common/logger"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/product-service/models"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/product-service/services"
)

// ProductServiceAPI is what the controller needs from the service layer.
type ProductServiceAPI interface {
	ListProducts(ctx context.Context) ([]models.ProductWithStock, error)
	GetProduct(ctx context.Context, id string) (*models.ProductWithStock, error)
	CreateProduct(ctx context.Context, req services.ProductCreateRequest) (string, error)
}

type ProductController struct {
	productService ProductServiceAPI
}

func NewProductController(ps ProductServiceAPI) *ProductController {
	return &ProductController{productService: ps}
}

// GetProducts returns every product with its stock count.
func (pc *ProductController) GetProducts(c *gin.Context) {
	products, err := pc.productService.ListProducts(c.Request.Context())
	if err != nil {
		logger.Error(c, "Error fetching products", err)
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (pc *ProductController) GetProductByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("productId"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Product ID is required"})
		return
	}

	product, err := pc.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		if apperrors.FromError(err).Code >= http.StatusInternalServerError {
			logger.Error(c, "Error fetching product", err, zap.String("product_id", id))
		}
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req services.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	id, err := pc.productService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		if apperrors.FromError(err).Code >= http.StatusInternalServerError {
			logger.Error(c, "Error creating product", err, zap.String("title", req.Title))
		} else {
			logger.Warn(c, "Rejected product", zap.Error(err))
		}
		_ = c.Error(err)
		return
	}

	logger.Info(c, "Product created", zap.String("product_id", id))
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Product with following ID %s has been successfully created", id),
	})
}
