package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/ElenaCherpakova/e-store-aws-backend/services/common/errors"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/common/middleware"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/product-service/controllers"
)

// NewRouter builds the product-service HTTP API.
func NewRouter(log *zap.Logger, metrics middleware.MetricsRecorder, pc *controllers.ProductController) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics(metrics, "product-service"))
	r.Use(middleware.CORS())
	r.Use(middleware.SecurityHeaders())
	r.Use(apperrors.ErrorMiddleware())

	RegisterProductRoutes(r, pc)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.NoRoute(func(c *gin.Context) {
		_ = c.Error(apperrors.ErrNotFound)
	})
	return r
}

func RegisterProductRoutes(r *gin.Engine, pc *controllers.ProductController) {
	productRoutes := r.Group("/products")
	{
		productRoutes.GET("", pc.GetProducts)
		productRoutes.GET("/:productId", pc.GetProductByID)
		productRoutes.POST("", pc.CreateProduct)
	}
}
