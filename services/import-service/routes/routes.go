package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/ElenaCherpakova/e-store-aws-backend/services/common/errors"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/common/middleware"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/import-service/controllers"
)

// NewRouter builds the import-service HTTP API.
func NewRouter(log *zap.Logger, metrics middleware.MetricsRecorder, ic *controllers.ImportController) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics(metrics, "import-service"))
	r.Use(middleware.CORS())
	r.Use(middleware.SecurityHeaders())
	r.Use(apperrors.ErrorMiddleware())

	RegisterRoutes(r, ic)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.NoRoute(func(c *gin.Context) {
		_ = c.Error(apperrors.ErrNotFound)
	})
	return r
}

func RegisterRoutes(r *gin.Engine, ic *controllers.ImportController) {
	r.GET("/import", ic.ImportProductsFile)
}
