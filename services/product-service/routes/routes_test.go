package routes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/ElenaCherpakova/e-store-aws-backend/services/product-service/controllers"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/product-service/models"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/product-service/routes"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/product-service/services"
)

type stubProducts struct{}

func (stubProducts) ListProducts(ctx context.Context) ([]models.ProductWithStock, error) {
	return []models.ProductWithStock{}, nil
}

func (stubProducts) GetProduct(ctx context.Context, id string) (*models.ProductWithStock, error) {
	return &models.ProductWithStock{Product: models.Product{ID: id}}, nil
}

func (stubProducts) CreateProduct(ctx context.Context, req services.ProductCreateRequest) (string, error) {
	return "id-1", nil
}

func TestNewRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := routes.NewRouter(zap.NewNop(), nil, controllers.NewProductController(stubProducts{}))

	cases := []struct {
		path   string
		status int
		body   string
	}{
		{"/health", http.StatusOK, `{"status":"OK"}`},
		{"/products", http.StatusOK, `[]`},
		{"/unknown", http.StatusNotFound, `{"message":"Not found"}`},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, tc.status, w.Code, tc.path)
		assert.JSONEq(t, tc.body, w.Body.String(), tc.path)
	}
}
