package middleware

import (
	"context"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ElenaCherpakova/e-store-aws-backend/services/common/errors"
)

func proxyRouter() *gin.Engine {
	r := gin.New()
	r.Use(apperrors.ErrorMiddleware())
	r.GET("/products/:productId", func(c *gin.Context) {
		_ = c.Error(apperrors.ErrProductNotFound)
	})
	r.NoRoute(func(c *gin.Context) {
		_ = c.Error(apperrors.ErrNotFound)
	})
	return r
}

func TestLambdaProxy_ServesRoutes(t *testing.T) {
	handler := LambdaProxy(proxyRouter())

	resp, err := handler(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodGet,
		Path:       "/products/42",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Product not found"}`, resp.Body)

	resp, err = handler(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodGet,
		Path:       "/missing",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Not found"}`, resp.Body)
}

func TestLambdaProxy_RendersAdapterErrors(t *testing.T) {
	handler := LambdaProxy(proxyRouter())

	resp, err := handler(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/products",
		Body:            "%%% not base64 %%%",
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Internal error"}`, resp.Body)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
}
