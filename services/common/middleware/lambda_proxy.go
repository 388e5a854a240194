package middleware

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	apperrors "github.com/ElenaCherpakova/e-store-aws-backend/services/common/errors"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/common/logger"
)

// LambdaProxy serves router behind API Gateway. Events the adapter cannot
// turn into a request are answered with the JSON error body the router
// itself would send.
func LambdaProxy(router *gin.Engine) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	adapter := ginadapter.New(router)
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		resp, err := adapter.ProxyWithContext(ctx, req)
		if err != nil {
			logger.Error(ctx, "Failed to proxy API Gateway event", err)
			return apperrors.Response(err), nil
		}
		return resp, nil
	}
}
