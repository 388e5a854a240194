// Package response builds API Gateway proxy responses with the JSON and CORS
// headers every e-store endpoint returns.
package response

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// JSON marshals payload into a proxy response. methods lists the verbs
// advertised in Access-Control-Allow-Methods and defaults to GET.
func JSON(statusCode int, payload any, methods ...string) events.APIGatewayProxyResponse {
	if len(methods) == 0 {
		methods = []string{http.MethodGet}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		statusCode = http.StatusInternalServerError
		body = []byte(`{"message":"Internal error"}`)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type":                 "application/json",
			"Access-Control-Allow-Origin":  "*",
			"Access-Control-Allow-Headers": "Content-Type",
			"Access-Control-Allow-Methods": strings.Join(methods, ","),
		},
	}
}

// Message is a proxy response with a {"message": msg} body.
func Message(statusCode int, msg string, methods ...string) events.APIGatewayProxyResponse {
	return JSON(statusCode, map[string]string{"message": msg}, methods...)
}

// Success is a 200 proxy response.
func Success(payload any, methods ...string) events.APIGatewayProxyResponse {
	return JSON(http.StatusOK, payload, methods...)
}
