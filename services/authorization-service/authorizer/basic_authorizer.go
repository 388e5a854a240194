// Package authorizer implements the API Gateway TOKEN authorizer that
// guards the import API with HTTP Basic credentials.
package authorizer

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/ElenaCherpakova/e-store-aws-backend/services/common/logger"
)

const (
	EffectAllow = "Allow"
	EffectDeny  = "Deny"

	// UnauthorizedPrincipal is the principal of every Deny policy.
	UnauthorizedPrincipal = "Unauthorized user"
)

var (
	errMissingToken       = errors.New("authorization header is missing")
	errMalformedToken     = errors.New("authorization header is not valid Basic credentials")
	errInvalidCredentials = errors.New("invalid credentials")
)

// BasicAuthorizer validates "Basic base64(user:password)" tokens.
type BasicAuthorizer struct {
	store  CredentialStore
	logger *zap.Logger
}

func NewBasicAuthorizer(store CredentialStore, log *zap.Logger) *BasicAuthorizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &BasicAuthorizer{store: store, logger: log}
}

// Handle never returns an error: failures become Deny policies so API
// Gateway answers 403 instead of 500.
func (a *BasicAuthorizer) Handle(ctx context.Context, req events.APIGatewayCustomAuthorizerRequest) (events.APIGatewayCustomAuthorizerResponse, error) {
	log := a.logger.With(zap.String("request_id", logger.RequestID(ctx)), zap.String("method_arn", req.MethodArn))

	username, err := a.authenticate(ctx, req.AuthorizationToken)
	if err != nil {
		log.Info("Access denied", zap.Error(err))
		return Policy(UnauthorizedPrincipal, EffectDeny, req.MethodArn, err.Error()), nil
	}

	log.Info("Access granted", zap.String("principal", username))
	return Policy(username, EffectAllow, req.MethodArn, ""), nil
}

func (a *BasicAuthorizer) authenticate(ctx context.Context, token string) (string, error) {
	username, password, err := ParseBasicToken(token)
	if err != nil {
		return "", err
	}

	expected, err := a.store.Password(ctx, username)
	if errors.Is(err, ErrUnknownUser) {
		return "", errInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(password)) != 1 {
		return "", errInvalidCredentials
	}
	return username, nil
}

// ParseBasicToken decodes an Authorization header value of the form
// "Basic base64(user:password)".
func ParseBasicToken(token string) (string, string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", "", errMissingToken
	}
	scheme, encoded, ok := strings.Cut(token, " ")
	if !ok || !strings.EqualFold(scheme, "Basic") {
		return "", "", errMalformedToken
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", "", errMalformedToken
	}
	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok || username == "" {
		return "", "", errMalformedToken
	}
	return username, password, nil
}

// Policy builds an execute-api:Invoke policy for resource. A non-empty
// message is passed to the integration in the authorizer context.
func Policy(principal, effect, resource, message string) events.APIGatewayCustomAuthorizerResponse {
	resp := events.APIGatewayCustomAuthorizerResponse{
		PrincipalID: principal,
		PolicyDocument: events.APIGatewayCustomAuthorizerPolicy{
			Version: "2012-10-17",
			Statement: []events.IAMPolicyStatement{{
				Action:   []string{"execute-api:Invoke"},
				Effect:   effect,
				Resource: []string{resource},
			}},
		},
	}
	if message != "" {
		resp.Context = map[string]interface{}{"message": message}
	}
	return resp
}
