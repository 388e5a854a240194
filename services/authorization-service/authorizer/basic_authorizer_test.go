package authorizer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	awspkg "github.com/ElenaCherpakova/e-store-aws-backend/pkg/aws"
)

const methodArn = "arn:aws:execute-api:ca-central-1:000000000000:abc123/dev/GET/import"

func basic(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func envStore(vars map[string]string) *EnvCredentials {
	return &EnvCredentials{lookup: func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}}
}

func authorize(t *testing.T, store CredentialStore, token string) events.APIGatewayCustomAuthorizerResponse {
	t.Helper()
	resp, err := NewBasicAuthorizer(store, zap.NewNop()).Handle(context.Background(), events.APIGatewayCustomAuthorizerRequest{
		Type:               "TOKEN",
		AuthorizationToken: token,
		MethodArn:          methodArn,
	})
	require.NoError(t, err)
	require.Len(t, resp.PolicyDocument.Statement, 1)
	assert.Equal(t, []string{"execute-api:Invoke"}, resp.PolicyDocument.Statement[0].Action)
	assert.Equal(t, []string{methodArn}, resp.PolicyDocument.Statement[0].Resource)
	return resp
}

func TestHandle_AllowsValidCredentials(t *testing.T) {
	resp := authorize(t, envStore(map[string]string{"elenacherpakova": "TEST_PASSWORD"}), basic("elenacherpakova", "TEST_PASSWORD"))

	assert.Equal(t, "elenacherpakova", resp.PrincipalID)
	assert.Equal(t, EffectAllow, resp.PolicyDocument.Statement[0].Effect)
	assert.Nil(t, resp.Context)
}

func TestHandle_DeniesBadTokens(t *testing.T) {
	store := envStore(map[string]string{"elenacherpakova": "TEST_PASSWORD"})
	tokens := map[string]string{
		"missing":        "",
		"wrong scheme":   "Bearer abc",
		"not base64":     "Basic ***",
		"no colon":       "Basic " + base64.StdEncoding.EncodeToString([]byte("elenacherpakova")),
		"wrong password": basic("elenacherpakova", "nope"),
		"unknown user":   basic("someone", "TEST_PASSWORD"),
		"reserved name":  basic("AWS_SECRET_ACCESS_KEY", "x"),
	}

	for name, token := range tokens {
		t.Run(name, func(t *testing.T) {
			resp := authorize(t, store, token)
			assert.Equal(t, UnauthorizedPrincipal, resp.PrincipalID)
			assert.Equal(t, EffectDeny, resp.PolicyDocument.Statement[0].Effect)
			assert.NotEmpty(t, resp.Context["message"])
		})
	}
}

func TestParseBasicToken_PasswordMayContainColons(t *testing.T) {
	user, pass, err := ParseBasicToken(basic("admin", "a:b:c"))
	require.NoError(t, err)
	assert.Equal(t, "admin", user)
	assert.Equal(t, "a:b:c", pass)
}

type fakeSecrets struct {
	values map[string]string
	err    error
	asked  []string
}

func (f *fakeSecrets) GetSecret(ctx context.Context, name string) (string, error) {
	f.asked = append(f.asked, name)
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.values[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", awspkg.ErrSecretNotFound, name)
	}
	return v, nil
}

func TestSecretsCredentials(t *testing.T) {
	secrets := &fakeSecrets{values: map[string]string{"authorization/admin": "s3cret"}}
	store := NewSecretsCredentials(secrets, "authorization/")

	resp := authorize(t, store, basic("admin", "s3cret"))
	assert.Equal(t, EffectAllow, resp.PolicyDocument.Statement[0].Effect)
	assert.Equal(t, []string{"authorization/admin"}, secrets.asked)

	resp = authorize(t, store, basic("ghost", "s3cret"))
	assert.Equal(t, EffectDeny, resp.PolicyDocument.Statement[0].Effect)
}

func TestSecretsCredentials_BackendFailureDenies(t *testing.T) {
	store := NewSecretsCredentials(&fakeSecrets{err: errors.New("throttled")}, "authorization/")

	resp := authorize(t, store, basic("admin", "s3cret"))
	assert.Equal(t, EffectDeny, resp.PolicyDocument.Statement[0].Effect)

	_, err := store.Password(context.Background(), "admin")
	assert.NotErrorIs(t, err, ErrUnknownUser)
}
