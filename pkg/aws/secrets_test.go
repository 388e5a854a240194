package aws

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecretsAPI struct {
	values map[string]string
	calls  int
	err    error
}

func (f *fakeSecretsAPI) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.values[sdkaws.ToString(params.SecretId)]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: sdkaws.String("not found")}
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: sdkaws.String(v)}, nil
}

func TestGetSecret_CachesUntilTTL(t *testing.T) {
	api := &fakeSecretsAPI{values: map[string]string{"authorization/alice": "TEST_PASSWORD"}}
	client := NewSecretsClientWithAPI(api, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return now }

	for range 3 {
		v, err := client.GetSecret(context.Background(), "authorization/alice")
		require.NoError(t, err)
		assert.Equal(t, "TEST_PASSWORD", v)
	}
	assert.Equal(t, 1, api.calls)

	api.values["authorization/alice"] = "ROTATED"
	now = now.Add(2 * time.Minute)
	v, err := client.GetSecret(context.Background(), "authorization/alice")
	require.NoError(t, err)
	assert.Equal(t, "ROTATED", v)
	assert.Equal(t, 2, api.calls)
}

func TestGetSecret_NotFoundIsCached(t *testing.T) {
	api := &fakeSecretsAPI{values: map[string]string{}}
	client := NewSecretsClientWithAPI(api, time.Minute)

	_, err := client.GetSecret(context.Background(), "authorization/bob")
	assert.ErrorIs(t, err, ErrSecretNotFound)
	_, err = client.GetSecret(context.Background(), "authorization/bob")
	assert.ErrorIs(t, err, ErrSecretNotFound)
	assert.Equal(t, 1, api.calls)
}

func TestGetSecret_OtherErrorsAreNotCached(t *testing.T) {
	api := &fakeSecretsAPI{err: errors.New("throttled")}
	client := NewSecretsClientWithAPI(api, time.Minute)

	_, err := client.GetSecret(context.Background(), "product/DEDUP_REDIS_URL")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSecretNotFound)
	_, _ = client.GetSecret(context.Background(), "product/DEDUP_REDIS_URL")
	assert.Equal(t, 2, api.calls)
}
