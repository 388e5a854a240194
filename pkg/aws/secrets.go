package aws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

// ErrSecretNotFound is returned when the secret does not exist.
var ErrSecretNotFound = errors.New("secret not found")

// DefaultSecretTTL bounds how long a warm container keeps a secret value,
// so rotated authorizer passwords are picked up without a redeploy.
const DefaultSecretTTL = 5 * time.Minute

// SecretsAPI is the GetSecretValue subset of the Secrets Manager client.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type cachedSecret struct {
	value   string
	missing bool
	expires time.Time
}

// SecretsClient reads string secrets and caches hits and misses for ttl.
type SecretsClient struct {
	api   SecretsAPI
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	cache map[string]cachedSecret
}

func NewSecretsClient(cfg sdkaws.Config) *SecretsClient {
	return NewSecretsClientWithAPI(secretsmanager.NewFromConfig(cfg), DefaultSecretTTL)
}

func NewSecretsClientWithAPI(api SecretsAPI, ttl time.Duration) *SecretsClient {
	return &SecretsClient{
		api:   api,
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[string]cachedSecret),
	}
}

// GetSecret returns the string value of a secret. A missing secret yields
// ErrSecretNotFound.
func (s *SecretsClient) GetSecret(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	entry, ok := s.cache[name]
	s.mu.RUnlock()
	if ok && s.now().Before(entry.expires) {
		if entry.missing {
			return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
		}
		return entry.value, nil
	}

	out, err := s.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: sdkaws.String(name)})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			s.store(name, cachedSecret{missing: true})
			return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
		}
		return "", fmt.Errorf("failed to get secret %s: %w", name, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", name)
	}

	s.store(name, cachedSecret{value: *out.SecretString})
	return *out.SecretString, nil
}

func (s *SecretsClient) store(name string, entry cachedSecret) {
	entry.expires = s.now().Add(s.ttl)
	s.mu.Lock()
	s.cache[name] = entry
	s.mu.Unlock()
}
