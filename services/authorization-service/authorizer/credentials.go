package authorizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	awspkg "github.com/ElenaCherpakova/e-store-aws-backend/pkg/aws"
)

// ErrUnknownUser is returned when no password is configured for a user.
var ErrUnknownUser = errors.New("unknown user")

// CredentialStore looks up the expected password of a user.
type CredentialStore interface {
	Password(ctx context.Context, username string) (string, error)
}

var validUsername = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// reserved env prefixes that must never be readable as passwords
var reservedPrefixes = []string{"AWS_", "LAMBDA_", "_"}

// EnvCredentials reads the password from the environment variable named
// after the user.
type EnvCredentials struct {
	lookup func(string) (string, bool)
}

func NewEnvCredentials() *EnvCredentials {
	return &EnvCredentials{lookup: os.LookupEnv}
}

func (e *EnvCredentials) Password(ctx context.Context, username string) (string, error) {
	if !validUsername.MatchString(username) {
		return "", ErrUnknownUser
	}
	upper := strings.ToUpper(username)
	for _, p := range reservedPrefixes {
		if strings.HasPrefix(upper, p) {
			return "", ErrUnknownUser
		}
	}
	v, ok := e.lookup(username)
	if !ok || v == "" {
		return "", ErrUnknownUser
	}
	return v, nil
}

// SecretGetter is satisfied by *awspkg.SecretsClient.
type SecretGetter interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// SecretsCredentials reads the password from the secret <prefix><username>.
type SecretsCredentials struct {
	secrets SecretGetter
	prefix  string
}

func NewSecretsCredentials(secrets SecretGetter, prefix string) *SecretsCredentials {
	return &SecretsCredentials{secrets: secrets, prefix: prefix}
}

func (s *SecretsCredentials) Password(ctx context.Context, username string) (string, error) {
	if !validUsername.MatchString(username) {
		return "", ErrUnknownUser
	}
	v, err := s.secrets.GetSecret(ctx, s.prefix+username)
	if errors.Is(err, awspkg.ErrSecretNotFound) {
		return "", ErrUnknownUser
	}
	if err != nil {
		return "", fmt.Errorf("lookup credentials: %w", err)
	}
	if v == "" {
		return "", ErrUnknownUser
	}
	return v, nil
}
