package aws

import (
	"context"
	"fmt"
	"os"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// DefaultRegion is used when neither the SDK chain nor AWS_REGION provides one.
const DefaultRegion = "ca-central-1"

// LoadAWSConfig loads AWS config and supports LocalStack via AWS_ENDPOINT.
// Static credentials from AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY are only
// forced when an endpoint override is present; otherwise the default chain
// (Lambda execution role, profile, IMDS) applies.
func LoadAWSConfig(ctx context.Context) (sdkaws.Config, error) {
	endpoint := Endpoint()

	opts := []func(*config.LoadOptions) error{}
	if os.Getenv("AWS_REGION") == "" && os.Getenv("AWS_DEFAULT_REGION") == "" {
		opts = append(opts, config.WithRegion(DefaultRegion))
	}
	if endpoint != "" {
		key, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
		if key == "" {
			key, secret = "test", "test"
		}
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, secret, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return cfg, fmt.Errorf("failed to load aws config: %w", err)
	}

	if endpoint != "" {
		cfg.BaseEndpoint = sdkaws.String(endpoint)
	}
	return cfg, nil
}

// Endpoint returns the first endpoint override found in AWS_ENDPOINT,
// AWS_S3_ENDPOINT or AWS_SQS_ENDPOINT, or "" when none is set.
func Endpoint() string {
	for _, name := range []string{"AWS_ENDPOINT", "AWS_S3_ENDPOINT", "AWS_SQS_ENDPOINT"} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
