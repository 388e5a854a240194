package main

import (
	"context"
	"fmt"
	"os"
	"time"

	awspkg "github.com/ElenaCherpakova/e-store-aws-backend/pkg/aws"
)

// Config holds all environment variables for the product-service.
type Config struct {
	Env           string        // APP_ENV, "production" switches to JSON logs
	Port          string        // local HTTP port (default: 8082)
	ProductsTable string        // DynamoDB Products table
	StocksTable   string        // DynamoDB Stocks table
	SNSTopicArn   string        // product-created topic
	QueueURL      string        // catalog queue polled in local mode
	DedupRedisURL string        // enables the idempotency guard when set
	DedupTTL      time.Duration // lifetime of a dedup key
}

// LoadConfig loads environment variables into Config and validates them.
// If AWS_USE_SECRETS=true the Redis URL is read from Secrets Manager and
// falls back to the env var on failure.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Env:           getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "8082"),
		ProductsTable: getEnv("PRODUCTS_TABLE", "Products"),
		StocksTable:   getEnv("STOCKS_TABLE", "Stocks"),
		SNSTopicArn:   os.Getenv("SNS_TOPIC_ARN"),
		QueueURL:      os.Getenv("SQS_QUEUE_URL"),
		DedupRedisURL: os.Getenv("DEDUP_REDIS_URL"),
		DedupTTL:      24 * time.Hour,
	}

	if raw := os.Getenv("DEDUP_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return nil, fmt.Errorf("DEDUP_TTL must be a positive duration, got %q", raw)
		}
		cfg.DedupTTL = ttl
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := awspkg.LoadAWSConfig(context.Background()); err == nil {
			sm := awspkg.NewSecretsClient(awsCfg)
			if url, err := sm.GetSecret(context.Background(), "product/DEDUP_REDIS_URL"); err == nil && url != "" {
				cfg.DedupRedisURL = url
			}
		}
	}

	if cfg.ProductsTable == cfg.StocksTable {
		return nil, fmt.Errorf("PRODUCTS_TABLE and STOCKS_TABLE must differ")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
