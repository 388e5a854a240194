package main

import (
	"fmt"
	"os"

	"github.com/ElenaCherpakova/e-store-aws-backend/services/import-service/services"
)

// Config holds all environment variables for the import-service.
type Config struct {
	Env            string // APP_ENV, "production" switches to JSON logs
	Port           string // local HTTP port (default: 8081)
	BucketName     string // bucket receiving catalog uploads
	UploadedPrefix string // staging prefix watched by the file parser
	ParsedPrefix   string // destination prefix for processed files
	QueueURL       string // catalog queue the parser writes to
	EventsQueueURL string // optional queue carrying S3 notifications in local mode
}

// LoadConfig loads environment variables into Config and validates them.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Env:            getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8081"),
		BucketName:     os.Getenv("BUCKET_NAME"),
		UploadedPrefix: getEnv("UPLOADED_PREFIX", services.DefaultUploadedPrefix),
		ParsedPrefix:   getEnv("PARSED_PREFIX", services.DefaultParsedPrefix),
		QueueURL:       os.Getenv("SQS_QUEUE_URL"),
		EventsQueueURL: os.Getenv("IMPORT_EVENTS_QUEUE_URL"),
	}

	if cfg.BucketName == "" {
		return nil, fmt.Errorf("BUCKET_NAME is required")
	}
	if cfg.UploadedPrefix == cfg.ParsedPrefix {
		return nil, fmt.Errorf("UPLOADED_PREFIX and PARSED_PREFIX must differ")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
