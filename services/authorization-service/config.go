package main

import (
	"os"
)

// Config holds all environment variables for the authorization-service.
type Config struct {
	Env          string // APP_ENV, "production" switches to JSON logs
	Port         string // local HTTP port (default: 8083)
	UseSecrets   bool   // read passwords from Secrets Manager instead of env vars
	SecretPrefix string // secret name prefix, the user name is appended
}

// LoadConfig loads environment variables into Config. Passwords themselves
// are looked up per request.
func LoadConfig() *Config {
	cfg := &Config{
		Env:          os.Getenv("APP_ENV"),
		Port:         os.Getenv("PORT"),
		UseSecrets:   os.Getenv("AWS_USE_SECRETS") == "true",
		SecretPrefix: os.Getenv("CREDENTIALS_SECRET_PREFIX"),
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.Port == "" {
		cfg.Port = "8083"
	}
	if cfg.SecretPrefix == "" {
		cfg.SecretPrefix = "authorization/"
	}
	return cfg
}
