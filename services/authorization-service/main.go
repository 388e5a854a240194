package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	awspkg "github.com/ElenaCherpakova/e-store-aws-backend/pkg/aws"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/authorization-service/authorizer"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/common/logger"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/common/middleware"
)

func main() {
	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	cfg := LoadConfig()
	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	var store authorizer.CredentialStore = authorizer.NewEnvCredentials()
	if cfg.UseSecrets {
		awsCfg, err := awspkg.LoadAWSConfig(context.Background())
		if err != nil {
			logger.Log.Fatal("Failed to load AWS config", zap.Error(err))
		}
		store = authorizer.NewSecretsCredentials(awspkg.NewSecretsClient(awsCfg), cfg.SecretPrefix)
	}
	basicAuthorizer := authorizer.NewBasicAuthorizer(store, logger.Log)

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(basicAuthorizer.Handle)
		return
	}

	runLocal(cfg, basicAuthorizer)
}

// runLocal exposes the authorizer over HTTP so the policy can be inspected
// without API Gateway.
func runLocal(cfg *Config, a *authorizer.BasicAuthorizer) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(logger.Log))
	r.GET("/authorize", func(c *gin.Context) {
		policy, _ := a.Handle(c, events.APIGatewayCustomAuthorizerRequest{
			Type:               "TOKEN",
			AuthorizationToken: c.GetHeader("Authorization"),
			MethodArn:          c.DefaultQuery("methodArn", "arn:aws:execute-api:local:000000000000:local/dev/GET/import"),
		})
		status := http.StatusOK
		if policy.PolicyDocument.Statement[0].Effect == authorizer.EffectDeny {
			status = http.StatusForbidden
		}
		c.JSON(status, policy)
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Log.Info("Authorization Service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Log.Info("Authorization Service stopped gracefully")
}
