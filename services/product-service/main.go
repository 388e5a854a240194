package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	awspkg "github.com/ElenaCherpakova/e-store-aws-backend/pkg/aws"
	ddbpkg "github.com/ElenaCherpakova/e-store-aws-backend/pkg/dynamodb"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/common/logger"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/common/middleware"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/product-service/controllers"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/product-service/repository"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/product-service/routes"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/product-service/services"
)

const serviceName = "product-service"

// Lambda handler names; the three API handlers share the gin router.
const (
	handlerCatalogBatchProcess = "catalogBatchProcess"
	handlerGetProductsList     = "getProductsList"
	handlerGetProductsByID     = "getProductsById"
	handlerCreateProduct       = "createProduct"
)

func main() {
	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Initialize(os.Getenv("APP_ENV"))
		logger.Log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	awsCfg, err := awspkg.LoadAWSConfig(ctx)
	if err != nil {
		logger.Initialize(cfg.Env)
		logger.Log.Fatal("Failed to load AWS config", zap.Error(err))
	}

	var cwWriter io.Writer
	cwLogs, cwErr := awspkg.NewCloudWatchLogsClient(ctx, awsCfg, serviceName)
	if cwErr == nil && cwLogs.IsEnabled() {
		cwWriter = cwLogs
	}
	logger.InitializeWithWriter(cfg.Env, cwWriter)
	defer logger.Log.Sync()
	if cwErr != nil {
		logger.Log.Warn("CloudWatch Logs disabled", zap.Error(cwErr))
	}

	// --- Dependency Injection ---
	metrics := awspkg.NewMetricsClient(awsCfg)
	catalogRepo := repository.NewDynamoCatalog(ddbpkg.NewClientFromConfig(awsCfg), cfg.ProductsTable, cfg.StocksTable)

	productService := services.NewProductService(catalogRepo)
	productController := controllers.NewProductController(productService)
	router := routes.NewRouter(logger.Log, metrics, productController)

	opts := []services.BatchOption{services.WithMetrics(metrics)}
	dedupClient := newDedupClient(ctx, cfg)
	if dedupClient != nil {
		defer dedupClient.Close()
		opts = append(opts, services.WithDeduplicator(services.NewRedisDeduplicator(dedupClient, cfg.DedupTTL)))
	}
	notifier := services.NewSNSNotifier(awspkg.NewSNSClient(awsCfg), cfg.SNSTopicArn)
	processor := services.NewBatchProcessor(catalogRepo, notifier, logger.Log, opts...)

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		switch name := lambdaHandler(); name {
		case handlerCatalogBatchProcess:
			if cfg.SNSTopicArn == "" {
				logger.Log.Fatal("SNS_TOPIC_ARN is required for the batch processor")
			}
			lambda.Start(processor.Handle)
		case handlerGetProductsList, handlerGetProductsByID, handlerCreateProduct:
			lambda.Start(middleware.LambdaProxy(router))
		default:
			logger.Log.Fatal("Unknown Lambda handler", zap.String("handler", name))
		}
		return
	}

	runLocal(cfg, awsCfg, router, processor)
}

// lambdaHandler returns the function part of _HANDLER, e.g. "bootstrap.catalogBatchProcess".
func lambdaHandler() string {
	h := os.Getenv("_HANDLER")
	if i := strings.LastIndex(h, "."); i >= 0 {
		return h[i+1:]
	}
	return h
}

// newDedupClient returns nil when the idempotency guard is not configured.
func newDedupClient(ctx context.Context, cfg *Config) *redis.Client {
	if cfg.DedupRedisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.DedupRedisURL)
	if err != nil {
		logger.Log.Warn("Invalid DEDUP_REDIS_URL, deduplication disabled", zap.Error(err))
		return nil
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Log.Warn("Redis not reachable yet, deduplication will fail open", zap.Error(err))
	}
	logger.Log.Info("Catalog deduplication enabled", zap.Duration("ttl", cfg.DedupTTL))
	return client
}

func runLocal(cfg *Config, awsCfg sdkaws.Config, router http.Handler, processor *services.BatchProcessor) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.QueueURL != "" && cfg.SNSTopicArn != "" {
		queue := awspkg.NewSQSClient(awsCfg, cfg.QueueURL, logger.Log)
		go func() {
			if err := queue.StartPolling(ctx, processor.HandleMessages); err != nil && !errors.Is(err, context.Canceled) {
				logger.Log.Error("Catalog consumer stopped", zap.Error(err))
			}
		}()
	} else {
		logger.Log.Info("Catalog consumer disabled, SQS_QUEUE_URL or SNS_TOPIC_ARN not set")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Log.Info("Product Service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down Product Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Log.Info("Product Service stopped gracefully")
}
