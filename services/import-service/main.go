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
	"go.uber.org/zap"

	awspkg "github.com/ElenaCherpakova/e-store-aws-backend/pkg/aws"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/common/logger"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/common/middleware"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/import-service/controllers"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/import-service/routes"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/import-service/services"
)

const (
	serviceName = "import-service"

	handlerImportProductsFile = "importProductsFile"
	handlerImportFileParser   = "importFileParser"
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

	s3Client := awspkg.NewS3Client(awsCfg)
	metrics := awspkg.NewMetricsClient(awsCfg)

	importController := controllers.NewImportController(s3Client, cfg.BucketName, cfg.UploadedPrefix)
	router := routes.NewRouter(logger.Log, metrics, importController)

	var parser *services.FileParser
	if cfg.QueueURL != "" {
		queue := awspkg.NewSQSClient(awsCfg, cfg.QueueURL, logger.Log)
		parser = services.NewFileParser(s3Client, queue, metrics, logger.Log, cfg.UploadedPrefix, cfg.ParsedPrefix)
	}

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		switch name := lambdaHandler(); name {
		case handlerImportProductsFile:
			lambda.Start(middleware.LambdaProxy(router))
		case handlerImportFileParser:
			if parser == nil {
				logger.Log.Fatal("SQS_QUEUE_URL is required for the file parser")
			}
			lambda.Start(parser.Handle)
		default:
			logger.Log.Fatal("Unknown Lambda handler", zap.String("handler", name))
		}
		return
	}

	runLocal(cfg, awsCfg, router, parser)
}

// lambdaHandler returns the function part of _HANDLER, e.g. "bootstrap.importFileParser".
func lambdaHandler() string {
	h := os.Getenv("_HANDLER")
	if i := strings.LastIndex(h, "."); i >= 0 {
		return h[i+1:]
	}
	return h
}

func runLocal(cfg *Config, awsCfg sdkaws.Config, router http.Handler, parser *services.FileParser) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if parser != nil && cfg.EventsQueueURL != "" {
		notifications := awspkg.NewSQSClient(awsCfg, cfg.EventsQueueURL, logger.Log)
		go func() {
			if err := notifications.StartPolling(ctx, parser.HandleMessages); err != nil && !errors.Is(err, context.Canceled) {
				logger.Log.Error("S3 notification consumer stopped", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Log.Info("Import Service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down Import Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Log.Info("Import Service stopped gracefully")
}
