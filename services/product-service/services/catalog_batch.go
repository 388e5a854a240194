package services

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"go.uber.org/zap"

	awspkg "github.com/ElenaCherpakova/e-store-aws-backend/pkg/aws"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/common/catalog"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/common/logger"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/common/response"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/product-service/models"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/product-service/repository"
)

// BatchProcessedMessage is the message of every batch response.
const BatchProcessedMessage = "Products and stocks processed"

const dedupSettleTimeout = 2 * time.Second

// MetricsRecorder publishes the counters of one invocation together.
type MetricsRecorder interface {
	RecordValues(ctx context.Context, values map[string]float64, dimensions map[string]string) error
}

// BatchResult counts what happened to the records of one batch.
type BatchResult struct {
	Message             string `json:"message"`
	Received            int    `json:"received"`
	Created             int    `json:"created"`
	Failed              int    `json:"failed"`
	Duplicates          int    `json:"duplicates"`
	MalformedMessages   int    `json:"malformed_messages"`
	NotificationsFailed int    `json:"notifications_failed"`
}

// BatchProcessor creates a product and its stock for every catalog record
// in a queue batch and announces each one. Records are handled one at a
// time; a failing record is logged and skipped.
type BatchProcessor struct {
	repo     repository.CatalogRepo
	notifier ProductNotifier
	dedup    Deduplicator
	metrics  MetricsRecorder
	logger   *zap.Logger
	newID    func() string
}

// BatchOption customises a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithDeduplicator enables the idempotency guard.
func WithDeduplicator(d Deduplicator) BatchOption {
	return func(p *BatchProcessor) { p.dedup = d }
}

// WithMetrics records batch counters.
func WithMetrics(m MetricsRecorder) BatchOption {
	return func(p *BatchProcessor) { p.metrics = m }
}

// WithIDGenerator replaces the product id source.
func WithIDGenerator(fn func() string) BatchOption {
	return func(p *BatchProcessor) { p.newID = fn }
}

func NewBatchProcessor(repo repository.CatalogRepo, notifier ProductNotifier, log *zap.Logger, opts ...BatchOption) *BatchProcessor {
	if log == nil {
		log = zap.NewNop()
	}
	p := &BatchProcessor{
		repo:     repo,
		notifier: notifier,
		logger:   log,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle processes an SQS batch. The response is always 200; per-record
// failures only show up in the counts and the logs.
func (p *BatchProcessor) Handle(ctx context.Context, event events.SQSEvent) (events.APIGatewayProxyResponse, error) {
	result := p.Process(ctx, event.Records)
	return response.Success(result), nil
}

// Process runs every record of every message in order.
func (p *BatchProcessor) Process(ctx context.Context, messages []events.SQSMessage) BatchResult {
	log := p.logger.With(zap.String("request_id", logger.RequestID(ctx)))
	result := BatchResult{Message: BatchProcessedMessage}

	for _, msg := range messages {
		records, err := catalog.Decode(msg.Body)
		if err != nil {
			result.MalformedMessages++
			log.Warn("Skipping malformed catalog message", zap.String("message_id", msg.MessageId), zap.Error(err))
			continue
		}

		base := dedupBase(msg)
		for i, rec := range records {
			result.Received++
			key := base
			if len(records) > 1 {
				key = base + "#" + strconv.Itoa(i)
			}
			p.processRecord(ctx, log.With(zap.String("message_id", msg.MessageId)), key, rec, &result)
		}
	}

	log.Info("Catalog batch processed",
		zap.Int("messages", len(messages)),
		zap.Int("received", result.Received),
		zap.Int("created", result.Created),
		zap.Int("failed", result.Failed),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("malformed_messages", result.MalformedMessages),
	)
	p.record(ctx, result)
	return result
}

func (p *BatchProcessor) processRecord(ctx context.Context, log *zap.Logger, key string, rec catalog.Record, result *BatchResult) {
	if err := rec.Validate(); err != nil {
		result.Failed++
		log.Error("Invalid catalog record", zap.String("title", rec.Title), zap.Error(err))
		return
	}

	if p.dedup != nil {
		fresh, err := p.dedup.Acquire(ctx, key)
		switch {
		case err != nil:
			log.Warn("Deduplication unavailable, processing record anyway", zap.String("dedup_key", key), zap.Error(err))
		case !fresh:
			result.Duplicates++
			log.Info("Skipping duplicate catalog record", zap.String("dedup_key", key), zap.String("title", rec.Title))
			return
		}
	}

	product := models.Product{
		ID:          p.newID(),
		Title:       rec.Title,
		Description: rec.Description,
		Price:       rec.Price,
	}
	if err := p.repo.CreateProductWithStock(ctx, product, rec.Count); err != nil {
		result.Failed++
		log.Error("Failed to create product and stock", zap.String("title", rec.Title), zap.Error(err))
		if p.dedup != nil {
			dctx, cancel := detached(ctx)
			if rerr := p.dedup.Release(dctx, key); rerr != nil {
				log.Warn("Failed to release dedup key", zap.String("dedup_key", key), zap.Error(rerr))
			}
			cancel()
		}
		return
	}
	result.Created++
	if p.dedup != nil {
		dctx, cancel := detached(ctx)
		if cerr := p.dedup.Commit(dctx, key); cerr != nil {
			log.Warn("Failed to commit dedup key", zap.String("dedup_key", key), zap.Error(cerr))
		}
		cancel()
	}
	log.Info("Product created", zap.String("product_id", product.ID), zap.String("title", product.Title), zap.Int("count", rec.Count))

	if err := p.notifier.ProductCreated(ctx, rec); err != nil {
		result.NotificationsFailed++
		log.Error("Failed to publish product notification", zap.String("product_id", product.ID), zap.Error(err))
	}
}

// HandleMessages adapts messages received by the local poller. Every message
// is acknowledged since per-record failures are not retried.
func (p *BatchProcessor) HandleMessages(ctx context.Context, messages []awspkg.Message) error {
	records := make([]events.SQSMessage, 0, len(messages))
	for _, m := range messages {
		attrs := make(map[string]events.SQSMessageAttribute, len(m.Attributes))
		for name, value := range m.Attributes {
			v := value
			attrs[name] = events.SQSMessageAttribute{DataType: "String", StringValue: &v}
		}
		records = append(records, events.SQSMessage{MessageId: m.ID, Body: m.Body, MessageAttributes: attrs})
	}
	p.Process(ctx, records)
	return nil
}

func (p *BatchProcessor) record(ctx context.Context, result BatchResult) {
	if p.metrics == nil {
		return
	}
	values := map[string]float64{
		awspkg.MetricCatalogBatchSize:    float64(result.Received),
		awspkg.MetricProductsCreated:     float64(result.Created),
		awspkg.MetricProductsFailed:      float64(result.Failed),
		awspkg.MetricProductsDuplicate:   float64(result.Duplicates),
		awspkg.MetricNotificationsFailed: float64(result.NotificationsFailed),
	}
	if err := p.metrics.RecordValues(ctx, values, map[string]string{"Service": "product-service"}); err != nil {
		p.logger.Warn("Failed to record metrics", zap.Error(err))
	}
}

// detached outlives a cancelled invocation context long enough to settle a
// dedup key after the write finished or failed.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), dedupSettleTimeout)
}

// dedupBase identifies the source of a message: the uploaded file and row
// when the file parser set them, otherwise the SQS message id.
func dedupBase(msg events.SQSMessage) string {
	key := msg.MessageAttributes[catalog.AttrSourceKey].StringValue
	row := msg.MessageAttributes[catalog.AttrSourceRow].StringValue
	if key != nil && row != nil && *key != "" && *row != "" {
		return *key + ":" + *row
	}
	return "msg:" + msg.MessageId
}
