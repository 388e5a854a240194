package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	awspkg "github.com/ElenaCherpakova/e-store-aws-backend/pkg/aws"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/common/catalog"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/common/logger"
)

const (
	DefaultUploadedPrefix = "uploaded/"
	DefaultParsedPrefix   = "parsed/"
)

// ObjectStore is the subset of S3 the parser needs.
type ObjectStore interface {
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	CopyObject(ctx context.Context, bucket, srcKey, dstKey string) error
	DeleteObject(ctx context.Context, bucket, key string) error
}

// QueueSender publishes one message to the catalog queue.
type QueueSender interface {
	SendMessage(ctx context.Context, body string, attributes map[string]string) error
}

// MetricsRecorder publishes the counters of one invocation together.
type MetricsRecorder interface {
	RecordValues(ctx context.Context, values map[string]float64, dimensions map[string]string) error
}

// ParseResult summarises one processed file.
type ParseResult struct {
	Bucket    string
	Key       string
	ParsedKey string
	Enqueued  int
	Rejected  int
}

// FileParser turns an uploaded CSV into one queue message per row and then
// moves the file from the uploaded prefix to the parsed prefix.
type FileParser struct {
	store          ObjectStore
	queue          QueueSender
	metrics        MetricsRecorder
	logger         *zap.Logger
	uploadedPrefix string
	parsedPrefix   string
}

// NewFileParser wires a parser. Empty prefixes fall back to the defaults and
// a nil metrics recorder disables metrics.
func NewFileParser(store ObjectStore, queue QueueSender, metrics MetricsRecorder, log *zap.Logger, uploadedPrefix, parsedPrefix string) *FileParser {
	if log == nil {
		log = zap.NewNop()
	}
	if uploadedPrefix == "" {
		uploadedPrefix = DefaultUploadedPrefix
	}
	if parsedPrefix == "" {
		parsedPrefix = DefaultParsedPrefix
	}
	return &FileParser{
		store:          store,
		queue:          queue,
		metrics:        metrics,
		logger:         log,
		uploadedPrefix: uploadedPrefix,
		parsedPrefix:   parsedPrefix,
	}
}

// Handle processes the first object referenced by event. Objects outside the
// uploaded prefix, and objects already moved by an earlier delivery of the
// same event, are ignored. Rows that fail validation are logged and
// skipped; a failed send, copy or delete aborts the invocation.
func (p *FileParser) Handle(ctx context.Context, event events.S3Event) error {
	log := p.logger.With(zap.String("request_id", logger.RequestID(ctx)))

	if len(event.Records) == 0 {
		log.Warn("S3 event has no records")
		return nil
	}
	if len(event.Records) > 1 {
		log.Warn("S3 event has more than one record, only the first is processed",
			zap.Int("records", len(event.Records)))
	}

	record := event.Records[0]
	bucket := record.S3.Bucket.Name
	key := ObjectKey(record.S3.Object)

	suffix, ok := strings.CutPrefix(key, p.uploadedPrefix)
	if !ok || suffix == "" {
		log.Info("Skipping object outside upload prefix", zap.String("bucket", bucket), zap.String("key", key))
		return nil
	}

	source := bucket + "/" + key
	if seq := record.S3.Object.Sequencer; seq != "" {
		source += "@" + seq
	}

	result, err := p.parse(ctx, log, bucket, key, source)
	if errors.Is(err, awspkg.ErrObjectNotFound) {
		log.Info("Skipping object that is no longer in the upload prefix", zap.String("bucket", bucket), zap.String("key", key))
		return nil
	}
	if err != nil {
		return err
	}

	result.ParsedKey = p.parsedPrefix + suffix
	if err := p.store.CopyObject(ctx, bucket, key, result.ParsedKey); err != nil {
		return fmt.Errorf("relocate %s: %w", key, err)
	}
	if err := p.store.DeleteObject(ctx, bucket, key); err != nil {
		return fmt.Errorf("relocate %s: %w", key, err)
	}

	log.Info("File parsed",
		zap.String("bucket", result.Bucket),
		zap.String("key", result.Key),
		zap.String("parsed_key", result.ParsedKey),
		zap.Int("enqueued", result.Enqueued),
		zap.Int("rejected", result.Rejected),
	)
	return nil
}

// parse enqueues every valid row. source identifies this upload of the
// object and is attached to each message with the row's line number.
func (p *FileParser) parse(ctx context.Context, log *zap.Logger, bucket, key, source string) (*ParseResult, error) {
	body, err := p.store.GetObject(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	defer body.Close()

	result := &ParseResult{Bucket: bucket, Key: key}
	defer p.record(ctx, result)

	rows, err := NewRowReader(body)
	if errors.Is(err, ErrNoHeader) {
		log.Warn("Uploaded file is empty", zap.String("key", key))
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	for {
		row, err := rows.Next()
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			result.Rejected++
			log.Warn("Rejected malformed CSV row", zap.String("key", key), zap.Int("line", parseErr.StartLine), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}

		rec, err := catalog.FromRow(row.Fields)
		if err != nil {
			result.Rejected++
			log.Warn("Rejected CSV row", zap.String("key", key), zap.Int("line", row.Line), zap.Error(err))
			continue
		}

		msg, err := catalog.Encode(rec)
		if err != nil {
			return nil, err
		}
		attrs := map[string]string{
			catalog.AttrSourceKey: source,
			catalog.AttrSourceRow: strconv.Itoa(row.Line),
		}
		if err := p.queue.SendMessage(ctx, msg, attrs); err != nil {
			return nil, fmt.Errorf("enqueue %s line %d: %w", key, row.Line, err)
		}
		result.Enqueued++
		log.Debug("Enqueued catalog record", zap.String("title", rec.Title), zap.Int("line", row.Line))
	}
}

func (p *FileParser) record(ctx context.Context, result *ParseResult) {
	if p.metrics == nil {
		return
	}
	values := map[string]float64{
		awspkg.MetricCatalogRowsEnqueued: float64(result.Enqueued),
		awspkg.MetricCatalogRowsRejected: float64(result.Rejected),
	}
	if err := p.metrics.RecordValues(ctx, values, map[string]string{"Service": "import-service"}); err != nil {
		p.logger.Warn("Failed to record metrics", zap.Error(err))
	}
}

// ObjectKey returns the decoded object key of an S3 notification. Keys in
// notifications are URL-encoded with '+' for spaces.
func ObjectKey(obj events.S3Object) string {
	if obj.URLDecodedKey != "" {
		return obj.URLDecodedKey
	}
	if decoded, err := url.QueryUnescape(obj.Key); err == nil {
		return decoded
	}
	return obj.Key
}
