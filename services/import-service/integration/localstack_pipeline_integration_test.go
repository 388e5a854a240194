package integration

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	awspkg "github.com/ElenaCherpakova/e-store-aws-backend/pkg/aws"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/common/catalog"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/import-service/services"
)

// Runs only when RUN_LOCALSTACK_INTEGRATION=true. Needs AWS_ENDPOINT (or the
// default credentials chain), an existing BUCKET_NAME and SQS_QUEUE_URL.
func TestFileParser_LocalStack(t *testing.T) {
	if os.Getenv("RUN_LOCALSTACK_INTEGRATION") != "true" {
		t.Skip("skipping localstack integration test; set RUN_LOCALSTACK_INTEGRATION=true to run")
	}
	bucket, queueURL := os.Getenv("BUCKET_NAME"), os.Getenv("SQS_QUEUE_URL")
	if bucket == "" || queueURL == "" {
		t.Fatalf("BUCKET_NAME and SQS_QUEUE_URL must be set for integration test")
	}

	ctx := context.Background()
	cfg, err := awspkg.LoadAWSConfig(ctx)
	require.NoError(t, err)

	store := awspkg.NewS3Client(cfg)
	queue := awspkg.NewSQSClient(cfg, queueURL, zap.NewNop())

	name := "it-" + uuid.NewString() + ".csv"
	key := services.DefaultUploadedPrefix + name
	csv := "title,description,price,count\nSofa,Comfy,799.99,3\nDesk,Oak,299.99,0\n"
	_, err = store.Upload(ctx, bucket, key, "text/csv", strings.NewReader(csv))
	require.NoError(t, err)

	parser := services.NewFileParser(store, queue, nil, zap.NewNop(), "", "")
	event := events.S3Event{Records: []events.S3EventRecord{{
		S3: events.S3Entity{
			Bucket: events.S3Bucket{Name: bucket},
			Object: events.S3Object{Key: key},
		},
	}}}
	require.NoError(t, parser.Handle(ctx, event))

	_, err = store.GetObject(ctx, bucket, key)
	assert.Error(t, err, "original object should be removed")
	parsed, err := store.GetObject(ctx, bucket, services.DefaultParsedPrefix+name)
	require.NoError(t, err)
	parsed.Close()

	pollCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var mu sync.Mutex
	var titles []string
	_ = queue.StartPolling(pollCtx, func(ctx context.Context, messages []awspkg.Message) error {
		mu.Lock()
		defer mu.Unlock()
		for _, m := range messages {
			if !strings.Contains(m.Attributes[catalog.AttrSourceKey], name) {
				continue
			}
			recs, err := catalog.Decode(m.Body)
			require.NoError(t, err)
			for _, r := range recs {
				titles = append(titles, r.Title)
			}
		}
		if len(titles) >= 2 {
			cancel()
		}
		return nil
	})

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"Sofa", "Desk"}, titles)
}
