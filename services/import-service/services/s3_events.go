package services

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	awspkg "github.com/ElenaCherpakova/e-store-aws-backend/pkg/aws"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/common/logger"
)

// HandleMessages feeds S3 notifications delivered through SQS to Handle.
// Bodies that are not S3 events are logged and dropped. A failed file
// returns the error so the whole batch is redelivered.
func (p *FileParser) HandleMessages(ctx context.Context, messages []awspkg.Message) error {
	for _, m := range messages {
		var event events.S3Event
		if err := json.Unmarshal([]byte(m.Body), &event); err != nil {
			p.logger.Warn("Dropping message that is not an S3 notification", zap.String("message_id", m.ID), zap.Error(err))
			continue
		}
		// s3:TestEvent notifications carry no records and are no-ops.
		if err := p.Handle(logger.WithContext(ctx, m.ID), event); err != nil {
			return err
		}
	}
	return nil
}
