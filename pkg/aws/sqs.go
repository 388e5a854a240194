package aws

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"
)

// SQSAPI is the subset of the SQS client used here.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSClient sends to and consumes from a single SQS queue.
type SQSClient struct {
	client   SQSAPI
	queueURL string
	logger   *zap.Logger

	// MaxMessages and WaitTimeSeconds tune long polling.
	MaxMessages       int32
	WaitTimeSeconds   int32
	VisibilityTimeout int32
	// RetryDelay is the pause after a failed poll.
	RetryDelay time.Duration
}

// NewSQSClient creates a new SQS client for the given queue URL.
func NewSQSClient(cfg aws.Config, queueURL string, logger *zap.Logger) *SQSClient {
	return NewSQSClientWithAPI(sqs.NewFromConfig(cfg), queueURL, logger)
}

func NewSQSClientWithAPI(api SQSAPI, queueURL string, logger *zap.Logger) *SQSClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQSClient{
		client:            api,
		queueURL:          queueURL,
		logger:            logger,
		MaxMessages:       10,
		WaitTimeSeconds:   20,
		VisibilityTimeout: 30,
		RetryDelay:        time.Second,
	}
}

// Message is a received SQS message.
type Message struct {
	ID            string
	Body          string
	ReceiptHandle string
	Attributes    map[string]string
}

// BatchHandler processes one received batch. Returning nil acknowledges
// (deletes) every message in the batch; an error leaves them for redelivery.
type BatchHandler func(ctx context.Context, messages []Message) error

// StartPolling polls SQS and hands each non-empty batch to handler.
// Runs until ctx is cancelled.
func (c *SQSClient) StartPolling(ctx context.Context, handler BatchHandler) error {
	c.logger.Info("starting SQS polling", zap.String("queue", c.queueURL))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("SQS polling stopped", zap.String("queue", c.queueURL))
			return ctx.Err()
		default:
		}

		if err := c.pollOnce(ctx, handler); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			c.logger.Error("error polling SQS", zap.String("queue", c.queueURL), zap.Error(err))
			select {
			case <-ctx.Done():
				c.logger.Info("SQS polling stopped", zap.String("queue", c.queueURL))
				return ctx.Err()
			case <-time.After(c.RetryDelay):
			}
		}
	}
}

func (c *SQSClient) pollOnce(ctx context.Context, handler BatchHandler) error {
	result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              &c.queueURL,
		MaxNumberOfMessages:   c.MaxMessages,
		WaitTimeSeconds:       c.WaitTimeSeconds,
		VisibilityTimeout:     c.VisibilityTimeout,
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}
	if len(result.Messages) == 0 {
		return nil
	}

	batch := make([]Message, 0, len(result.Messages))
	for _, msg := range result.Messages {
		if msg.Body == nil || msg.ReceiptHandle == nil {
			continue
		}
		m := Message{
			ID:            aws.ToString(msg.MessageId),
			Body:          *msg.Body,
			ReceiptHandle: *msg.ReceiptHandle,
			Attributes:    make(map[string]string, len(msg.MessageAttributes)),
		}
		for name, attr := range msg.MessageAttributes {
			m.Attributes[name] = aws.ToString(attr.StringValue)
		}
		batch = append(batch, m)
	}

	if err := handler(ctx, batch); err != nil {
		// Messages become visible again after VisibilityTimeout.
		return fmt.Errorf("batch handler failed: %w", err)
	}

	for _, m := range batch {
		if _, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      &c.queueURL,
			ReceiptHandle: aws.String(m.ReceiptHandle),
		}); err != nil {
			c.logger.Error("failed to delete message", zap.String("message_id", m.ID), zap.Error(err))
		}
	}
	return nil
}

// SendMessage sends a single message with optional string attributes.
func (c *SQSClient) SendMessage(ctx context.Context, body string, attributes map[string]string) error {
	_, err := c.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          &c.queueURL,
		MessageBody:       &body,
		MessageAttributes: stringAttributes(attributes),
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func stringAttributes(attributes map[string]string) map[string]types.MessageAttributeValue {
	if len(attributes) == 0 {
		return nil
	}
	out := make(map[string]types.MessageAttributeValue, len(attributes))
	for name, value := range attributes {
		out[name] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(value),
		}
	}
	return out
}
