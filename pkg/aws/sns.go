package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// MessageAttribute is a typed SNS message attribute used by subscription
// filter policies. DataType is "String" or "Number".
type MessageAttribute struct {
	DataType string
	Value    string
}

// SNSMessage is a single publish request.
type SNSMessage struct {
	Subject    string
	Body       string
	Attributes map[string]MessageAttribute
}

// SNSPublisher is a minimal interface for publishing messages to SNS.
type SNSPublisher interface {
	Publish(ctx context.Context, topicArn string, msg SNSMessage) error
}

type SNSClient struct {
	client *sns.Client
}

func NewSNSClient(cfg sdkaws.Config) *SNSClient {
	return &SNSClient{client: sns.NewFromConfig(cfg)}
}

// Publish publishes msg to the given SNS topic ARN.
func (s *SNSClient) Publish(ctx context.Context, topicArn string, msg SNSMessage) error {
	if topicArn == "" {
		return fmt.Errorf("empty topicArn")
	}

	input := &sns.PublishInput{
		TopicArn: sdkaws.String(topicArn),
		Message:  sdkaws.String(msg.Body),
	}
	if msg.Subject != "" {
		input.Subject = sdkaws.String(msg.Subject)
	}
	if len(msg.Attributes) > 0 {
		input.MessageAttributes = make(map[string]types.MessageAttributeValue, len(msg.Attributes))
		for name, attr := range msg.Attributes {
			input.MessageAttributes[name] = types.MessageAttributeValue{
				DataType:    sdkaws.String(attr.DataType),
				StringValue: sdkaws.String(attr.Value),
			}
		}
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("sns publish failed for topic %s: %w", topicArn, err)
	}
	return nil
}
