package services

import (
	"context"

	awspkg "github.com/ElenaCherpakova/e-store-aws-backend/pkg/aws"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/common/catalog"
)

// NotificationSubject is the subject of every product-created notification.
const NotificationSubject = "New products added"

// ProductNotifier announces a created product.
type ProductNotifier interface {
	ProductCreated(ctx context.Context, rec catalog.Record) error
}

// SNSNotifier publishes product-created notifications to a topic. The
// numeric price attribute lets subscriptions filter by price.
type SNSNotifier struct {
	publisher awspkg.SNSPublisher
	topicArn  string
}

func NewSNSNotifier(publisher awspkg.SNSPublisher, topicArn string) *SNSNotifier {
	return &SNSNotifier{publisher: publisher, topicArn: topicArn}
}

func (n *SNSNotifier) ProductCreated(ctx context.Context, rec catalog.Record) error {
	return n.publisher.Publish(ctx, n.topicArn, awspkg.SNSMessage{
		Subject: NotificationSubject,
		Body:    rec.Summary(),
		Attributes: map[string]awspkg.MessageAttribute{
			"price": {DataType: "Number", Value: catalog.FormatPrice(rec.Price)},
		},
	})
}
