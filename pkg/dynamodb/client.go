package dynamodb

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	awspkg "github.com/ElenaCherpakova/e-store-aws-backend/pkg/aws"
)

// MaxBatchWriteItems is the BatchWriteItem request limit.
const MaxBatchWriteItems = 25

// NewClient loads AWS config (LocalStack aware) and returns a DynamoDB client.
func NewClient(ctx context.Context) (*dynamodb.Client, error) {
	cfg, err := awspkg.LoadAWSConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewClientFromConfig(cfg), nil
}

// NewClientFromConfig accepts an AWS SDK config and returns a DynamoDB client.
func NewClientFromConfig(cfg sdkaws.Config) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg)
}

// TablesExist reports whether every named table is present in the account.
func TablesExist(ctx context.Context, client dynamodb.ListTablesAPIClient, names ...string) (bool, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	paginator := dynamodb.NewListTablesPaginator(client, &dynamodb.ListTablesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return false, fmt.Errorf("list tables: %w", err)
		}
		for _, n := range page.TableNames {
			delete(want, n)
		}
	}
	return len(want) == 0, nil
}

// BatchWriteAPI is the BatchWriteItem subset of the DynamoDB client.
type BatchWriteAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// BatchPut writes items to table in chunks of MaxBatchWriteItems, resending
// unprocessed items a few times with a growing pause.
func BatchPut(ctx context.Context, client BatchWriteAPI, table string, items []map[string]types.AttributeValue) error {
	for start := 0; start < len(items); start += MaxBatchWriteItems {
		end := min(start+MaxBatchWriteItems, len(items))

		requests := make([]types.WriteRequest, 0, end-start)
		for _, item := range items[start:end] {
			requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
		}

		pending := map[string][]types.WriteRequest{table: requests}
		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt == 4 {
				return fmt.Errorf("batch write %s: %d items left unprocessed", table, len(pending[table]))
			}
			if attempt > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
				}
			}
			out, err := client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return fmt.Errorf("batch write %s: %w", table, err)
			}
			pending = out.UnprocessedItems
		}
	}
	return nil
}
