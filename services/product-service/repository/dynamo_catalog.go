package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	apperrors "github.com/ElenaCherpakova/e-store-aws-backend/services/common/errors"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/product-service/models"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoCatalog.
type DynamoAPI interface {
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoCatalog stores products in the Products table (key `id`) and stock
// in the Stocks table (key `product_id`).
type DynamoCatalog struct {
	client        DynamoAPI
	productsTable string
	stocksTable   string
}

func NewDynamoCatalog(client DynamoAPI, productsTable, stocksTable string) *DynamoCatalog {
	return &DynamoCatalog{client: client, productsTable: productsTable, stocksTable: stocksTable}
}

// CreateProductWithStock puts the product and its stock in a single
// transaction. Both puts are conditional on the key being new.
func (d *DynamoCatalog) CreateProductWithStock(ctx context.Context, product models.Product, count int) error {
	productItem, err := attributevalue.MarshalMap(product)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	stockItem, err := attributevalue.MarshalMap(models.Stock{ProductID: product.ID, Count: count})
	if err != nil {
		return fmt.Errorf("marshal stock: %w", err)
	}

	_, err = d.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(d.productsTable),
				Item:                productItem,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			}},
			{Put: &types.Put{
				TableName:           aws.String(d.stocksTable),
				Item:                stockItem,
				ConditionExpression: aws.String("attribute_not_exists(product_id)"),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("dynamodb TransactWriteItems failed (%s): %w", describeError(err), err)
	}
	return nil
}

func (d *DynamoCatalog) FindByID(ctx context.Context, id string) (*models.ProductWithStock, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.productsTable),
		Key:       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, apperrors.ErrProductNotFound
	}

	var p models.Product
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}

	stockOut, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.stocksTable),
		Key:       map[string]types.AttributeValue{"product_id": &types.AttributeValueMemberS{Value: id}},
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem stock failed: %w", err)
	}
	var s models.Stock
	if len(stockOut.Item) > 0 {
		if err := attributevalue.UnmarshalMap(stockOut.Item, &s); err != nil {
			return nil, fmt.Errorf("unmarshal stock: %w", err)
		}
	}

	return &models.ProductWithStock{Product: p, Count: s.Count}, nil
}

// FindAll scans both tables and joins them in memory.
func (d *DynamoCatalog) FindAll(ctx context.Context) ([]models.ProductWithStock, error) {
	var products []models.Product
	if err := d.scanAll(ctx, d.productsTable, &products); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return []models.ProductWithStock{}, nil
	}

	var stocks []models.Stock
	if err := d.scanAll(ctx, d.stocksTable, &stocks); err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(stocks))
	for _, s := range stocks {
		counts[s.ProductID] = s.Count
	}

	result := make([]models.ProductWithStock, 0, len(products))
	for _, p := range products {
		result = append(result, models.ProductWithStock{Product: p, Count: counts[p.ID]})
	}
	return result, nil
}

func (d *DynamoCatalog) scanAll(ctx context.Context, table string, out any) error {
	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{TableName: aws.String(table)})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("dynamodb Scan %s failed: %w", table, err)
		}
		items = append(items, page.Items...)
	}
	if err := attributevalue.UnmarshalListOfMaps(items, out); err != nil {
		return fmt.Errorf("unmarshal %s items: %w", table, err)
	}
	return nil
}

// describeError names the DynamoDB error code and, for a cancelled
// transaction, the per-item cancellation reasons.
func describeError(err error) string {
	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		reasons := make([]string, 0, len(canceled.CancellationReasons))
		for _, r := range canceled.CancellationReasons {
			reasons = append(reasons, aws.ToString(r.Code))
		}
		return "TransactionCanceled: " + strings.Join(reasons, ",")
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return "unknown"
}
