package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ElenaCherpakova/e-store-aws-backend/services/product-service/models"
)

type fakeBatchWriter struct {
	written map[string][]map[string]types.AttributeValue
	err     error
}

func (f *fakeBatchWriter) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.written == nil {
		f.written = map[string][]map[string]types.AttributeValue{}
	}
	for table, reqs := range params.RequestItems {
		for _, r := range reqs {
			f.written[table] = append(f.written[table], r.PutRequest.Item)
		}
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func testSeeder(client *fakeBatchWriter) *seeder {
	s := newSeeder(client, "Products", "Stocks")
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	s.stockCount = func() int { return 7 }
	return s
}

func TestSeed_WritesProductsAndStocks(t *testing.T) {
	client := &fakeBatchWriter{}

	seeded, err := testSeeder(client).seed(context.Background(), mockProducts)
	require.NoError(t, err)
	require.Len(t, seeded, len(mockProducts))
	require.Len(t, client.written["Products"], len(mockProducts))
	require.Len(t, client.written["Stocks"], len(mockProducts))

	var p models.Product
	require.NoError(t, attributevalue.UnmarshalMap(client.written["Products"][0], &p))
	assert.Equal(t, "id-1", p.ID)
	assert.Equal(t, "Modern Sofa", p.Title)
	assert.Equal(t, 799.99, p.Price)

	var s models.Stock
	require.NoError(t, attributevalue.UnmarshalMap(client.written["Stocks"][0], &s))
	assert.Equal(t, "id-1", s.ProductID)
	assert.Equal(t, 7, s.Count)
}

func TestSeed_RandomStockInRange(t *testing.T) {
	s := newSeeder(&fakeBatchWriter{}, "Products", "Stocks")
	for range 100 {
		c := s.stockCount()
		assert.GreaterOrEqual(t, c, 0)
		assert.Less(t, c, maxSeedCount)
	}
}

func TestSeed_WriteError(t *testing.T) {
	client := &fakeBatchWriter{err: errors.New("throttled")}

	_, err := testSeeder(client).seed(context.Background(), mockProducts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}
