package main

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	ddbpkg "github.com/ElenaCherpakova/e-store-aws-backend/pkg/dynamodb"
	"github.com/ElenaCherpakova/e-store-aws-backend/services/product-service/models"
)

// maxSeedCount bounds the random stock of a seeded product (exclusive).
const maxSeedCount = 15

var mockProducts = []models.Product{
	{Title: "Modern Sofa", Description: "Comfortable 3-seater sofa with soft cushions", Price: 799.99},
	{Title: "Dining Table Set", Description: "Wooden dining table with 6 chairs", Price: 649.99},
	{Title: "Queen Bed Frame", Description: "Sturdy queen size bed frame in walnut finish", Price: 499.99},
	{Title: "Office Desk", Description: "Spacious desk with drawers for a home office", Price: 299.99},
	{Title: "Bookshelf", Description: "Five shelf bookcase in oak finish", Price: 199.99},
	{Title: "Night stand", Description: "Bedside table with one drawer", Price: 99.99},
}

type seeder struct {
	client        ddbpkg.BatchWriteAPI
	productsTable string
	stocksTable   string
	newID         func() string
	stockCount    func() int
}

func newSeeder(client ddbpkg.BatchWriteAPI, productsTable, stocksTable string) *seeder {
	return &seeder{
		client:        client,
		productsTable: productsTable,
		stocksTable:   stocksTable,
		newID:         uuid.NewString,
		stockCount:    func() int { return rand.IntN(maxSeedCount) },
	}
}

// seed writes every mock product with a fresh id and a matching stock row.
func (s *seeder) seed(ctx context.Context, templates []models.Product) ([]models.ProductWithStock, error) {
	products := make([]map[string]types.AttributeValue, 0, len(templates))
	stocks := make([]map[string]types.AttributeValue, 0, len(templates))
	seeded := make([]models.ProductWithStock, 0, len(templates))

	for _, tpl := range templates {
		p := tpl
		p.ID = s.newID()
		stock := models.Stock{ProductID: p.ID, Count: s.stockCount()}

		pItem, err := attributevalue.MarshalMap(p)
		if err != nil {
			return nil, fmt.Errorf("marshal product %q: %w", p.Title, err)
		}
		sItem, err := attributevalue.MarshalMap(stock)
		if err != nil {
			return nil, fmt.Errorf("marshal stock %q: %w", p.Title, err)
		}
		products = append(products, pItem)
		stocks = append(stocks, sItem)
		seeded = append(seeded, models.ProductWithStock{Product: p, Count: stock.Count})
	}

	if err := ddbpkg.BatchPut(ctx, s.client, s.productsTable, products); err != nil {
		return nil, err
	}
	if err := ddbpkg.BatchPut(ctx, s.client, s.stocksTable, stocks); err != nil {
		return nil, err
	}
	return seeded, nil
}
