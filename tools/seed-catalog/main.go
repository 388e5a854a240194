package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	awspkg "github.com/ElenaCherpakova/e-store-aws-backend/pkg/aws"
	ddbpkg "github.com/ElenaCherpakova/e-store-aws-backend/pkg/dynamodb"
)

func main() {
	_ = godotenv.Load()

	var productsTable, stocksTable string
	flag.StringVar(&productsTable, "products", os.Getenv("PRODUCTS_TABLE"), "DynamoDB products table name")
	flag.StringVar(&stocksTable, "stocks", os.Getenv("STOCKS_TABLE"), "DynamoDB stocks table name")
	flag.Parse()

	if productsTable == "" {
		productsTable = "Products"
	}
	if stocksTable == "" {
		stocksTable = "Stocks"
	}

	ctx := context.Background()
	awsCfg, err := awspkg.LoadAWSConfig(ctx)
	if err != nil {
		log.Fatalf("aws config: %v", err)
	}
	client := ddbpkg.NewClientFromConfig(awsCfg)

	ok, err := ddbpkg.TablesExist(ctx, client, productsTable, stocksTable)
	if err != nil {
		log.Fatalf("list tables: %v", err)
	}
	if !ok {
		log.Fatalf("tables %s and %s must exist before seeding", productsTable, stocksTable)
	}

	seeded, err := newSeeder(client, productsTable, stocksTable).seed(ctx, mockProducts)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	for _, p := range seeded {
		log.Printf("seeded %s %q count=%d", p.ID, p.Title, p.Count)
	}
	fmt.Printf("Seeding complete. products=%d\n", len(seeded))
}
