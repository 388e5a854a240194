package models

// Product is a row of the Products table.
type Product struct {
	ID          string  `json:"id" dynamodbav:"id"`
	Title       string  `json:"title" dynamodbav:"title"`
	Description string  `json:"description" dynamodbav:"description"`
	Price       float64 `json:"price" dynamodbav:"price"`
}

// Stock is a row of the Stocks table, keyed by product id.
type Stock struct {
	ProductID string `json:"product_id" dynamodbav:"product_id"`
	Count     int    `json:"count" dynamodbav:"count"`
}

// ProductWithStock is the API view of a product joined with its stock.
type ProductWithStock struct {
	Product
	Count int `json:"count"`
}
