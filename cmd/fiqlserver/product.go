package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// productNamespace derives stable product IDs so links survive a reseed.
var productNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/nlstn/go-fiql/cmd/fiqlserver/products"))

// Product represents a product entity for the development server
type Product struct {
	ID          uuid.UUID       `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name        string          `json:"name" gorm:"not null"`
	Description *string         `json:"description,omitempty"`
	Category    string          `json:"category" gorm:"not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Stock       int             `json:"stock" gorm:"not null"`
	InStock     bool            `json:"inStock" gorm:"not null"`
	ReleasedAt  time.Time       `json:"releasedAt" gorm:"not null"`
}

// productID returns the stable ID of the sample product with the given name.
func productID(name string) uuid.UUID {
	return uuid.NewSHA1(productNamespace, []byte(name))
}

// GetSampleProducts returns sample product data for seeding the database
func GetSampleProducts() []Product {
	desc := func(s string) *string { return &s }
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	products := []Product{
		{
			Name:        "Laptop",
			Description: desc("High-performance laptop for productivity and gaming"),
			Category:    "Electronics",
			Price:       decimal.RequireFromString("999.99"),
			Stock:       12,
			ReleasedAt:  day(2024, time.March, 1),
		},
		{
			Name:        "Wireless Mouse",
			Description: desc("Ergonomic wireless mouse with precision tracking"),
			Category:    "Electronics",
			Price:       decimal.RequireFromString("29.99"),
			Stock:       240,
			ReleasedAt:  day(2023, time.June, 15),
		},
		{
			Name:        "Coffee Mug",
			Description: desc("Ceramic coffee mug with heat retention technology"),
			Category:    "Kitchen",
			Price:       decimal.RequireFromString("15.50"),
			Stock:       0,
			ReleasedAt:  day(2022, time.January, 10),
		},
		{
			Name:        "Office Chair",
			Description: desc("Ergonomic office chair with lumbar support"),
			Category:    "Furniture",
			Price:       decimal.RequireFromString("249.99"),
			Stock:       8,
			ReleasedAt:  day(2024, time.September, 20),
		},
		{
			Name:       "Smartphone",
			Category:   "Electronics",
			Price:      decimal.RequireFromString("799.99"),
			Stock:      35,
			ReleasedAt: day(2025, time.February, 5),
		},
	}

	for i := range products {
		products[i].ID = productID(products[i].Name)
		products[i].InStock = products[i].Stock > 0
	}
	return products
}
