package models

import (
	"time"

	"github.com/google/uuid"
)

type ProductType string

const (
	ProductTypeOriginal ProductType = "original"
	ProductTypePrint    ProductType = "print"
)

// Product is the catalog record. Prices and shipping costs are in øre.
type Product struct {
	ID              uuid.UUID      `json:"id"`
	Title           string         `json:"title"`
	Slug            string         `json:"slug"`
	Price           int64          `json:"price"`
	ImageURL        string         `json:"image_url,omitempty"`
	ProductType     ProductType    `json:"product_type"`
	StockQuantity   *int           `json:"stock_quantity"`
	IsAvailable     bool           `json:"is_available"`
	RequiresInquiry bool           `json:"requires_inquiry"`
	ShippingCost    *int64         `json:"shipping_cost"`
	Sizes           []SelectedSize `json:"sizes,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ProductSnapshot is the copy of catalog fields a cart line keeps from the
// moment it was added.
type ProductSnapshot struct {
	ID              uuid.UUID   `json:"id"`
	Title           string      `json:"title"`
	Slug            string      `json:"slug"`
	Price           int64       `json:"price"`
	ImageURL        string      `json:"image_url,omitempty"`
	ProductType     ProductType `json:"product_type"`
	StockQuantity   *int        `json:"stock_quantity"`
	IsAvailable     bool        `json:"is_available"`
	RequiresInquiry bool        `json:"requires_inquiry"`
	ShippingCost    *int64      `json:"shipping_cost"`
}

func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:              p.ID,
		Title:           p.Title,
		Slug:            p.Slug,
		Price:           p.Price,
		ImageURL:        p.ImageURL,
		ProductType:     p.ProductType,
		StockQuantity:   p.StockQuantity,
		IsAvailable:     p.IsAvailable,
		RequiresInquiry: p.RequiresInquiry,
		ShippingCost:    p.ShippingCost,
	}
}

// FindSize returns the catalog variant with the same identity as size.
func (p *Product) FindSize(size *SelectedSize) (*SelectedSize, bool) {
	if size == nil {
		return nil, true
	}

	for i := range p.Sizes {
		if p.Sizes[i].Key() == size.Key() {
			return &p.Sizes[i], true
		}
	}

	return nil, false
}

// HasLimitedStock reports whether a stock count applies. Null stock means unlimited.
func (p ProductSnapshot) HasLimitedStock() bool {
	return p.StockQuantity != nil
}
