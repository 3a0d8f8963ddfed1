// Package pricing computes cart money figures. Every amount is an int64 in
// øre and every function is pure.
package pricing

import (
	"github.com/aaravmahajanofficial/art-storefront/internal/models"
	"github.com/google/uuid"
)

const (
	// LevyThreshold is the line total a line has to exceed before the artist levy applies.
	LevyThreshold int64 = 250000
	LevyPercent   int64 = 5

	DefaultTolerance          int64 = 100
	DefaultMaxDiscountPercent int64 = 100
)

// Item is the pricing view of a cart or order line.
type Item struct {
	ProductID    uuid.UUID
	Title        string
	UnitPrice    int64
	Quantity     int
	ShippingCost *int64
}

func (i Item) LineTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

func FromCartItems(items []models.CartItem) []Item {
	out := make([]Item, 0, len(items))

	for _, item := range items {
		out = append(out, Item{
			ProductID:    item.Product.ID,
			Title:        item.Product.Title,
			UnitPrice:    item.UnitPrice(),
			Quantity:     item.Quantity,
			ShippingCost: item.Product.ShippingCost,
		})
	}

	return out
}

type LevyLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
	LineTotal int64     `json:"line_total"`
	Levy      int64     `json:"levy"`
}

type Levy struct {
	Total int64      `json:"total"`
	Lines []LevyLine `json:"lines"`
}

type Totals struct {
	Subtotal       int64      `json:"subtotal"`
	ShippingCost   int64      `json:"shipping_cost"`
	ArtistLevy     int64      `json:"artist_levy"`
	DiscountAmount int64      `json:"discount_amount"`
	Total          int64      `json:"total"`
	FreeShipping   bool       `json:"free_shipping"`
	LevyLines      []LevyLine `json:"levy_lines,omitempty"`
}

func Subtotal(items []Item) int64 {
	var subtotal int64

	for _, item := range items {
		subtotal += item.LineTotal()
	}

	return subtotal
}

// ShippingCost is the highest per-item shipping cost: the cart ships as one
// parcel sized by its most expensive item to send.
func ShippingCost(items []Item) int64 {
	var highest int64

	for _, item := range items {
		if item.ShippingCost != nil && *item.ShippingCost > highest {
			highest = *item.ShippingCost
		}
	}

	return highest
}

// ArtistLevy applies the levy line by line, never on the cart total.
func ArtistLevy(items []Item) Levy {
	levy := Levy{Lines: []LevyLine{}}

	for _, item := range items {
		lineTotal := item.LineTotal()
		if lineTotal <= LevyThreshold {
			continue
		}

		amount := percentOf(lineTotal, LevyPercent)
		levy.Total += amount
		levy.Lines = append(levy.Lines, LevyLine{
			ProductID: item.ProductID,
			Title:     item.Title,
			LineTotal: lineTotal,
			Levy:      amount,
		})
	}

	return levy
}

// DiscountEffect resolves a discount record into an amount for subtotal.
// The result is never above subtotal.
func DiscountEffect(discount models.DiscountInfo, subtotal int64) int64 {
	if subtotal <= 0 || discount.DiscountValue <= 0 {
		return 0
	}

	switch discount.DiscountType {
	case models.DiscountTypePercentage:
		return percentOf(subtotal, min(discount.DiscountValue, 100))
	case models.DiscountTypeFixedAmount:
		return min(discount.DiscountValue, subtotal)
	default:
		return 0
	}
}

func CartTotals(items []Item, discount *models.DiscountInfo, shippingOverride *int64) Totals {
	var (
		amount       int64
		freeShipping bool
	)

	if discount != nil {
		amount = DiscountEffect(*discount, Subtotal(items))
		freeShipping = discount.FreeShipping
	}

	return CartTotalsSimple(items, amount, freeShipping, shippingOverride)
}

// CartTotalsSimple is CartTotals for callers holding an already resolved
// discount effect. The amount is re-checked against the current subtotal and
// clamped, so a discount applied before items were removed cannot exceed what
// is left.
func CartTotalsSimple(items []Item, discountAmount int64, freeShipping bool, shippingOverride *int64) Totals {
	subtotal := Subtotal(items)

	shipping := ShippingCost(items)
	if shippingOverride != nil {
		shipping = max(0, *shippingOverride)
	}
	if freeShipping {
		shipping = 0
	}

	levy := ArtistLevy(items)
	discount := clampDiscount(discountAmount, subtotal)

	return Totals{
		Subtotal:       subtotal,
		ShippingCost:   shipping,
		ArtistLevy:     levy.Total,
		DiscountAmount: discount,
		Total:          max(0, subtotal-discount) + shipping + levy.Total,
		FreeShipping:   freeShipping,
		LevyLines:      levy.Lines,
	}
}

func clampDiscount(amount, subtotal int64) int64 {
	if ValidateDiscountAmount(amount, subtotal, DefaultMaxDiscountPercent) == nil {
		return amount
	}

	if amount < 0 || subtotal <= 0 {
		return 0
	}

	return min(amount, subtotal)
}

// percentOf rounds half up; amount and percent are non-negative.
func percentOf(amount, percent int64) int64 {
	return (amount*percent + 50) / 100
}
