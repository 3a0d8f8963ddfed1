package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SelectedSize struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Label  string `json:"label"`
	Price  *int64 `json:"price,omitempty"`
}

// Key is the identity of a size variant. The price override is not part of it.
func (s *SelectedSize) Key() string {
	if s == nil {
		return ""
	}

	return fmt.Sprintf("%dx%d:%s", s.Width, s.Height, s.Label)
}

// ItemKey is the composite identity of a cart line.
type ItemKey struct {
	ProductID uuid.UUID
	Size      string
}

func NewItemKey(productID uuid.UUID, size *SelectedSize) ItemKey {
	return ItemKey{ProductID: productID, Size: size.Key()}
}

type CartItem struct {
	Product       ProductSnapshot `json:"product"`
	Quantity      int             `json:"quantity"`
	SelectedSize  *SelectedSize   `json:"selectedSize,omitempty"`
	ReservationID string          `json:"reservationId,omitempty"`
	ExpiresAt     *time.Time      `json:"expiresAt,omitempty"`
}

func (i CartItem) Key() ItemKey {
	return NewItemKey(i.Product.ID, i.SelectedSize)
}

// UnitPrice is the size override when one exists, otherwise the product price.
func (i CartItem) UnitPrice() int64 {
	if i.SelectedSize != nil && i.SelectedSize.Price != nil {
		return *i.SelectedSize.Price
	}

	return i.Product.Price
}

func (i CartItem) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && i.ExpiresAt.Before(now)
}

// Cart holds derived money fields that only the pricing engine writes.
type Cart struct {
	Items           []CartItem `json:"items"`
	Subtotal        int64      `json:"subtotal"`
	ShippingCost    int64      `json:"shippingCost"`
	ArtistLevy      int64      `json:"artistLevy"`
	DiscountAmount  int64      `json:"discountAmount"`
	Total           int64      `json:"total"`
	DiscountCode    string     `json:"discountCode,omitempty"`
	FreeShipping    bool       `json:"freeShipping"`
	AppliedDiscount int64      `json:"appliedDiscount,omitempty"`
}

func EmptyCart() Cart {
	return Cart{Items: []CartItem{}}
}

// Clone returns a copy that shares no slices or pointers with c.
func (c Cart) Clone() Cart {
	out := c
	out.Items = make([]CartItem, len(c.Items))

	for i, item := range c.Items {
		out.Items[i] = item.clone()
	}

	return out
}

func (i CartItem) clone() CartItem {
	out := i

	if i.SelectedSize != nil {
		size := *i.SelectedSize
		if size.Price != nil {
			price := *size.Price
			size.Price = &price
		}
		out.SelectedSize = &size
	}

	if i.ExpiresAt != nil {
		at := *i.ExpiresAt
		out.ExpiresAt = &at
	}

	if i.Product.StockQuantity != nil {
		stock := *i.Product.StockQuantity
		out.Product.StockQuantity = &stock
	}

	if i.Product.ShippingCost != nil {
		cost := *i.Product.ShippingCost
		out.Product.ShippingCost = &cost
	}

	return out
}

// CartSnapshot is the persisted form of a session cart.
type CartSnapshot struct {
	Version   int   `json:"version"`
	Timestamp int64 `json:"timestamp"`
	Cart      Cart  `json:"cart"`
}

type AddItemRequest struct {
	ProductID    uuid.UUID     `json:"product_id" validate:"required"`
	Quantity     float64       `json:"quantity" validate:"omitempty,gt=0"`
	SelectedSize *SelectedSize `json:"selected_size,omitempty"`
}

type UpdateQuantityRequest struct {
	ProductID    uuid.UUID     `json:"product_id" validate:"required"`
	Quantity     float64       `json:"quantity"`
	SelectedSize *SelectedSize `json:"selected_size,omitempty"`
}

type RemoveItemRequest struct {
	ProductID    uuid.UUID     `json:"product_id" validate:"required"`
	SelectedSize *SelectedSize `json:"selected_size,omitempty"`
}

type ApplyDiscountRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}
