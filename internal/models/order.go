package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

type PaymentStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"

	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type Address struct {
	Street     string `json:"street" validate:"required,max=200"`
	PostalCode string `json:"postal_code" validate:"required,numeric,len=4"`
	City       string `json:"city" validate:"required,max=100"`
	Country    string `json:"country" validate:"required,iso3166_1_alpha2"`
}

type Customer struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

type OrderItem struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
	SizeLabel string    `json:"size_label,omitempty"`
	Quantity  int       `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
	LineTotal int64     `json:"line_total"`
	Levy      int64     `json:"levy"`
	CreatedAt time.Time `json:"created_at"`
}

type Order struct {
	ID               uuid.UUID     `json:"id"`
	SessionID        uuid.UUID     `json:"session_id"`
	Status           OrderStatus   `json:"status"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	PaymentIntentID  string        `json:"payment_intent_id,omitempty"`
	Customer         Customer      `json:"customer"`
	ShippingAddress  Address       `json:"shipping_address"`
	Items            []OrderItem   `json:"items"`
	Subtotal         int64         `json:"subtotal"`
	ShippingCost     int64         `json:"shipping_cost"`
	ArtistLevy       int64         `json:"artist_levy"`
	DiscountCode     string        `json:"discount_code,omitempty"`
	DiscountAmount   int64         `json:"discount_amount"`
	Total            int64         `json:"total"`
	ShippingOptionID string        `json:"shipping_option_id,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

type OrderItemRequest struct {
	ProductID    uuid.UUID     `json:"product_id" validate:"required"`
	Quantity     int           `json:"quantity" validate:"required,min=1"`
	SelectedSize *SelectedSize `json:"selected_size,omitempty"`
}

// SubmittedTotals are the figures the client showed the customer. They are
// advisory and only ever compared against a server-side recomputation.
type SubmittedTotals struct {
	Subtotal     int64 `json:"subtotal" validate:"gte=0"`
	ShippingCost int64 `json:"shipping_cost" validate:"gte=0"`
	ArtistLevy   int64 `json:"artist_levy" validate:"gte=0"`
	Total        int64 `json:"total" validate:"gte=0"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	DiscountCode    string             `json:"discount_code,omitempty" validate:"omitempty,max=64"`
	DiscountAmount  int64              `json:"discount_amount" validate:"gte=0"`
	Shipping        *ShippingSelection `json:"shipping,omitempty"`
	Customer        Customer           `json:"customer" validate:"required"`
	Address         Address            `json:"address" validate:"required"`
	Totals          SubmittedTotals    `json:"totals" validate:"required"`
	PaymentIntentID string             `json:"payment_intent_id,omitempty" validate:"omitempty,max=255"`
}

// OrderPlacedEvent is published after an order has been committed.
type OrderPlacedEvent struct {
	OrderID       uuid.UUID     `json:"order_id"`
	CustomerEmail string        `json:"customer_email"`
	Total         int64         `json:"total"`
	DiscountCode  string        `json:"discount_code,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	PlacedAt      time.Time     `json:"placed_at"`
}

type EmailMessage struct {
	To          string `json:"to"`
	Subject     string `json:"subject"`
	Content     string `json:"content"`
	HTMLContent string `json:"html_content,omitempty"`
}
