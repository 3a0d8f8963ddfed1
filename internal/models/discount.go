package models

import (
	"time"

	"github.com/google/uuid"
)

type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "percentage"
	DiscountTypeFixedAmount DiscountType = "fixed_amount"
)

// DiscountInfo is the server-side discount record. Value is an integer
// percent for percentage codes and øre for fixed amounts.
type DiscountInfo struct {
	ID            uuid.UUID    `json:"id"`
	Code          string       `json:"code"`
	DiscountType  DiscountType `json:"discount_type"`
	DiscountValue int64        `json:"discount_value"`
	UsesRemaining *int         `json:"uses_remaining"`
	ExpiresAt     *time.Time   `json:"expires_at"`
	FreeShipping  bool         `json:"free_shipping"`
	IsActive      bool         `json:"is_active"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

type DiscountRejection string

const (
	DiscountNotFound  DiscountRejection = "not_found"
	DiscountInactive  DiscountRejection = "inactive"
	DiscountExpired   DiscountRejection = "expired"
	DiscountExhausted DiscountRejection = "exhausted"
)

type ValidateDiscountRequest struct {
	Code     string `json:"code" validate:"required,max=64"`
	Subtotal int64  `json:"subtotal" validate:"gte=0"`
}

// DiscountValidation is the outcome of checking a code against a subtotal.
// When Valid is false only Error is meaningful.
type DiscountValidation struct {
	Valid              bool              `json:"valid"`
	Code               string            `json:"code,omitempty"`
	CalculatedDiscount int64             `json:"calculated_discount"`
	FreeShipping       bool              `json:"free_shipping"`
	Error              DiscountRejection `json:"error,omitempty"`
}

type DiscountRejectionResponse struct {
	Valid bool              `json:"valid"`
	Error DiscountRejection `json:"error"`
}
