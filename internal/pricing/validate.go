package pricing

import (
	"errors"
	"fmt"
)

var (
	ErrNegativeDiscount        = errors.New("discount amount is negative")
	ErrDiscountExceedsSubtotal = errors.New("discount amount exceeds subtotal")
	ErrDiscountExceedsCap      = errors.New("discount amount exceeds the allowed share of subtotal")
)

const (
	FieldSubtotal     = "subtotal"
	FieldShippingCost = "shipping_cost"
	FieldArtistLevy   = "artist_levy"
	FieldTotal        = "total"
)

type Mismatch struct {
	Field      string `json:"field"`
	Submitted  int64  `json:"submitted"`
	Calculated int64  `json:"calculated"`
	Difference int64  `json:"difference"`
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: submitted %d, calculated %d", m.Field, m.Submitted, m.Calculated)
}

type TotalsCheck struct {
	Valid      bool       `json:"valid"`
	Mismatches []Mismatch `json:"mismatches,omitempty"`
}

// ValidateTotals reports every component that differs by more than
// tolerance. It only ever rejects; callers must not use calculated to patch
// the submitted figures.
func ValidateTotals(submitted, calculated Totals, tolerance int64) TotalsCheck {
	tolerance = max(tolerance, 0)

	pairs := []struct {
		field                 string
		submitted, calculated int64
	}{
		{FieldSubtotal, submitted.Subtotal, calculated.Subtotal},
		{FieldShippingCost, submitted.ShippingCost, calculated.ShippingCost},
		{FieldArtistLevy, submitted.ArtistLevy, calculated.ArtistLevy},
		{FieldTotal, submitted.Total, calculated.Total},
	}

	check := TotalsCheck{Valid: true}

	for _, p := range pairs {
		diff := p.submitted - p.calculated
		if diff < 0 {
			diff = -diff
		}

		if diff > tolerance {
			check.Valid = false
			check.Mismatches = append(check.Mismatches, Mismatch{
				Field:      p.field,
				Submitted:  p.submitted,
				Calculated: p.calculated,
				Difference: diff,
			})
		}
	}

	return check
}

func ValidateDiscountAmount(amount, subtotal, maxPercent int64) error {
	if amount < 0 {
		return ErrNegativeDiscount
	}

	if amount > subtotal {
		return ErrDiscountExceedsSubtotal
	}

	if amount*100 > subtotal*maxPercent {
		return ErrDiscountExceedsCap
	}

	return nil
}
