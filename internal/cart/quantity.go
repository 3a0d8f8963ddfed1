package cart

import (
	"math"

	"github.com/aaravmahajanofficial/art-storefront/internal/errors"
)

// ParseQuantity turns a decoded JSON number into a line quantity. Fractions
// are rejected; zero and negatives pass through so the reducer can treat them
// as removal.
func ParseQuantity(raw float64) (int, error) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw != math.Trunc(raw) {
		return 0, errors.InvalidQuantityError("Quantity must be a whole number")
	}

	if raw > math.MaxInt32 || raw < math.MinInt32 {
		return 0, errors.InvalidQuantityError("Quantity is out of range")
	}

	return int(raw), nil
}
