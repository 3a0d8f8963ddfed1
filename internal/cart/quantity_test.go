package cart_test

import (
	"math"
	"testing"

	"github.com/aaravmahajanofficial/art-storefront/internal/cart"
	appErrors "github.com/aaravmahajanofficial/art-storefront/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name    string
		raw     float64
		want    int
		wantErr bool
	}{
		{"whole number", 3, 3, false},
		{"zero means removal", 0, 0, false},
		{"negative passes through", -2, -2, false},
		{"fraction", 1.5, 0, true},
		{"tiny fraction", 2.0000001, 0, true},
		{"not a number", math.NaN(), 0, true},
		{"infinite", math.Inf(1), 0, true},
		{"too large", 1e12, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cart.ParseQuantity(tt.raw)

			if tt.wantErr {
				require.Error(t, err)

				appErr, ok := appErrors.IsAppError(err)
				require.True(t, ok)
				assert.Equal(t, appErrors.ErrCodeInvalidQuantity, appErr.Code)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
