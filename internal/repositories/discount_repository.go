package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aaravmahajanofficial/art-storefront/internal/models"
	"github.com/aaravmahajanofficial/art-storefront/internal/utils"
)

type DiscountRepository interface {
	GetDiscountByCode(ctx context.Context, code string) (*models.DiscountInfo, error)
}

type discountRepository struct {
	DB *sql.DB
}

func NewDiscountRepo(db *sql.DB) DiscountRepository {
	return &discountRepository{DB: db}
}

// GetDiscountByCode matches case-insensitively; codes are stored upper-case.
func (r *discountRepository) GetDiscountByCode(ctx context.Context, code string) (*models.DiscountInfo, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, code, discount_type, discount_value, uses_remaining, expires_at, free_shipping, is_active, created_at, updated_at
		FROM discount_codes
		WHERE code = $1
	`

	var (
		discount      models.DiscountInfo
		usesRemaining sql.NullInt32
		expiresAt     sql.NullTime
	)

	err := r.DB.QueryRowContext(dbCtx, query, strings.ToUpper(strings.TrimSpace(code))).Scan(
		&discount.ID, &discount.Code, &discount.DiscountType, &discount.DiscountValue, &usesRemaining,
		&expiresAt, &discount.FreeShipping, &discount.IsActive, &discount.CreatedAt, &discount.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get discount code: %w", err)
	}

	if usesRemaining.Valid {
		uses := int(usesRemaining.Int32)
		discount.UsesRemaining = &uses
	}

	if expiresAt.Valid {
		at := expiresAt.Time
		discount.ExpiresAt = &at
	}

	return &discount, nil
}
