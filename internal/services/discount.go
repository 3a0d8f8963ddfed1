package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	appErrors "github.com/aaravmahajanofficial/art-storefront/internal/errors"
	"github.com/aaravmahajanofficial/art-storefront/internal/metrics"
	"github.com/aaravmahajanofficial/art-storefront/internal/models"
	"github.com/aaravmahajanofficial/art-storefront/internal/pricing"
	repository "github.com/aaravmahajanofficial/art-storefront/internal/repositories"
)

type DiscountService interface {
	ValidateCode(ctx context.Context, code string, subtotal int64) (*models.DiscountValidation, error)
}

type discountService struct {
	repo repository.DiscountRepository
	now  func() time.Time
}

func NewDiscountService(repo repository.DiscountRepository) DiscountService {
	return NewDiscountServiceWithClock(repo, time.Now)
}

func NewDiscountServiceWithClock(repo repository.DiscountRepository, now func() time.Time) DiscountService {
	return &discountService{repo: repo, now: now}
}

// NormalizeCode is the form codes are stored and compared in.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateCode checks a code against a subtotal without redeeming it. A
// rejected code is a result, not an error; the error is reserved for lookups
// that could not be made.
func (s *discountService) ValidateCode(ctx context.Context, code string, subtotal int64) (*models.DiscountValidation, error) {

	code = NormalizeCode(code)
	if code == "" {
		return reject(models.DiscountNotFound), nil
	}

	discount, err := s.repo.GetDiscountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return reject(models.DiscountNotFound), nil
		}

		slog.ErrorContext(ctx, "Discount lookup failed", slog.String("code", code), slog.Any("error", err))
		return nil, appErrors.DatabaseError("Failed to validate discount code").WithError(err)
	}

	switch {
	case !discount.IsActive:
		return reject(models.DiscountInactive), nil
	case discount.ExpiresAt != nil && !discount.ExpiresAt.After(s.now()):
		return reject(models.DiscountExpired), nil
	case discount.UsesRemaining != nil && *discount.UsesRemaining <= 0:
		return reject(models.DiscountExhausted), nil
	}

	metrics.DiscountValidated("valid")

	return &models.DiscountValidation{
		Valid:              true,
		Code:               discount.Code,
		CalculatedDiscount: pricing.DiscountEffect(*discount, max(subtotal, 0)),
		FreeShipping:       discount.FreeShipping,
	}, nil
}

func reject(reason models.DiscountRejection) *models.DiscountValidation {
	metrics.DiscountValidated(string(reason))

	return &models.DiscountValidation{Valid: false, Error: reason}
}

// RejectionError maps a rejected validation onto the error callers return.
func RejectionError(reason models.DiscountRejection) *appErrors.AppError {
	switch reason {
	case models.DiscountInactive:
		return appErrors.InactiveDiscountCodeError()
	case models.DiscountExpired:
		return appErrors.ExpiredDiscountCodeError()
	case models.DiscountExhausted:
		return appErrors.ExhaustedDiscountCodeError()
	default:
		return appErrors.UnknownDiscountCodeError()
	}
}
