package errors

import (
	"errors"
	"net/http"
)

type AppError struct {
	Code       string
	Message    string
	Detail     string
	StatusCode int
	Err        error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail

	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err

	return e
}

const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeDatabaseError     = "DATABASE_ERROR"
	ErrCodeThirdPartyError   = "THIRD_PARTY_ERROR"
	ErrCodeResourceExhausted = "RESOURCE_EXHAUSTED"

	ErrCodeInvalidQuantity         = "INVALID_QUANTITY"
	ErrCodeUnknownDiscountCode     = "UNKNOWN_DISCOUNT_CODE"
	ErrCodeInactiveDiscountCode    = "INACTIVE_DISCOUNT_CODE"
	ErrCodeExpiredDiscountCode     = "EXPIRED_DISCOUNT_CODE"
	ErrCodeExhaustedDiscountCode   = "EXHAUSTED_DISCOUNT_CODE"
	ErrCodeDiscountExceedsSubtotal = "DISCOUNT_EXCEEDS_SUBTOTAL"
	ErrCodeShippingUnavailable     = "SHIPPING_UNAVAILABLE"
	ErrCodeTotalMismatch           = "TOTAL_MISMATCH"
	ErrCodeProductReserved         = "PRODUCT_RESERVED"
	ErrCodeInsufficientStock       = "INSUFFICIENT_STOCK"
)

// ErrCorruptedPersistedState marks a cart snapshot that could not be decoded
// or no longer matches the schema. It is logged and discarded, never rendered.
var ErrCorruptedPersistedState = errors.New("corrupted persisted cart state")

func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message, http.StatusBadRequest)
}

func BadRequestError(message string) *AppError {
	return NewAppError(ErrCodeBadRequest, message, http.StatusBadRequest)
}

func NotFoundError(message string) *AppError {
	return NewAppError(ErrCodeNotFound, message, http.StatusNotFound)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message, http.StatusInternalServerError)
}

func DatabaseError(message string) *AppError {
	return NewAppError(ErrCodeDatabaseError, message, http.StatusInternalServerError)
}

func ThirdPartyError(message string) *AppError {
	return NewAppError(ErrCodeThirdPartyError, message, http.StatusBadGateway)
}

func ResourceExhaustedError(message string) *AppError {
	return NewAppError(ErrCodeResourceExhausted, message, http.StatusTooManyRequests)
}

func InvalidQuantityError(message string) *AppError {
	return NewAppError(ErrCodeInvalidQuantity, message, http.StatusBadRequest)
}

func UnknownDiscountCodeError() *AppError {
	return NewAppError(ErrCodeUnknownDiscountCode, "Discount code not found", http.StatusNotFound)
}

func InactiveDiscountCodeError() *AppError {
	return NewAppError(ErrCodeInactiveDiscountCode, "Discount code is not active", http.StatusBadRequest)
}

func ExpiredDiscountCodeError() *AppError {
	return NewAppError(ErrCodeExpiredDiscountCode, "Discount code has expired", http.StatusBadRequest)
}

func ExhaustedDiscountCodeError() *AppError {
	return NewAppError(ErrCodeExhaustedDiscountCode, "Discount code has no uses left", http.StatusConflict)
}

func DiscountExceedsSubtotalError(message string) *AppError {
	return NewAppError(ErrCodeDiscountExceedsSubtotal, message, http.StatusBadRequest)
}

func ShippingUnavailableError(message string) *AppError {
	return NewAppError(ErrCodeShippingUnavailable, message, http.StatusUnprocessableEntity)
}

// TotalMismatchError never carries pricing details in its message; those go
// to the logs only.
func TotalMismatchError() *AppError {
	return NewAppError(ErrCodeTotalMismatch, "Could not complete order", http.StatusUnprocessableEntity)
}

func ProductReservedError(message string) *AppError {
	return NewAppError(ErrCodeProductReserved, message, http.StatusConflict)
}

func InsufficientStockError(message string) *AppError {
	return NewAppError(ErrCodeInsufficientStock, message, http.StatusConflict)
}

func IsAppError(err error) (*AppError, bool) {
	var appError *AppError

	if errors.As(err, &appError) {
		return appError, true
	}

	return nil, false
}
