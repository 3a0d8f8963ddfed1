package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aaravmahajanofficial/art-storefront/internal/api/handlers"
	appErrors "github.com/aaravmahajanofficial/art-storefront/internal/errors"
	"github.com/aaravmahajanofficial/art-storefront/internal/models"
	"github.com/aaravmahajanofficial/art-storefront/internal/services/mocks"
	"github.com/aaravmahajanofficial/art-storefront/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestValidateDiscount(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		setupMock      func(m *mocks.MockDiscountService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Success - Valid Code",
			body: models.ValidateDiscountRequest{Code: "summer10", Subtotal: 100000},
			setupMock: func(m *mocks.MockDiscountService) {
				m.On("ValidateCode", mock.Anything, "summer10", int64(100000)).Return(&models.DiscountValidation{
					Valid:              true,
					Code:               "SUMMER10",
					CalculatedDiscount: 10000,
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"valid": true, "code": "SUMMER10", "calculated_discount": 10000, "free_shipping": false}`,
		},
		{
			name: "Rejected - Unknown Code",
			body: models.ValidateDiscountRequest{Code: "NOPE", Subtotal: 100000},
			setupMock: func(m *mocks.MockDiscountService) {
				m.On("ValidateCode", mock.Anything, "NOPE", int64(100000)).
					Return(&models.DiscountValidation{Valid: false, Error: models.DiscountNotFound}, nil).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"valid": false, "error": "not_found"}`,
		},
		{
			name: "Rejected - Expired Code",
			body: models.ValidateDiscountRequest{Code: "OLD", Subtotal: 5000},
			setupMock: func(m *mocks.MockDiscountService) {
				m.On("ValidateCode", mock.Anything, "OLD", int64(5000)).
					Return(&models.DiscountValidation{Valid: false, Error: models.DiscountExpired}, nil).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"valid": false, "error": "expired"}`,
		},
		{
			name: "Rejected - Exhausted Code",
			body: models.ValidateDiscountRequest{Code: "USED", Subtotal: 5000},
			setupMock: func(m *mocks.MockDiscountService) {
				m.On("ValidateCode", mock.Anything, "USED", int64(5000)).
					Return(&models.DiscountValidation{Valid: false, Error: models.DiscountExhausted}, nil).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"valid": false, "error": "exhausted"}`,
		},
		{
			name:           "Failure - Missing Code",
			body:           map[string]any{"subtotal": 5000},
			setupMock:      func(m *mocks.MockDiscountService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"success": false, "error": {"code": "VALIDATION_ERROR", "message": "Validation failed", "details": ["Field Code is required"]}}`,
		},
		{
			name: "Failure - Database Error",
			body: models.ValidateDiscountRequest{Code: "SUMMER10", Subtotal: 5000},
			setupMock: func(m *mocks.MockDiscountService) {
				m.On("ValidateCode", mock.Anything, "SUMMER10", int64(5000)).
					Return(nil, appErrors.DatabaseError("Failed to look up discount code").WithError(errors.New("connection reset"))).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"success": false, "error": {"code": "DATABASE_ERROR", "message": "Failed to look up discount code"}}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockDiscountService := mocks.NewMockDiscountService(t)
			tc.setupMock(mockDiscountService)
			discountHandler := handlers.NewDiscountHandler(mockDiscountService)

			req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/discounts/validate", jsonBody(t, tc.body), nil)
			recorder := httptest.NewRecorder()

			// Act
			discountHandler.ValidateDiscount()(recorder, req)

			// Assert
			assert.Equal(t, tc.expectedStatus, recorder.Code)
			assert.JSONEq(t, tc.expectedBody, recorder.Body.String())
		})
	}
}
