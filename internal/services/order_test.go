package service_test

import (
	"errors"
	"testing"

	appErrors "github.com/aaravmahajanofficial/art-storefront/internal/errors"
	"github.com/aaravmahajanofficial/art-storefront/internal/models"
	repository "github.com/aaravmahajanofficial/art-storefront/internal/repositories"
	repoMocks "github.com/aaravmahajanofficial/art-storefront/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/art-storefront/internal/services"
	"github.com/aaravmahajanofficial/art-storefront/internal/services/mocks"
	"github.com/aaravmahajanofficial/art-storefront/pkg/stripe"
	stripeMocks "github.com/aaravmahajanofficial/art-storefront/pkg/stripe/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderTestDeps struct {
	service      service.OrderService
	products     *repoMocks.MockProductRepository
	orders       *repoMocks.MockOrderRepository
	reservations *repoMocks.MockReservationRepository
	discounts    *mocks.MockDiscountService
	shipping     *mocks.MockShippingService
	payments     *stripeMocks.MockClient
	notifier     *mocks.MockNotificationService
	carts        *mocks.MockCartClearer
}

func setupOrderServiceTest(t *testing.T) orderTestDeps {
	deps := orderTestDeps{
		products:     repoMocks.NewMockProductRepository(t),
		orders:       repoMocks.NewMockOrderRepository(t),
		reservations: repoMocks.NewMockReservationRepository(t),
		discounts:    mocks.NewMockDiscountService(t),
		shipping:     mocks.NewMockShippingService(t),
		payments:     stripeMocks.NewMockClient(t),
		notifier:     mocks.NewMockNotificationService(t),
		carts:        mocks.NewMockCartClearer(t),
	}

	deps.service = service.NewOrderService(deps.products, deps.orders, deps.reservations, deps.discounts, deps.shipping,
		deps.payments, deps.notifier, deps.carts, service.OrderOptions{Tolerance: 100, Currency: "nok"})

	return deps
}

func orderRequest(items []models.OrderItemRequest, totals models.SubmittedTotals) *models.CreateOrderRequest {
	return &models.CreateOrderRequest{
		Items:    items,
		Customer: models.Customer{Name: "Kari <b>Nordmann</b>", Email: " kari@example.no "},
		Address:  models.Address{Street: "Bryggen 1", PostalCode: "5003", City: "Bergen", Country: "no"},
		Totals:   totals,
	}
}

func TestCreateOrder(t *testing.T) {
	session := uuid.New()

	t.Run("Success - Mixed cart with discount and carrier shipping", func(t *testing.T) {
		// Arrange
		deps := setupOrderServiceTest(t)
		framed := printProduct(150000, ptr(5))
		framed.Sizes[1].Price = ptr[int64](300000)
		oil := originalProduct(400000)

		deps.products.On("GetProductsByIDs", mock.Anything, []uuid.UUID{framed.ID, oil.ID}).
			Return(map[uuid.UUID]*models.Product{framed.ID: framed, oil.ID: oil}, nil).Once()
		deps.reservations.On("Holder", mock.Anything, oil.ID).Return(session.String(), nil).Once()
		deps.discounts.On("ValidateCode", mock.Anything, "TEN", int64(700000)).
			Return(&models.DiscountValidation{Valid: true, Code: "TEN", CalculatedDiscount: 70000}, nil).Once()
		deps.shipping.On("FindOption", mock.Anything, "5003", "no", "SERVICEPAKKE").
			Return(&models.ShippingOption{ID: "SERVICEPAKKE", PriceWithVAT: 14900}, nil).Once()

		// 700000 - 70000 + 14900 + levy(300000 -> 15000, 400000 -> 20000)
		expectedTotal := int64(700000 - 70000 + 14900 + 35000)

		deps.payments.On("GetPaymentIntent", mock.Anything, "pi_123").
			Return(&stripe.PaymentIntent{ID: "pi_123", Amount: expectedTotal, Currency: "nok", Status: stripe.StatusSucceeded}, nil).Once()

		deps.orders.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Run(func(args mock.Arguments) {
			order := args.Get(1).(*models.Order)
			assert.Equal(t, session, order.SessionID)
			assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
			assert.Equal(t, models.OrderStatusConfirmed, order.Status)
			assert.Equal(t, "TEN", order.DiscountCode)
			assert.Equal(t, "SERVICEPAKKE", order.ShippingOptionID)
			assert.Equal(t, "Kari Nordmann", order.Customer.Name, "markup is stripped")
			assert.Equal(t, "kari@example.no", order.Customer.Email)
			assert.Equal(t, "NO", order.ShippingAddress.Country)
			require.Len(t, order.Items, 2)
			assert.Equal(t, int64(300000), order.Items[0].LineTotal)
			assert.Equal(t, int64(15000), order.Items[0].Levy)
			assert.Equal(t, "50x70", order.Items[0].SizeLabel)
			assert.Equal(t, int64(20000), order.Items[1].Levy)
		}).Once()
		deps.carts.On("ClearCart", mock.Anything, session.String()).Return(&models.Cart{}, nil).Once()
		deps.notifier.On("OrderPlaced", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()

		req := orderRequest([]models.OrderItemRequest{
			{ProductID: framed.ID, Quantity: 1, SelectedSize: &models.SelectedSize{Width: 50, Height: 70, Label: "50x70"}},
			{ProductID: oil.ID, Quantity: 1},
		}, models.SubmittedTotals{Subtotal: 700000, ShippingCost: 14900, ArtistLevy: 35000, Total: expectedTotal})
		req.DiscountCode = "ten"
		req.DiscountAmount = 70000
		req.Shipping = &models.ShippingSelection{OptionID: "SERVICEPAKKE", PriceWithVAT: 14900}
		req.PaymentIntentID = "pi_123"

		// Act
		order, err := deps.service.CreateOrder(t.Context(), session, req)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(700000), order.Subtotal)
		assert.Equal(t, int64(70000), order.DiscountAmount)
		assert.Equal(t, int64(14900), order.ShippingCost)
		assert.Equal(t, int64(35000), order.ArtistLevy)
		assert.Equal(t, expectedTotal, order.Total)
	})

	t.Run("Success - Rounding within tolerance and no payment intent", func(t *testing.T) {
		deps := setupOrderServiceTest(t)
		product := printProduct(10000, nil)

		deps.products.On("GetProductsByIDs", mock.Anything, []uuid.UUID{product.ID}).
			Return(map[uuid.UUID]*models.Product{product.ID: product}, nil).Once()
		deps.orders.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()
		deps.carts.On("ClearCart", mock.Anything, session.String()).Return(nil, errors.New("store closed")).Once()
		deps.notifier.On("OrderPlaced", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()

		req := orderRequest([]models.OrderItemRequest{{ProductID: product.ID, Quantity: 2}},
			models.SubmittedTotals{Subtotal: 20050, ShippingCost: 500, Total: 20550})

		order, err := deps.service.CreateOrder(t.Context(), session, req)

		require.NoError(t, err, "post-commit failures are only logged")
		assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.Equal(t, int64(20500), order.Total, "the server figure is stored, never the submitted one")
	})

	t.Run("Failure - Tampered total is rejected without touching the cart", func(t *testing.T) {
		// Arrange
		deps := setupOrderServiceTest(t)
		product := printProduct(10000, nil)

		deps.products.On("GetProductsByIDs", mock.Anything, []uuid.UUID{product.ID}).
			Return(map[uuid.UUID]*models.Product{product.ID: product}, nil).Once()

		req := orderRequest([]models.OrderItemRequest{{ProductID: product.ID, Quantity: 2}},
			models.SubmittedTotals{Subtotal: 2000, ShippingCost: 500, Total: 2500})

		// Act
		order, err := deps.service.CreateOrder(t.Context(), session, req)

		// Assert
		assert.Nil(t, order)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeTotalMismatch, appErr.Code)
		assert.Equal(t, "Could not complete order", appErr.Message)
		assert.NotContains(t, appErr.Message, "20500")

		deps.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
		deps.carts.AssertNotCalled(t, "ClearCart", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Discount amount the server does not grant", func(t *testing.T) {
		deps := setupOrderServiceTest(t)
		product := printProduct(10000, nil)

		deps.products.On("GetProductsByIDs", mock.Anything, []uuid.UUID{product.ID}).
			Return(map[uuid.UUID]*models.Product{product.ID: product}, nil).Once()

		req := orderRequest([]models.OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
			models.SubmittedTotals{Subtotal: 10000, ShippingCost: 500, Total: 500})
		req.DiscountAmount = 10000

		_, err := deps.service.CreateOrder(t.Context(), session, req)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeTotalMismatch, appErr.Code)
	})

	t.Run("Failure - Original held by another session", func(t *testing.T) {
		// Arrange
		deps := setupOrderServiceTest(t)
		oil := originalProduct(400000)

		deps.products.On("GetProductsByIDs", mock.Anything, []uuid.UUID{oil.ID}).
			Return(map[uuid.UUID]*models.Product{oil.ID: oil}, nil).Once()
		deps.reservations.On("Holder", mock.Anything, oil.ID).Return(uuid.NewString(), nil).Once()

		req := orderRequest([]models.OrderItemRequest{{ProductID: oil.ID, Quantity: 1}},
			models.SubmittedTotals{Subtotal: 400000, ArtistLevy: 20000, Total: 420000})

		// Act
		order, err := deps.service.CreateOrder(t.Context(), session, req)

		// Assert
		assert.Nil(t, order)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeProductReserved, appErr.Code)
		deps.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("Success - Free original and failed hold lookup do not block", func(t *testing.T) {
		deps := setupOrderServiceTest(t)
		free := originalProduct(100000)
		unknown := originalProduct(120000)

		deps.products.On("GetProductsByIDs", mock.Anything, []uuid.UUID{free.ID, unknown.ID}).
			Return(map[uuid.UUID]*models.Product{free.ID: free, unknown.ID: unknown}, nil).Once()
		deps.reservations.On("Holder", mock.Anything, free.ID).Return("", nil).Once()
		deps.reservations.On("Holder", mock.Anything, unknown.ID).Return("", errors.New("redis timeout")).Once()
		deps.orders.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()
		deps.carts.On("ClearCart", mock.Anything, session.String()).Return(&models.Cart{}, nil).Once()
		deps.notifier.On("OrderPlaced", mock.Anything, mock.Anything).Return(nil).Once()

		req := orderRequest([]models.OrderItemRequest{{ProductID: free.ID, Quantity: 1}, {ProductID: unknown.ID, Quantity: 1}},
			models.SubmittedTotals{Subtotal: 220000, ShippingCost: 2500, Total: 222500})

		order, err := deps.service.CreateOrder(t.Context(), session, req)

		require.NoError(t, err)
		assert.Equal(t, int64(222500), order.Total)
	})

	t.Run("Failure - Discount amount above subtotal", func(t *testing.T) {
		deps := setupOrderServiceTest(t)
		product := printProduct(10000, nil)

		deps.products.On("GetProductsByIDs", mock.Anything, []uuid.UUID{product.ID}).
			Return(map[uuid.UUID]*models.Product{product.ID: product}, nil).Once()

		req := orderRequest([]models.OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
			models.SubmittedTotals{Subtotal: 10000, ShippingCost: 500, Total: 500})
		req.DiscountAmount = 20000

		_, err := deps.service.CreateOrder(t.Context(), session, req)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeDiscountExceedsSubtotal, appErr.Code)
		deps.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Charged amount differs", func(t *testing.T) {
		deps := setupOrderServiceTest(t)
		product := printProduct(10000, nil)

		deps.products.On("GetProductsByIDs", mock.Anything, []uuid.UUID{product.ID}).
			Return(map[uuid.UUID]*models.Product{product.ID: product}, nil).Once()
		deps.payments.On("GetPaymentIntent", mock.Anything, "pi_low").
			Return(&stripe.PaymentIntent{ID: "pi_low", Amount: 100, Currency: "nok", Status: stripe.StatusSucceeded}, nil).Once()

		req := orderRequest([]models.OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
			models.SubmittedTotals{Subtotal: 10000, ShippingCost: 500, Total: 10500})
		req.PaymentIntentID = "pi_low"

		_, err := deps.service.CreateOrder(t.Context(), session, req)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeTotalMismatch, appErr.Code)
	})

	t.Run("Failure - Rejected discount code", func(t *testing.T) {
		deps := setupOrderServiceTest(t)
		product := printProduct(10000, nil)

		deps.products.On("GetProductsByIDs", mock.Anything, []uuid.UUID{product.ID}).
			Return(map[uuid.UUID]*models.Product{product.ID: product}, nil).Once()
		deps.discounts.On("ValidateCode", mock.Anything, "GONE", int64(10000)).
			Return(&models.DiscountValidation{Valid: false, Error: models.DiscountExhausted}, nil).Once()

		req := orderRequest([]models.OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
			models.SubmittedTotals{Subtotal: 10000, ShippingCost: 500, Total: 10500})
		req.DiscountCode = "gone"

		_, err := deps.service.CreateOrder(t.Context(), session, req)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeExhaustedDiscountCode, appErr.Code)
	})

	t.Run("Failure - Shipping option no longer offered", func(t *testing.T) {
		deps := setupOrderServiceTest(t)
		product := printProduct(10000, nil)

		deps.products.On("GetProductsByIDs", mock.Anything, []uuid.UUID{product.ID}).
			Return(map[uuid.UUID]*models.Product{product.ID: product}, nil).Once()
		deps.shipping.On("FindOption", mock.Anything, "5003", "no", "GONE").
			Return(nil, appErrors.ShippingUnavailableError("Selected shipping option is not available for this address")).Once()

		req := orderRequest([]models.OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
			models.SubmittedTotals{Subtotal: 10000, ShippingCost: 9900, Total: 19900})
		req.Shipping = &models.ShippingSelection{OptionID: "GONE", PriceWithVAT: 9900}

		_, err := deps.service.CreateOrder(t.Context(), session, req)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeShippingUnavailable, appErr.Code)
	})

	catalogFailures := []struct {
		name     string
		products func(p *models.Product) map[uuid.UUID]*models.Product
		quantity int
		code     string
	}{
		{
			name:     "Unknown product",
			products: func(*models.Product) map[uuid.UUID]*models.Product { return map[uuid.UUID]*models.Product{} },
			quantity: 1,
			code:     appErrors.ErrCodeNotFound,
		},
		{
			name: "Unavailable product",
			products: func(p *models.Product) map[uuid.UUID]*models.Product {
				p.IsAvailable = false
				return map[uuid.UUID]*models.Product{p.ID: p}
			},
			quantity: 1,
			code:     appErrors.ErrCodeBadRequest,
		},
		{
			name: "More than limited stock",
			products: func(p *models.Product) map[uuid.UUID]*models.Product {
				p.StockQuantity = ptr(2)
				return map[uuid.UUID]*models.Product{p.ID: p}
			},
			quantity: 3,
			code:     appErrors.ErrCodeInsufficientStock,
		},
	}

	for _, tc := range catalogFailures {
		t.Run("Failure - "+tc.name, func(t *testing.T) {
			deps := setupOrderServiceTest(t)
			product := printProduct(10000, nil)

			deps.products.On("GetProductsByIDs", mock.Anything, []uuid.UUID{product.ID}).Return(tc.products(product), nil).Once()

			req := orderRequest([]models.OrderItemRequest{{ProductID: product.ID, Quantity: tc.quantity}},
				models.SubmittedTotals{Subtotal: 10000, ShippingCost: 500, Total: 10500})

			_, err := deps.service.CreateOrder(t.Context(), session, req)

			appErr, ok := appErrors.IsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tc.code, appErr.Code)
		})
	}

	repoFailures := []struct {
		name    string
		repoErr error
		code    string
	}{
		{"Lost the last unit", &repository.StockError{ProductID: uuid.New()}, appErrors.ErrCodeInsufficientStock},
		{"Lost the last code use", repository.ErrDiscountUnavailable, appErrors.ErrCodeExhaustedDiscountCode},
		{"Database error", errors.New("deadlock detected"), appErrors.ErrCodeDatabaseError},
	}

	for _, tc := range repoFailures {
		t.Run("Failure - "+tc.name, func(t *testing.T) {
			deps := setupOrderServiceTest(t)
			product := printProduct(10000, nil)

			deps.products.On("GetProductsByIDs", mock.Anything, []uuid.UUID{product.ID}).
				Return(map[uuid.UUID]*models.Product{product.ID: product}, nil).Once()
			deps.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(tc.repoErr).Once()

			req := orderRequest([]models.OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
				models.SubmittedTotals{Subtotal: 10000, ShippingCost: 500, Total: 10500})

			order, err := deps.service.CreateOrder(t.Context(), session, req)

			assert.Nil(t, order)
			appErr, ok := appErrors.IsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tc.code, appErr.Code)
			assert.ErrorIs(t, err, tc.repoErr)
			deps.carts.AssertNotCalled(t, "ClearCart", mock.Anything, mock.Anything)
		})
	}
}

func TestGetOrder(t *testing.T) {
	session := uuid.New()
	orderID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		deps := setupOrderServiceTest(t)
		deps.orders.On("GetOrderByID", mock.Anything, orderID).Return(&models.Order{ID: orderID, SessionID: session}, nil).Once()

		order, err := deps.service.GetOrder(t.Context(), session, orderID)

		require.NoError(t, err)
		assert.Equal(t, orderID, order.ID)
	})

	t.Run("Failure - Another session's order", func(t *testing.T) {
		deps := setupOrderServiceTest(t)
		deps.orders.On("GetOrderByID", mock.Anything, orderID).Return(&models.Order{ID: orderID, SessionID: uuid.New()}, nil).Once()

		order, err := deps.service.GetOrder(t.Context(), session, orderID)

		assert.Nil(t, order)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}
