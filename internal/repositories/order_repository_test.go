package repository_test

import (
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aaravmahajanofficial/art-storefront/internal/models"
	repository "github.com/aaravmahajanofficial/art-storefront/internal/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	insertOrderSQL    = regexp.QuoteMeta(`INSERT INTO orders`)
	insertItemSQL     = regexp.QuoteMeta(`INSERT INTO order_items`)
	updateStockSQL    = regexp.QuoteMeta(`UPDATE products`)
	redeemDiscountSQL = regexp.QuoteMeta(`UPDATE discount_codes`)
)

func setupOrderRepoTest(t *testing.T) (repository.OrderRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	repo := repository.NewOrderRepo(db)
	require.NotNil(t, repo)

	return repo, mock
}

func testOrder(discountCode string) *models.Order {
	orderID := uuid.New()

	return &models.Order{
		ID:            orderID,
		SessionID:     uuid.New(),
		Status:        models.OrderStatusConfirmed,
		PaymentStatus: models.PaymentStatusPaid,
		Customer:      models.Customer{Name: "Kari Nordmann", Email: "kari@example.no"},
		ShippingAddress: models.Address{
			Street: "Storgata 1", PostalCode: "0155", City: "Oslo", Country: "NO",
		},
		Items: []models.OrderItem{
			{ID: uuid.New(), ProductID: uuid.New(), Title: "Havet", Quantity: 1, UnitPrice: 300000, LineTotal: 300000, Levy: 15000},
			{ID: uuid.New(), ProductID: uuid.New(), Title: "Fjell", SizeLabel: "30x40", Quantity: 2, UnitPrice: 20000, LineTotal: 40000},
		},
		Subtotal:        340000,
		ShippingCost:    2500,
		ArtistLevy:      15000,
		DiscountCode:    discountCode,
		DiscountAmount:  0,
		Total:           357500,
		PaymentIntentID: "pi_123",
	}
}

func expectOrderInsert(mock sqlmock.Sqlmock, order *models.Order, now time.Time) {
	mock.ExpectQuery(insertOrderSQL).
		WithArgs(order.ID, order.SessionID, order.Status, order.PaymentStatus, "pi_123", sqlmock.AnyArg(), sqlmock.AnyArg(),
			order.Subtotal, order.ShippingCost, order.ArtistLevy, sqlmock.AnyArg(), order.DiscountAmount, order.Total, nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
}

func expectItem(mock sqlmock.Sqlmock, order *models.Order, item models.OrderItem, now time.Time, stockRows int64) {
	mock.ExpectQuery(insertItemSQL).
		WithArgs(item.ID, order.ID, item.ProductID, item.Title, sqlmock.AnyArg(), item.Quantity, item.UnitPrice, item.LineTotal, item.Levy).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectExec(updateStockSQL).
		WithArgs(item.Quantity, item.ProductID).
		WillReturnResult(sqlmock.NewResult(0, stockRows))
}

func TestCreateOrder(t *testing.T) {
	ctx := t.Context()
	now := time.Now()

	t.Run("Success - with discount redemption", func(t *testing.T) {
		// Arrange
		repo, mock := setupOrderRepoTest(t)
		order := testOrder("VINTER")

		mock.ExpectBegin()
		expectOrderInsert(mock, order, now)
		expectItem(mock, order, order.Items[0], now, 1)
		expectItem(mock, order, order.Items[1], now, 1)
		mock.ExpectExec(redeemDiscountSQL).WithArgs("VINTER").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		// Act
		err := repo.CreateOrder(ctx, order)

		// Assert
		require.NoError(t, err)
		assert.WithinDuration(t, now, order.CreatedAt, time.Second)
		assert.Equal(t, order.ID, order.Items[1].OrderID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success - no discount means no redemption", func(t *testing.T) {
		repo, mock := setupOrderRepoTest(t)
		order := testOrder("")
		order.Items = order.Items[:1]

		mock.ExpectBegin()
		expectOrderInsert(mock, order, now)
		expectItem(mock, order, order.Items[0], now, 1)
		mock.ExpectCommit()

		require.NoError(t, repo.CreateOrder(ctx, order))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Lost stock race rolls back", func(t *testing.T) {
		// Arrange
		repo, mock := setupOrderRepoTest(t)
		order := testOrder("VINTER")

		mock.ExpectBegin()
		expectOrderInsert(mock, order, now)
		expectItem(mock, order, order.Items[0], now, 0)
		mock.ExpectRollback()

		// Act
		err := repo.CreateOrder(ctx, order)

		// Assert
		require.ErrorIs(t, err, repository.ErrInsufficientStock)

		var stockErr *repository.StockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, order.Items[0].ProductID, stockErr.ProductID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Exhausted discount rolls back", func(t *testing.T) {
		repo, mock := setupOrderRepoTest(t)
		order := testOrder("VINTER")

		mock.ExpectBegin()
		expectOrderInsert(mock, order, now)
		expectItem(mock, order, order.Items[0], now, 1)
		expectItem(mock, order, order.Items[1], now, 1)
		mock.ExpectExec(redeemDiscountSQL).WithArgs("VINTER").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.CreateOrder(ctx, order)

		require.ErrorIs(t, err, repository.ErrDiscountUnavailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Insert failure rolls back", func(t *testing.T) {
		repo, mock := setupOrderRepoTest(t)
		order := testOrder("")
		dbErr := errors.New("duplicate key")

		mock.ExpectBegin()
		mock.ExpectQuery(insertOrderSQL).WillReturnError(dbErr)
		mock.ExpectRollback()

		err := repo.CreateOrder(ctx, order)

		require.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to insert order")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Begin failure", func(t *testing.T) {
		repo, mock := setupOrderRepoTest(t)
		dbErr := errors.New("pool exhausted")

		mock.ExpectBegin().WillReturnError(dbErr)

		err := repo.CreateOrder(ctx, testOrder(""))

		require.ErrorIs(t, err, dbErr)
	})
}

func TestGetOrderByID(t *testing.T) {
	ctx := t.Context()
	now := time.Now()
	orderColumns := []string{"session_id", "status", "payment_status", "payment_intent_id", "customer", "shipping_address",
		"subtotal", "shipping_cost", "artist_levy", "discount_code", "discount_amount", "total", "shipping_option_id", "created_at", "updated_at"}
	itemColumns := []string{"id", "product_id", "title", "size_label", "quantity", "unit_price", "line_total", "levy", "created_at"}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		repo, mock := setupOrderRepoTest(t)
		order := testOrder("VINTER")
		customer, _ := json.Marshal(order.Customer)
		address, _ := json.Marshal(order.ShippingAddress)
		item := order.Items[1]

		mock.ExpectQuery(regexp.QuoteMeta(`FROM orders`)).
			WithArgs(order.ID).
			WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(
				order.SessionID.String(), "confirmed", "paid", "pi_123", customer, address,
				order.Subtotal, order.ShippingCost, order.ArtistLevy, "VINTER", int64(0), order.Total, nil, now, now,
			))
		mock.ExpectQuery(regexp.QuoteMeta(`FROM order_items`)).
			WithArgs(order.ID).
			WillReturnRows(sqlmock.NewRows(itemColumns).AddRow(
				item.ID.String(), item.ProductID.String(), item.Title, item.SizeLabel, item.Quantity, item.UnitPrice, item.LineTotal, item.Levy, now,
			))

		// Act
		got, err := repo.GetOrderByID(ctx, order.ID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, order.SessionID, got.SessionID)
		assert.Equal(t, models.PaymentStatusPaid, got.PaymentStatus)
		assert.Equal(t, order.Customer, got.Customer)
		assert.Equal(t, order.ShippingAddress, got.ShippingAddress)
		assert.Equal(t, "VINTER", got.DiscountCode)
		assert.Empty(t, got.ShippingOptionID)
		require.Len(t, got.Items, 1)
		assert.Equal(t, "30x40", got.Items[0].SizeLabel)
		assert.Equal(t, order.ID, got.Items[0].OrderID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		repo, mock := setupOrderRepoTest(t)
		id := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta(`FROM orders`)).WithArgs(id).WillReturnRows(sqlmock.NewRows(orderColumns))

		got, err := repo.GetOrderByID(ctx, id)

		require.Error(t, err)
		assert.Nil(t, got)
		assert.Contains(t, err.Error(), "failed to get the order")
	})
}
