package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/art-storefront/internal/models"
	"github.com/aaravmahajanofficial/art-storefront/internal/utils"
	"github.com/google/uuid"
)

var (
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrDiscountUnavailable = errors.New("discount code is no longer redeemable")
)

// StockError names the product whose conditional decrement matched no row.
type StockError struct {
	ProductID uuid.UUID
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

// CreateOrder writes the order and its lines, takes stock and redeems the
// discount code in one transaction. Stock and code use are conditional
// updates, so two orders racing for the last unit cannot both commit.
func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) (err error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	customer, err := json.Marshal(order.Customer)
	if err != nil {
		return fmt.Errorf("failed to marshal customer: %w", err)
	}

	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO orders (id, session_id, status, payment_status, payment_intent_id, customer, shipping_address,
			subtotal, shipping_cost, artist_levy, discount_code, discount_amount, total, shipping_option_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`

	err = tx.QueryRowContext(dbCtx, query, order.ID, order.SessionID, order.Status, order.PaymentStatus,
		nullString(order.PaymentIntentID), customer, address, order.Subtotal, order.ShippingCost, order.ArtistLevy,
		nullString(order.DiscountCode), order.DiscountAmount, order.Total, nullString(order.ShippingOptionID)).
		Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {

		item := &order.Items[i]
		item.OrderID = order.ID

		query := `
			INSERT INTO order_items (id, order_id, product_id, title, size_label, quantity, unit_price, line_total, levy)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at
		`

		err = tx.QueryRowContext(dbCtx, query, item.ID, order.ID, item.ProductID, item.Title, nullString(item.SizeLabel),
			item.Quantity, item.UnitPrice, item.LineTotal, item.Levy).Scan(&item.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert an order item: %w", err)
		}

		if err = takeStock(dbCtx, tx, item.ProductID, item.Quantity); err != nil {
			return err
		}

	}

	if order.DiscountCode != "" {
		if err = redeemDiscount(dbCtx, tx, order.DiscountCode); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

// takeStock decrements a limited print or retires an original. Unlimited
// prints only need to still be available.
func takeStock(ctx context.Context, tx *sql.Tx, productID uuid.UUID, quantity int) error {
	query := `
		UPDATE products
		SET stock_quantity = CASE WHEN stock_quantity IS NULL THEN NULL ELSE stock_quantity - $1 END,
			is_available = CASE WHEN product_type = 'original' THEN FALSE ELSE is_available END,
			updated_at = NOW()
		WHERE id = $2 AND is_available AND (stock_quantity IS NULL OR stock_quantity >= $1)
	`

	result, err := tx.ExecContext(ctx, query, quantity, productID)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}

	if updatedRows == 0 {
		return &StockError{ProductID: productID}
	}

	return nil
}

// redeemDiscount is a compare-and-decrement: it only matches while the code
// is still active, unexpired and has uses left.
func redeemDiscount(ctx context.Context, tx *sql.Tx, code string) error {
	query := `
		UPDATE discount_codes
		SET uses_remaining = uses_remaining - 1, updated_at = NOW()
		WHERE code = $1 AND is_active
			AND (uses_remaining IS NULL OR uses_remaining > 0)
			AND (expires_at IS NULL OR expires_at > NOW())
	`

	result, err := tx.ExecContext(ctx, query, code)
	if err != nil {
		return fmt.Errorf("failed to redeem discount code: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to redeem discount code: %w", err)
	}

	if updatedRows == 0 {
		return ErrDiscountUnavailable
	}

	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	order := &models.Order{
		ID: id,
	}

	query := `
		SELECT session_id, status, payment_status, payment_intent_id, customer, shipping_address, subtotal, shipping_cost,
			artist_levy, discount_code, discount_amount, total, shipping_option_id, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var (
		customer, address                               []byte
		paymentIntentID, discountCode, shippingOptionID sql.NullString
	)

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&order.SessionID, &order.Status, &order.PaymentStatus, &paymentIntentID,
		&customer, &address, &order.Subtotal, &order.ShippingCost, &order.ArtistLevy, &discountCode, &order.DiscountAmount,
		&order.Total, &shippingOptionID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get the order: %w", err)
	}

	order.PaymentIntentID = paymentIntentID.String
	order.DiscountCode = discountCode.String
	order.ShippingOptionID = shippingOptionID.String

	if err := json.Unmarshal(customer, &order.Customer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customer: %w", err)
	}

	if err := json.Unmarshal(address, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shipping address: %w", err)
	}

	query = `
		SELECT id, product_id, title, size_label, quantity, unit_price, line_total, levy, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.DB.QueryContext(dbCtx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get the order items: %w", err)
	}
	defer rows.Close()

	items := []models.OrderItem{}

	for rows.Next() {

		var (
			item      models.OrderItem
			sizeLabel sql.NullString
		)

		err := rows.Scan(&item.ID, &item.ProductID, &item.Title, &sizeLabel, &item.Quantity, &item.UnitPrice,
			&item.LineTotal, &item.Levy, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		item.OrderID = order.ID
		item.SizeLabel = sizeLabel.String

		items = append(items, item)

	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order items: %w", err)
	}

	order.Items = items

	return order, nil

}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
