package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/aaravmahajanofficial/art-storefront/internal/models"
	"github.com/aaravmahajanofficial/art-storefront/internal/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ProductRepository is read-only; catalog writes belong to the admin side.
type ProductRepository interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error)
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

const productColumns = `id, title, slug, price, image_url, product_type, stock_quantity,
	is_available, requires_inquiry, shipping_cost, sizes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var (
		product  models.Product
		imageURL sql.NullString
		stock    sql.NullInt32
		shipping sql.NullInt64
		sizes    []byte
	)

	err := row.Scan(&product.ID, &product.Title, &product.Slug, &product.Price, &imageURL, &product.ProductType, &stock,
		&product.IsAvailable, &product.RequiresInquiry, &shipping, &sizes, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}

	product.ImageURL = imageURL.String

	if stock.Valid {
		quantity := int(stock.Int32)
		product.StockQuantity = &quantity
	}

	if shipping.Valid {
		cost := shipping.Int64
		product.ShippingCost = &cost
	}

	if len(sizes) > 0 {
		if err := json.Unmarshal(sizes, &product.Sizes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sizes of product %s: %w", product.ID, err)
		}
	}

	return &product, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		return nil, fmt.Errorf("querying database: %w", err)
	}

	return product, nil
}

// GetProductsByIDs returns the products that exist; missing ids are simply
// absent from the map.
func (r *productRepository) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	products := make(map[uuid.UUID]*models.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1::uuid[])`

	rows, err := r.DB.QueryContext(dbCtx, query, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		products[product.ID] = product
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, nil
}
