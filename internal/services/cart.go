package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/art-storefront/internal/cart"
	appErrors "github.com/aaravmahajanofficial/art-storefront/internal/errors"
	"github.com/aaravmahajanofficial/art-storefront/internal/metrics"
	"github.com/aaravmahajanofficial/art-storefront/internal/models"
	repository "github.com/aaravmahajanofficial/art-storefront/internal/repositories"
)

// CartStore is the session cart registry; *cart.Manager implements it.
type CartStore interface {
	Dispatch(ctx context.Context, sessionID string, action cart.Action) (models.Cart, error)
	State(ctx context.Context, sessionID string) (models.Cart, error)
	Release(sessionID string)
}

type CartService interface {
	GetCart(ctx context.Context, sessionID string) (*models.Cart, error)
	AddItem(ctx context.Context, sessionID string, req *models.AddItemRequest) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, sessionID string, req *models.UpdateQuantityRequest) (*models.Cart, error)
	RemoveItem(ctx context.Context, sessionID string, req *models.RemoveItemRequest) (*models.Cart, error)
	ClearCart(ctx context.Context, sessionID string) (*models.Cart, error)
	ApplyDiscount(ctx context.Context, sessionID string, code string) (*models.Cart, error)
	ClearDiscount(ctx context.Context, sessionID string) (*models.Cart, error)
	Release(sessionID string)
}

type cartService struct {
	carts          CartStore
	productRepo    repository.ProductRepository
	reservations   repository.ReservationRepository
	discounts      DiscountService
	reservationTTL time.Duration
}

func NewCartService(carts CartStore, productRepo repository.ProductRepository, reservations repository.ReservationRepository,
	discounts DiscountService, reservationTTL time.Duration) CartService {
	return &cartService{
		carts:          carts,
		productRepo:    productRepo,
		reservations:   reservations,
		discounts:      discounts,
		reservationTTL: reservationTTL,
	}
}

func (s *cartService) GetCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	state, err := s.carts.State(ctx, sessionID)
	if err != nil {
		return nil, appErrors.InternalError("Failed to load cart").WithError(err)
	}

	return &state, nil
}

func (s *cartService) AddItem(ctx context.Context, sessionID string, req *models.AddItemRequest) (*models.Cart, error) {

	quantity := 1
	if req.Quantity != 0 {
		q, err := cart.ParseQuantity(req.Quantity)
		if err != nil {
			return nil, err
		}
		if q <= 0 {
			return nil, appErrors.InvalidQuantityError("Quantity must be positive")
		}
		quantity = q
	}

	product, err := s.productRepo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to fetch product").WithError(err)
	}

	if err := checkPurchasable(product); err != nil {
		return nil, err
	}

	size, ok := product.FindSize(req.SelectedSize)
	if !ok {
		return nil, appErrors.ValidationError("Selected size is not offered for this product")
	}

	action := cart.AddItem{Product: product.Snapshot(), Quantity: quantity, SelectedSize: size}

	switch product.ProductType {
	case models.ProductTypeOriginal:

		state, err := s.carts.State(ctx, sessionID)
		if err != nil {
			return nil, appErrors.InternalError("Failed to load cart").WithError(err)
		}

		// an original is unique, adding it again is a no-op
		if _, exists := cart.FindItem(state, product.ID, size); exists {
			return &state, nil
		}

		reservation, err := s.reservations.Reserve(ctx, product.ID, sessionID, s.reservationTTL)
		if err != nil {
			if errors.Is(err, repository.ErrAlreadyReserved) {
				metrics.ReservationConflict()
				return nil, appErrors.ProductReservedError("This piece is reserved by another customer")
			}
			return nil, appErrors.InternalError("Failed to reserve product").WithError(err)
		}

		action.Quantity = 1
		action.ReservationID = reservation.ID
		action.ExpiresAt = &reservation.ExpiresAt

	case models.ProductTypePrint:
		if product.StockQuantity != nil && *product.StockQuantity <= 0 {
			return nil, appErrors.InsufficientStockError("Product is out of stock")
		}
	}

	return s.dispatch(ctx, sessionID, action)
}

func checkPurchasable(product *models.Product) error {
	if !product.IsAvailable {
		return appErrors.BadRequestError("Product is not available")
	}

	if product.RequiresInquiry {
		return appErrors.BadRequestError("Product is sold on inquiry only")
	}

	return nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, sessionID string, req *models.UpdateQuantityRequest) (*models.Cart, error) {

	quantity, err := cart.ParseQuantity(req.Quantity)
	if err != nil {
		return nil, err
	}

	state, err := s.carts.State(ctx, sessionID)
	if err != nil {
		return nil, appErrors.InternalError("Failed to load cart").WithError(err)
	}

	item, found := cart.FindItem(state, req.ProductID, req.SelectedSize)
	if !found {
		return nil, appErrors.NotFoundError("Item not found in the cart")
	}

	if quantity <= 0 {
		return s.remove(ctx, sessionID, item)
	}

	if item.Product.ProductType == models.ProductTypeOriginal {
		quantity = 1
	}

	return s.dispatch(ctx, sessionID, cart.UpdateQuantity{
		ProductID:    req.ProductID,
		Quantity:     quantity,
		SelectedSize: req.SelectedSize,
	})
}

func (s *cartService) RemoveItem(ctx context.Context, sessionID string, req *models.RemoveItemRequest) (*models.Cart, error) {

	state, err := s.carts.State(ctx, sessionID)
	if err != nil {
		return nil, appErrors.InternalError("Failed to load cart").WithError(err)
	}

	item, found := cart.FindItem(state, req.ProductID, req.SelectedSize)
	if !found {
		return &state, nil
	}

	return s.remove(ctx, sessionID, item)
}

func (s *cartService) remove(ctx context.Context, sessionID string, item models.CartItem) (*models.Cart, error) {
	updated, err := s.dispatch(ctx, sessionID, cart.RemoveItem{ProductID: item.Product.ID, SelectedSize: item.SelectedSize})
	if err != nil {
		return nil, err
	}

	s.releaseHolds(ctx, sessionID, []models.CartItem{item})

	return updated, nil
}

func (s *cartService) ClearCart(ctx context.Context, sessionID string) (*models.Cart, error) {

	state, err := s.carts.State(ctx, sessionID)
	if err != nil {
		return nil, appErrors.InternalError("Failed to load cart").WithError(err)
	}

	updated, err := s.dispatch(ctx, sessionID, cart.ClearCart{})
	if err != nil {
		return nil, err
	}

	s.releaseHolds(ctx, sessionID, state.Items)

	return updated, nil
}

// ApplyDiscount validates code against the cart's current subtotal. A
// rejected code leaves the cart as it was.
func (s *cartService) ApplyDiscount(ctx context.Context, sessionID string, code string) (*models.Cart, error) {

	state, err := s.carts.State(ctx, sessionID)
	if err != nil {
		return nil, appErrors.InternalError("Failed to load cart").WithError(err)
	}

	validation, err := s.discounts.ValidateCode(ctx, code, state.Subtotal)
	if err != nil {
		return nil, err
	}

	if !validation.Valid {
		return nil, RejectionError(validation.Error)
	}

	return s.dispatch(ctx, sessionID, cart.ApplyDiscount{
		Code:         validation.Code,
		Amount:       validation.CalculatedDiscount,
		FreeShipping: validation.FreeShipping,
	})
}

func (s *cartService) ClearDiscount(ctx context.Context, sessionID string) (*models.Cart, error) {
	return s.dispatch(ctx, sessionID, cart.ClearDiscount{})
}

// Release drops the in-memory store; the snapshot stays for the next visit.
func (s *cartService) Release(sessionID string) {
	s.carts.Release(sessionID)
}

func (s *cartService) dispatch(ctx context.Context, sessionID string, action cart.Action) (*models.Cart, error) {
	state, err := s.carts.Dispatch(ctx, sessionID, action)
	if err != nil {
		return nil, appErrors.InternalError("Failed to update cart").WithError(err)
	}

	return &state, nil
}

func (s *cartService) releaseHolds(ctx context.Context, sessionID string, items []models.CartItem) {
	for _, item := range items {
		if item.ReservationID == "" {
			continue
		}

		if err := s.reservations.Release(ctx, item.Product.ID, sessionID); err != nil {
			slog.WarnContext(ctx, "Failed to release reservation",
				slog.String("sessionID", sessionID),
				slog.String("productID", item.Product.ID.String()),
				slog.Any("error", err))
		}
	}
}
