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
	"github.com/aaravmahajanofficial/art-storefront/pkg/stripe"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/aaravmahajanofficial/art-storefront/internal/services")

const (
	fieldDiscountAmount = "discount_amount"
	fieldPaymentAmount  = "payment_amount"

	maxDiscountPercent = 100
)

type OrderService interface {
	CreateOrder(ctx context.Context, sessionID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, sessionID uuid.UUID, orderID uuid.UUID) (*models.Order, error)
}

// CartClearer empties a session cart once its order is committed.
type CartClearer interface {
	ClearCart(ctx context.Context, sessionID string) (*models.Cart, error)
}

type OrderOptions struct {
	Tolerance int64
	Currency  string
	Now       func() time.Time
}

type orderService struct {
	productRepo  repository.ProductRepository
	orderRepo    repository.OrderRepository
	reservations repository.ReservationRepository
	discounts    DiscountService
	shipping     ShippingService
	payments     stripe.Client
	notifier     NotificationService
	carts        CartClearer
	sanitizer    *bluemonday.Policy
	opts         OrderOptions
}

func NewOrderService(productRepo repository.ProductRepository, orderRepo repository.OrderRepository, reservations repository.ReservationRepository,
	discounts DiscountService, shipping ShippingService, payments stripe.Client, notifier NotificationService, carts CartClearer, opts OrderOptions) OrderService {

	if opts.Tolerance <= 0 {
		opts.Tolerance = pricing.DefaultTolerance
	}
	if opts.Currency == "" {
		opts.Currency = "nok"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &orderService{
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		reservations: reservations,
		discounts:    discounts,
		shipping:     shipping,
		payments:     payments,
		notifier:     notifier,
		carts:        carts,
		sanitizer:    bluemonday.StrictPolicy(),
		opts:         opts,
	}
}

// CreateOrder recomputes every figure from the catalog, the discount table
// and the carrier, and refuses the order when the submitted totals disagree.
// Submitted figures are never corrected.
func (s *orderService) CreateOrder(ctx context.Context, sessionID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error) {

	ctx, span := tracer.Start(ctx, "CreateOrder", trace.WithAttributes(attribute.Int("order.items", len(req.Items))))
	defer span.End()

	logger := slog.Default().With(slog.String("sessionID", sessionID.String()))

	if len(req.Items) == 0 {
		return nil, appErrors.BadRequestError("Cannot create an order without items")
	}

	lines, err := s.resolveLines(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	if err := s.checkHolds(ctx, logger, sessionID, lines); err != nil {
		return nil, err
	}

	items := make([]pricing.Item, 0, len(lines))
	for _, line := range lines {
		items = append(items, line.item)
	}

	var (
		discountCode   string
		discountAmount int64
		freeShipping   bool
	)

	if code := NormalizeCode(req.DiscountCode); code != "" {
		validation, err := s.discounts.ValidateCode(ctx, code, pricing.Subtotal(items))
		if err != nil {
			return nil, err
		}
		if !validation.Valid {
			return nil, RejectionError(validation.Error)
		}

		discountCode = validation.Code
		discountAmount = validation.CalculatedDiscount
		freeShipping = validation.FreeShipping
	}

	var (
		shippingOverride *int64
		shippingOptionID string
	)

	if req.Shipping != nil {
		option, err := s.shipping.FindOption(ctx, req.Address.PostalCode, req.Address.Country, req.Shipping.OptionID)
		if err != nil {
			return nil, err
		}

		shippingOverride = &option.PriceWithVAT
		shippingOptionID = option.ID
	}

	calculated := pricing.CartTotalsSimple(items, discountAmount, freeShipping, shippingOverride)

	if err := pricing.ValidateDiscountAmount(req.DiscountAmount, calculated.Subtotal, maxDiscountPercent); err != nil {
		logger.Warn("Submitted discount amount out of range",
			slog.Int64("discountAmount", req.DiscountAmount), slog.Int64("subtotal", calculated.Subtotal))

		if errors.Is(err, pricing.ErrDiscountExceedsSubtotal) {
			return nil, appErrors.DiscountExceedsSubtotalError("Discount cannot exceed the order subtotal").WithError(err)
		}
		return nil, appErrors.ValidationError("Invalid discount amount").WithError(err)
	}

	submitted := pricing.Totals{
		Subtotal:     req.Totals.Subtotal,
		ShippingCost: req.Totals.ShippingCost,
		ArtistLevy:   req.Totals.ArtistLevy,
		Total:        req.Totals.Total,
	}

	check := pricing.ValidateTotals(submitted, calculated, s.opts.Tolerance)
	if diff := abs(req.DiscountAmount - calculated.DiscountAmount); diff > s.opts.Tolerance {
		check.Valid = false
		check.Mismatches = append(check.Mismatches, pricing.Mismatch{
			Field:      fieldDiscountAmount,
			Submitted:  req.DiscountAmount,
			Calculated: calculated.DiscountAmount,
			Difference: diff,
		})
	}

	if !check.Valid {
		return nil, s.rejectTotals(logger, check.Mismatches)
	}

	paymentStatus, err := s.verifyPayment(ctx, logger, req.PaymentIntentID, calculated.Total)
	if err != nil {
		return nil, err
	}

	order := s.buildOrder(sessionID, req, lines, calculated, discountCode, shippingOptionID, paymentStatus)

	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		var stockErr *repository.StockError

		switch {
		case errors.As(err, &stockErr):
			return nil, appErrors.InsufficientStockError("A product in the order is no longer in stock").
				WithDetail(stockErr.ProductID.String()).WithError(err)
		case errors.Is(err, repository.ErrDiscountUnavailable):
			return nil, appErrors.ExhaustedDiscountCodeError().WithError(err)
		default:
			return nil, appErrors.DatabaseError("Failed to create order").WithError(err)
		}
	}

	metrics.OrderPlaced(string(order.PaymentStatus))
	span.SetAttributes(attribute.String("order.id", order.ID.String()), attribute.Int64("order.total", order.Total))
	logger.Info("Order placed", slog.String("orderID", order.ID.String()), slog.Int64("total", order.Total))

	if _, err := s.carts.ClearCart(ctx, sessionID.String()); err != nil {
		logger.Warn("Failed to clear cart after order", slog.Any("error", err))
	}

	if err := s.notifier.OrderPlaced(ctx, order); err != nil {
		logger.Warn("Order notification failed", slog.String("orderID", order.ID.String()), slog.Any("error", err))
	}

	return order, nil
}

type resolvedLine struct {
	product *models.Product
	size    *models.SelectedSize
	item    pricing.Item
}

func (s *orderService) resolveLines(ctx context.Context, reqItems []models.OrderItemRequest) ([]resolvedLine, error) {

	ids := make([]uuid.UUID, 0, len(reqItems))
	for _, item := range reqItems {
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch products").WithError(err)
	}

	requested := make(map[uuid.UUID]int)
	lines := make([]resolvedLine, 0, len(reqItems))

	for _, reqItem := range reqItems {

		product, ok := products[reqItem.ProductID]
		if !ok {
			return nil, appErrors.NotFoundError("Product not found").WithDetail(reqItem.ProductID.String())
		}

		if err := checkPurchasable(product); err != nil {
			return nil, err
		}

		size, ok := product.FindSize(reqItem.SelectedSize)
		if !ok {
			return nil, appErrors.ValidationError("Selected size is not offered for this product").WithDetail(product.ID.String())
		}

		requested[product.ID] += reqItem.Quantity

		unitPrice := product.Price
		if size != nil && size.Price != nil {
			unitPrice = *size.Price
		}

		lines = append(lines, resolvedLine{
			product: product,
			size:    size,
			item: pricing.Item{
				ProductID:    product.ID,
				Title:        product.Title,
				UnitPrice:    unitPrice,
				Quantity:     reqItem.Quantity,
				ShippingCost: product.ShippingCost,
			},
		})
	}

	for id, quantity := range requested {
		product := products[id]

		switch {
		case product.ProductType == models.ProductTypeOriginal && quantity > 1:
			return nil, appErrors.InsufficientStockError("Original works can only be bought once").WithDetail(id.String())
		case product.StockQuantity != nil && quantity > *product.StockQuantity:
			return nil, appErrors.InsufficientStockError("Not enough stock for product").WithDetail(id.String())
		}
	}

	return lines, nil
}

// checkHolds refuses originals that another session is holding in its cart.
// A failed lookup is logged and does not block the order.
func (s *orderService) checkHolds(ctx context.Context, logger *slog.Logger, sessionID uuid.UUID, lines []resolvedLine) error {

	for _, line := range lines {
		if line.product.ProductType != models.ProductTypeOriginal {
			continue
		}

		owner, err := s.reservations.Holder(ctx, line.product.ID)
		if err != nil {
			logger.Warn("Reservation lookup failed", slog.String("productID", line.product.ID.String()), slog.Any("error", err))
			continue
		}

		if owner != "" && owner != sessionID.String() {
			metrics.ReservationConflict()
			return appErrors.ProductReservedError("This piece is reserved by another customer").WithDetail(line.product.ID.String())
		}
	}

	return nil
}

func (s *orderService) rejectTotals(logger *slog.Logger, mismatches []pricing.Mismatch) error {
	attrs := make([]any, 0, len(mismatches))

	for _, m := range mismatches {
		metrics.TotalMismatch(m.Field)
		attrs = append(attrs, slog.String(m.Field, m.String()))
	}

	logger.Warn("Order totals do not match server calculation", attrs...)

	return appErrors.TotalMismatchError()
}

// verifyPayment reports paid only when the intent succeeded for exactly the
// calculated amount in the shop currency.
func (s *orderService) verifyPayment(ctx context.Context, logger *slog.Logger, intentID string, total int64) (models.PaymentStatus, error) {

	if intentID == "" || s.payments == nil {
		return models.PaymentStatusPending, nil
	}

	intent, err := s.payments.GetPaymentIntent(ctx, intentID)
	if err != nil {
		return "", appErrors.ThirdPartyError("Failed to verify payment").WithError(err)
	}

	if intent.Amount != total || !strings.EqualFold(intent.Currency, s.opts.Currency) {
		return "", s.rejectTotals(logger, []pricing.Mismatch{{
			Field:      fieldPaymentAmount,
			Submitted:  intent.Amount,
			Calculated: total,
			Difference: abs(intent.Amount - total),
		}})
	}

	if intent.Succeeded() {
		return models.PaymentStatusPaid, nil
	}

	return models.PaymentStatusPending, nil
}

func (s *orderService) buildOrder(sessionID uuid.UUID, req *models.CreateOrderRequest, lines []resolvedLine, totals pricing.Totals,
	discountCode, shippingOptionID string, paymentStatus models.PaymentStatus) *models.Order {

	now := s.opts.Now()

	status := models.OrderStatusPending
	if paymentStatus == models.PaymentStatusPaid {
		status = models.OrderStatusConfirmed
	}

	order := &models.Order{
		ID:              uuid.New(),
		SessionID:       sessionID,
		Status:          status,
		PaymentStatus:   paymentStatus,
		PaymentIntentID: req.PaymentIntentID,
		Customer: models.Customer{
			Name:  s.clean(req.Customer.Name),
			Email: strings.TrimSpace(req.Customer.Email),
			Phone: s.clean(req.Customer.Phone),
		},
		ShippingAddress: models.Address{
			Street:     s.clean(req.Address.Street),
			PostalCode: req.Address.PostalCode,
			City:       s.clean(req.Address.City),
			Country:    strings.ToUpper(req.Address.Country),
		},
		Subtotal:         totals.Subtotal,
		ShippingCost:     totals.ShippingCost,
		ArtistLevy:       totals.ArtistLevy,
		DiscountCode:     discountCode,
		DiscountAmount:   totals.DiscountAmount,
		Total:            totals.Total,
		ShippingOptionID: shippingOptionID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	for _, line := range lines {
		var sizeLabel string
		if line.size != nil {
			sizeLabel = line.size.Label
		}

		order.Items = append(order.Items, models.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: line.product.ID,
			Title:     line.product.Title,
			SizeLabel: sizeLabel,
			Quantity:  line.item.Quantity,
			UnitPrice: line.item.UnitPrice,
			LineTotal: line.item.LineTotal(),
			Levy:      pricing.ArtistLevy([]pricing.Item{line.item}).Total,
			CreatedAt: now,
		})
	}

	return order
}

func (s *orderService) clean(v string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(v))
}

func (s *orderService) GetOrder(ctx context.Context, sessionID uuid.UUID, orderID uuid.UUID) (*models.Order, error) {

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Order not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to fetch order").WithError(err)
	}

	// another session's order is reported as missing
	if order.SessionID != sessionID {
		return nil, appErrors.NotFoundError("Order not found")
	}

	return order, nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
