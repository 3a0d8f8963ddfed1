package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/art-storefront/internal/models"
	service "github.com/aaravmahajanofficial/art-storefront/internal/services"
	"github.com/aaravmahajanofficial/art-storefront/internal/utils"
	"github.com/aaravmahajanofficial/art-storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CartHandler struct {
	cartService service.CartService
	validator   *validator.Validate
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validator:   validator.New(),
	}
}

// GetCart godoc
//
//	@Summary		Get the session cart
//	@Description	Returns the cart with its derived totals. A new session starts with an empty cart.
//	@Tags			Cart
//	@Produce		json
//	@Success		200	{object}	models.Cart
//	@Failure		401	{object}	response.ErrorResponse
//	@Failure		500	{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/cart [get]
func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := sessionClaims(w, r)
		if !ok {
			return
		}

		cart, err := h.cartService.GetCart(r.Context(), claims.SessionID.String())
		if err != nil {
			logger.Error("Failed to get cart", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Debug("Cart retrieved", slog.Int("items", len(cart.Items)))
		response.Success(w, http.StatusOK, cart)
	}
}

// AddItem godoc
//
//	@Summary		Add an item to the cart
//	@Description	Adds a product line. Lines merge on product and selected size. Originals are held for the session.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			item	body		models.AddItemRequest	true	"Item"
//	@Success		200		{object}	models.Cart
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		404		{object}	response.ErrorResponse
//	@Failure		409		{object}	response.ErrorResponse	"Original reserved by another session or out of stock"
//	@Security		BearerAuth
//	@Router			/cart/items [post]
func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := sessionClaims(w, r)
		if !ok {
			return
		}

		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid add item input")
			return
		}

		logger = logger.With(slog.String("productID", req.ProductID.String()))

		cart, err := h.cartService.AddItem(r.Context(), claims.SessionID.String(), &req)
		if err != nil {
			logger.Error("Failed to add item to cart", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Item added to cart", slog.Int64("total", cart.Total))
		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) UpdateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := sessionClaims(w, r)
		if !ok {
			return
		}

		var req models.UpdateQuantityRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid update quantity input")
			return
		}

		logger = logger.With(slog.String("productID", req.ProductID.String()))

		cart, err := h.cartService.UpdateQuantity(r.Context(), claims.SessionID.String(), &req)
		if err != nil {
			logger.Error("Failed to update cart quantity", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Cart quantity updated", slog.Float64("quantity", req.Quantity))
		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := sessionClaims(w, r)
		if !ok {
			return
		}

		var req models.RemoveItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid remove item input")
			return
		}

		cart, err := h.cartService.RemoveItem(r.Context(), claims.SessionID.String(), &req)
		if err != nil {
			logger.Error("Failed to remove cart item", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Item removed from cart", slog.String("productID", req.ProductID.String()))
		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := sessionClaims(w, r)
		if !ok {
			return
		}

		cart, err := h.cartService.ClearCart(r.Context(), claims.SessionID.String())
		if err != nil {
			logger.Error("Failed to clear cart", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Cart cleared")
		response.Success(w, http.StatusOK, cart)
	}
}

// ApplyDiscount godoc
//
//	@Summary		Apply a discount code to the cart
//	@Description	Validates the code against the current subtotal. A rejected code leaves the cart unchanged.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			discount	body		models.ApplyDiscountRequest	true	"Code"
//	@Success		200			{object}	models.Cart
//	@Failure		400			{object}	response.ErrorResponse	"Inactive or expired code"
//	@Failure		404			{object}	response.ErrorResponse	"Unknown code"
//	@Failure		409			{object}	response.ErrorResponse	"Code has no uses left"
//	@Security		BearerAuth
//	@Router			/cart/discount [post]
func (h *CartHandler) ApplyDiscount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := sessionClaims(w, r)
		if !ok {
			return
		}

		var req models.ApplyDiscountRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid apply discount input")
			return
		}

		cart, err := h.cartService.ApplyDiscount(r.Context(), claims.SessionID.String(), req.Code)
		if err != nil {
			logger.Warn("Discount not applied", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Discount applied", slog.String("code", cart.DiscountCode), slog.Int64("discount", cart.DiscountAmount))
		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) ClearDiscount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := sessionClaims(w, r)
		if !ok {
			return
		}

		cart, err := h.cartService.ClearDiscount(r.Context(), claims.SessionID.String())
		if err != nil {
			logger.Error("Failed to clear discount", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Discount cleared")
		response.Success(w, http.StatusOK, cart)
	}
}
