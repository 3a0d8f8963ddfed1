package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/art-storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/art-storefront/internal/models"
	service "github.com/aaravmahajanofficial/art-storefront/internal/services"
	"github.com/aaravmahajanofficial/art-storefront/internal/utils"
	"github.com/aaravmahajanofficial/art-storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type ShippingHandler struct {
	shippingService service.ShippingService
	validator       *validator.Validate
}

func NewShippingHandler(shippingService service.ShippingService) *ShippingHandler {
	return &ShippingHandler{shippingService: shippingService, validator: validator.New()}
}

// GetShippingOptions godoc
//
//	@Summary		List shipping options for an address
//	@Description	Options are ordered by price, cheapest first. An empty list means the carrier offers nothing for the address.
//	@Tags			Shipping
//	@Accept			json
//	@Produce		json
//	@Param			address	body		models.ShippingOptionsRequest	true	"Destination"
//	@Success		200		{object}	models.ShippingOptionsResponse
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		502		{object}	response.ErrorResponse	"Carrier unavailable"
//	@Router			/shipping/options [post]
func (h *ShippingHandler) GetShippingOptions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.ShippingOptionsRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid shipping options input")
			return
		}

		logger = logger.With(slog.String("postalCode", req.PostalCode), slog.String("countryCode", req.CountryCode))

		options, err := h.shippingService.GetOptions(r.Context(), &req)
		if err != nil {
			logger.Error("Failed to resolve shipping options", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Shipping options resolved", slog.Int("count", len(options)))
		response.WriteJson(w, http.StatusOK, models.ShippingOptionsResponse{Data: options})
	}
}
