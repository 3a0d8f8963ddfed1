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

type DiscountHandler struct {
	discountService service.DiscountService
	validator       *validator.Validate
}

func NewDiscountHandler(discountService service.DiscountService) *DiscountHandler {
	return &DiscountHandler{discountService: discountService, validator: validator.New()}
}

// ValidateDiscount godoc
//
//	@Summary		Check a discount code
//	@Description	Resolves a code against a subtotal without consuming a use.
//	@Tags			Discounts
//	@Accept			json
//	@Produce		json
//	@Param			discount	body		models.ValidateDiscountRequest	true	"Code and subtotal in øre"
//	@Success		200			{object}	models.DiscountValidation
//	@Failure		400			{object}	models.DiscountRejectionResponse	"Inactive, expired or exhausted"
//	@Failure		404			{object}	models.DiscountRejectionResponse	"Unknown code"
//	@Router			/discounts/validate [post]
func (h *DiscountHandler) ValidateDiscount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.ValidateDiscountRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid discount validation input")
			return
		}

		result, err := h.discountService.ValidateCode(r.Context(), req.Code, req.Subtotal)
		if err != nil {
			logger.Error("Failed to validate discount code", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		if !result.Valid {
			status := http.StatusBadRequest
			if result.Error == models.DiscountNotFound {
				status = http.StatusNotFound
			}

			logger.Info("Discount code rejected", slog.String("reason", string(result.Error)))
			response.WriteJson(w, status, models.DiscountRejectionResponse{Valid: false, Error: result.Error})
			return
		}

		logger.Info("Discount code valid", slog.String("code", result.Code), slog.Int64("discount", result.CalculatedDiscount))
		response.WriteJson(w, http.StatusOK, result)
	}
}
