package models

type DeliveryType string

const (
	DeliveryTypePickup       DeliveryType = "pickup"
	DeliveryTypeHomeDelivery DeliveryType = "home_delivery"
	DeliveryTypeOther        DeliveryType = "other"
)

type EnvironmentalInfo struct {
	FossilFreePercentage int `json:"fossilFreePercentage"`
}

type ShippingOption struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	DeliveryType      DeliveryType       `json:"deliveryType"`
	EstimatedDelivery string             `json:"estimatedDelivery"`
	PriceWithVAT      int64              `json:"priceWithVat"`
	EnvironmentalInfo *EnvironmentalInfo `json:"environmentalInfo,omitempty"`
}

type ShippingOptionsRequest struct {
	PostalCode  string `json:"postalCode" validate:"required,numeric,len=4"`
	CountryCode string `json:"countryCode" validate:"required,iso3166_1_alpha2"`
	Locale      string `json:"locale" validate:"omitempty,oneof=nb no en"`
}

type ShippingOptionsResponse struct {
	Data []ShippingOption `json:"data"`
}

// ShippingSelection is the option the customer picked at checkout.
type ShippingSelection struct {
	OptionID     string `json:"option_id" validate:"required"`
	PriceWithVAT int64  `json:"price_with_vat" validate:"gte=0"`
}
