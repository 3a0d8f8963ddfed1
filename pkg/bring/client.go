// Package bring talks to the Bring Shipping Guide API, the carrier that
// prices and lists delivery options for a Norwegian postal code.
package bring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/art-storefront/internal/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultBaseURL = "https://api.bring.com/shippingguide/api/v2"

	// a framed print in a tube or flat box; the guide needs some weight to quote
	defaultGrossWeightGrams = 2000
)

var ErrUnexpectedResponse = errors.New("unexpected response from carrier")

type Config struct {
	BaseURL        string
	APIUID         string
	APIKey         string
	ClientURL      string
	CustomerNumber string
	FromPostalCode string
	FromCountry    string
	Products       []string
	Timeout        time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient builds a carrier client. A nil httpClient gets a traced one.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.FromCountry == "" {
		cfg.FromCountry = "NO"
	}

	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		}
	}

	return &Client{cfg: cfg, httpClient: httpClient}
}

type productRef struct {
	ID             string `json:"id"`
	CustomerNumber string `json:"customerNumber,omitempty"`
}

type packageSpec struct {
	GrossWeight int `json:"grossWeight"`
}

type consignmentRequest struct {
	ID              string        `json:"id"`
	FromCountryCode string        `json:"fromCountryCode"`
	FromPostalCode  string        `json:"fromPostalCode"`
	ToCountryCode   string        `json:"toCountryCode"`
	ToPostalCode    string        `json:"toPostalCode"`
	Packages        []packageSpec `json:"packages"`
	Products        []productRef  `json:"products"`
}

type productsRequest struct {
	Consignments          []consignmentRequest `json:"consignments"`
	Language              string               `json:"language"`
	WithPrice             bool                 `json:"withPrice"`
	WithExpectedDelivery  bool                 `json:"withExpectedDelivery"`
	WithGuiInformation    bool                 `json:"withGuiInformation"`
	WithEnvironmentalData bool                 `json:"withEnvironmentalData"`
}

type productsResponse struct {
	Consignments []struct {
		Products []productResponse `json:"products"`
	} `json:"consignments"`
}

type productResponse struct {
	ID             string `json:"id"`
	GuiInformation struct {
		DisplayName     string `json:"displayName"`
		DescriptionText string `json:"descriptionText"`
		ProductName     string `json:"productName"`
	} `json:"guiInformation"`
	Price *struct {
		ListPrice struct {
			PriceWithAdditionalServices struct {
				AmountWithVAT string `json:"amountWithVAT"`
			} `json:"priceWithAdditionalServices"`
		} `json:"listPrice"`
	} `json:"price"`
	ExpectedDelivery *struct {
		FormattedExpectedDeliveryDate string `json:"formattedExpectedDeliveryDate"`
		WorkingDays                   string `json:"workingDays"`
	} `json:"expectedDelivery"`
	EnvironmentalData []struct {
		FossilFreePercentage int `json:"fossilFreePercentage"`
	} `json:"environmentalData"`
	Errors []struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"errors"`
}

// ShippingOptions asks the carrier for every configured product it can
// deliver to postalCode. Products the carrier rejects or cannot price are
// left out, so an empty slice is a valid answer.
func (c *Client) ShippingOptions(ctx context.Context, postalCode, countryCode, locale string) ([]models.ShippingOption, error) {

	products := make([]productRef, 0, len(c.cfg.Products))
	for _, id := range c.cfg.Products {
		products = append(products, productRef{ID: id, CustomerNumber: c.cfg.CustomerNumber})
	}

	payload := productsRequest{
		Consignments: []consignmentRequest{{
			ID:              "1",
			FromCountryCode: c.cfg.FromCountry,
			FromPostalCode:  c.cfg.FromPostalCode,
			ToCountryCode:   strings.ToUpper(countryCode),
			ToPostalCode:    postalCode,
			Packages:        []packageSpec{{GrossWeight: defaultGrossWeightGrams}},
			Products:        products,
		}},
		Language:              language(locale),
		WithPrice:             true,
		WithExpectedDelivery:  true,
		WithGuiInformation:    true,
		WithEnvironmentalData: true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal carrier request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/products", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build carrier request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Mybring-API-Uid", c.cfg.APIUID)
	req.Header.Set("X-Mybring-API-Key", c.cfg.APIKey)
	if c.cfg.ClientURL != "" {
		req.Header.Set("X-Bring-Client-URL", c.cfg.ClientURL)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("carrier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrUnexpectedResponse, resp.StatusCode)
	}

	var decoded productsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}

	options := []models.ShippingOption{}

	for _, consignment := range decoded.Consignments {
		for _, product := range consignment.Products {
			option, ok := toOption(product)
			if ok {
				options = append(options, option)
			}
		}
	}

	return options, nil
}

func toOption(p productResponse) (models.ShippingOption, bool) {
	if len(p.Errors) > 0 || p.Price == nil {
		return models.ShippingOption{}, false
	}

	price, err := ParseKroner(p.Price.ListPrice.PriceWithAdditionalServices.AmountWithVAT)
	if err != nil {
		return models.ShippingOption{}, false
	}

	name := p.GuiInformation.DisplayName
	if name == "" {
		name = p.GuiInformation.ProductName
	}

	option := models.ShippingOption{
		ID:           p.ID,
		Name:         name,
		Description:  p.GuiInformation.DescriptionText,
		DeliveryType: deliveryType(p.ID),
		PriceWithVAT: price,
	}

	if p.ExpectedDelivery != nil {
		option.EstimatedDelivery = p.ExpectedDelivery.FormattedExpectedDeliveryDate
		if option.EstimatedDelivery == "" && p.ExpectedDelivery.WorkingDays != "" {
			option.EstimatedDelivery = p.ExpectedDelivery.WorkingDays
		}
	}

	if len(p.EnvironmentalData) > 0 {
		option.EnvironmentalInfo = &models.EnvironmentalInfo{
			FossilFreePercentage: p.EnvironmentalData[0].FossilFreePercentage,
		}
	}

	return option, true
}

// deliveryType maps carrier product ids onto the storefront's three kinds.
func deliveryType(productID string) models.DeliveryType {
	switch productID {
	case "SERVICEPAKKE", "5800", "PICKUP_PARCEL", "3584":
		return models.DeliveryTypePickup
	case "PA_DOREN", "5600", "HOME_DELIVERY_PARCEL", "BPAKKE_DOR-DOR", "5000":
		return models.DeliveryTypeHomeDelivery
	default:
		return models.DeliveryTypeOther
	}
}

func language(locale string) string {
	switch strings.ToLower(locale) {
	case "en":
		return "en"
	default:
		return "no"
	}
}

// ParseKroner converts a decimal kroner string such as "149.00" or "99,5"
// into øre.
func ParseKroner(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	whole, frac, _ := strings.Cut(s, ".")

	kroner, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || kroner < 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	if len(frac) > 2 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	frac += strings.Repeat("0", 2-len(frac))

	ore, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || ore < 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	return kroner*100 + ore, nil
}
