package cart

import (
	"time"

	"github.com/aaravmahajanofficial/art-storefront/internal/models"
	"github.com/google/uuid"
)

// Action is the closed set of cart mutations. Only types in this package
// implement it.
type Action interface {
	Name() string
	isAction()
}

type AddItem struct {
	Product       models.ProductSnapshot
	Quantity      int
	ReservationID string
	ExpiresAt     *time.Time
	SelectedSize  *models.SelectedSize
}

type RemoveItem struct {
	ProductID    uuid.UUID
	SelectedSize *models.SelectedSize
}

type UpdateQuantity struct {
	ProductID    uuid.UUID
	Quantity     int
	SelectedSize *models.SelectedSize
}

// ApplyDiscount stores an effect that has already been validated.
type ApplyDiscount struct {
	Code         string
	Amount       int64
	FreeShipping bool
}

type ClearDiscount struct{}

type ClearCart struct{}

// LoadCart replaces the state wholesale; used when hydrating a session.
type LoadCart struct {
	Cart models.Cart
}

type RemoveExpired struct {
	Now time.Time
}

func (AddItem) Name() string        { return "add_item" }
func (RemoveItem) Name() string     { return "remove_item" }
func (UpdateQuantity) Name() string { return "update_quantity" }
func (ApplyDiscount) Name() string  { return "apply_discount" }
func (ClearDiscount) Name() string  { return "clear_discount" }
func (ClearCart) Name() string      { return "clear_cart" }
func (LoadCart) Name() string       { return "load_cart" }
func (RemoveExpired) Name() string  { return "remove_expired" }

func (AddItem) isAction()        {}
func (RemoveItem) isAction()     {}
func (UpdateQuantity) isAction() {}
func (ApplyDiscount) isAction()  {}
func (ClearDiscount) isAction()  {}
func (ClearCart) isAction()      {}
func (LoadCart) isAction()       {}
func (RemoveExpired) isAction()  {}
