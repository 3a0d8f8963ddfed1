package cart

import (
	"github.com/aaravmahajanofficial/art-storefront/internal/models"
	"github.com/aaravmahajanofficial/art-storefront/internal/pricing"
	"github.com/google/uuid"
)

// Reduce applies one action and returns the next state plus whether anything
// changed. It never mutates state.
func Reduce(state models.Cart, action Action) (models.Cart, bool) {
	switch a := action.(type) {
	case AddItem:
		return recompute(addItem(state.Clone(), a)), true

	case RemoveItem:
		next, removed := removeItem(state.Clone(), models.NewItemKey(a.ProductID, a.SelectedSize))
		if !removed {
			return state, false
		}
		return recompute(next), true

	case UpdateQuantity:
		if a.Quantity <= 0 {
			return Reduce(state, RemoveItem{ProductID: a.ProductID, SelectedSize: a.SelectedSize})
		}
		next, found := updateQuantity(state.Clone(), a)
		if !found {
			return state, false
		}
		return recompute(next), true

	case ApplyDiscount:
		next := state.Clone()
		next.DiscountCode = a.Code
		next.AppliedDiscount = a.Amount
		next.FreeShipping = a.FreeShipping
		return recompute(next), true

	case ClearDiscount:
		next := state.Clone()
		next.DiscountCode = ""
		next.AppliedDiscount = 0
		next.FreeShipping = false
		return recompute(next), true

	case ClearCart:
		return models.EmptyCart(), true

	case LoadCart:
		next := a.Cart.Clone()
		return recompute(next), true

	case RemoveExpired:
		next := state.Clone()
		kept := next.Items[:0]
		for _, item := range next.Items {
			if !item.Expired(a.Now) {
				kept = append(kept, item)
			}
		}
		if len(kept) == len(state.Items) {
			return state, false
		}
		next.Items = kept
		return recompute(next), true
	}

	return state, false
}

func addItem(state models.Cart, a AddItem) models.Cart {
	quantity := a.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	key := models.NewItemKey(a.Product.ID, a.SelectedSize)

	for i, item := range state.Items {
		if item.Key() != key {
			continue
		}

		item.Product = a.Product
		item.Quantity = clampToStock(a.Product, item.Quantity+quantity)
		item.ReservationID = a.ReservationID
		item.ExpiresAt = a.ExpiresAt
		if item.Quantity <= 0 {
			state.Items = append(state.Items[:i], state.Items[i+1:]...)
			return state
		}
		state.Items[i] = item

		return state
	}

	quantity = clampToStock(a.Product, quantity)
	if quantity <= 0 {
		return state
	}

	state.Items = append(state.Items, models.CartItem{
		Product:       a.Product,
		Quantity:      quantity,
		SelectedSize:  a.SelectedSize,
		ReservationID: a.ReservationID,
		ExpiresAt:     a.ExpiresAt,
	})

	return state
}

func removeItem(state models.Cart, key models.ItemKey) (models.Cart, bool) {
	for i, item := range state.Items {
		if item.Key() == key {
			state.Items = append(state.Items[:i], state.Items[i+1:]...)
			return state, true
		}
	}

	return state, false
}

func updateQuantity(state models.Cart, a UpdateQuantity) (models.Cart, bool) {
	key := models.NewItemKey(a.ProductID, a.SelectedSize)

	for i, item := range state.Items {
		if item.Key() != key {
			continue
		}

		item.Quantity = clampToStock(item.Product, a.Quantity)
		if item.Quantity <= 0 {
			return removeItem(state, key)
		}
		state.Items[i] = item

		return state, true
	}

	return state, false
}

// clampToStock caps prints with a finite stock count. Originals and
// unlimited prints pass through.
func clampToStock(product models.ProductSnapshot, quantity int) int {
	if product.ProductType != models.ProductTypePrint || !product.HasLimitedStock() {
		return quantity
	}

	return min(quantity, *product.StockQuantity)
}

func recompute(state models.Cart) models.Cart {
	totals := pricing.CartTotalsSimple(pricing.FromCartItems(state.Items), state.AppliedDiscount, state.FreeShipping, nil)

	state.Subtotal = totals.Subtotal
	state.ShippingCost = totals.ShippingCost
	state.ArtistLevy = totals.ArtistLevy
	state.DiscountAmount = totals.DiscountAmount
	state.Total = totals.Total

	return state
}

// Totals exposes the full pricing breakdown of a cart, including the levy
// lines that are not stored on the cart itself.
func Totals(state models.Cart, shippingOverride *int64) pricing.Totals {
	return pricing.CartTotalsSimple(pricing.FromCartItems(state.Items), state.AppliedDiscount, state.FreeShipping, shippingOverride)
}

// FindItem returns the line with the given composite key.
func FindItem(state models.Cart, productID uuid.UUID, size *models.SelectedSize) (models.CartItem, bool) {
	key := models.NewItemKey(productID, size)

	for _, item := range state.Items {
		if item.Key() == key {
			return item, true
		}
	}

	return models.CartItem{}, false
}
