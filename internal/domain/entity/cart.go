package entity

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CartProduct is the product projection embedded in a cart line.
type CartProduct struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	PrimaryImage string          `json:"primaryImage,omitempty"`
}

// CartItem is one line of a cart.
type CartItem struct {
	ItemID   string      `json:"itemId"`
	Product  CartProduct `json:"product"`
	Quantity int         `json:"quantity"`
}

// Subtotal is price times quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart holds the caller's items. The item count is always derived from Items.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Count is the sum of item quantities.
func (c Cart) Count() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}

	return total
}

// Subtotal sums line subtotals with client-side prices. Server totals come from CartSummary.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}

	return total
}

// Find returns the line holding productID.
func (c Cart) Find(productID string) (CartItem, bool) {
	for _, item := range c.Items {
		if item.Product.ID == productID {
			return item, true
		}
	}

	return CartItem{}, false
}

// Merge returns a copy of the cart with item added. A line for the same product
// has its quantity increased instead. The receiver is never modified.
func (c Cart) Merge(item CartItem) Cart {
	items := make([]CartItem, 0, len(c.Items)+1)
	merged := false
	for _, existing := range c.Items {
		if existing.Product.ID == item.Product.ID {
			existing.Quantity += item.Quantity
			merged = true
		}
		items = append(items, existing)
	}
	if !merged {
		items = append(items, item)
	}

	return Cart{Items: items}
}

// View returns the denormalized projection kept in the session store.
func (c Cart) View() CartView {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)

	return CartView{Items: items, Count: c.Count()}
}

// MarshalJSON adds the derived count.
func (c Cart) MarshalJSON() ([]byte, error) {
	items := c.Items
	if items == nil {
		items = []CartItem{}
	}

	return json.Marshal(struct {
		Items []CartItem `json:"items"`
		Count int        `json:"count"`
	}{Items: items, Count: c.Count()})
}

// CartView is the cart copy rendered straight from the session store.
type CartView struct {
	Items []CartItem `json:"items"`
	Count int        `json:"count"`
}

// CartSummary is the server-computed price breakdown for a cart and coupon set.
type CartSummary struct {
	Total       decimal.Decimal `json:"total"`
	Discount    decimal.Decimal `json:"discount"`
	FinalAmount decimal.Decimal `json:"finalAmount"`
}
