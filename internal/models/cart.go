package models

import "github.com/shopspring/decimal"

// MaxLineQuantity bounds the quantity of a single cart or order line.
const MaxLineQuantity = 10000

type CartItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// Subtotal uses the product's current price; cart totals are not frozen
// until the cart is converted into an order.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	CartID int64           `json:"cart_id,omitempty"`
	UserID int64           `json:"user_id"`
	Items  []CartItem      `json:"items"`
	Total  decimal.Decimal `json:"total"`
}

func NewCart(cartID, userID int64, items []CartItem) *Cart {
	if items == nil {
		items = []CartItem{}
	}
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return &Cart{CartID: cartID, UserID: userID, Items: items, Total: total}
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}
