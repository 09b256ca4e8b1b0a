// Package cart holds the shopping-cart domain: event variants, the pure
// state fold, and the command decision logic.
package cart

// Event type names as stored in the stream.
const (
	EventTypeCartOpened         = "shopping-cart-opened"
	EventTypeProductItemAdded   = "product-item-added-to-shopping-cart"
	EventTypeProductItemRemoved = "product-item-removed-from-shopping-cart"
	EventTypeCartConfirmed      = "shopping-cart-confirmed"
)

// Event is one immutable state transition of a shopping cart. Events are the
// only source of truth; state is always derived by folding them in order.
type Event interface {
	EventType() string
}

// ProductItem pairs a product with a quantity.
type ProductItem struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// CartOpened starts the cart lifecycle.
type CartOpened struct {
	ShoppingCartID string `json:"shoppingCartId"`
	ClientID       string `json:"clientId"`
}

func (CartOpened) EventType() string { return EventTypeCartOpened }

// ProductItemAdded records a quantity added for a product.
type ProductItemAdded struct {
	ShoppingCartID string      `json:"shoppingCartId"`
	ProductItem    ProductItem `json:"productItem"`
}

func (ProductItemAdded) EventType() string { return EventTypeProductItemAdded }

// ProductItemRemoved records a quantity removed for a product.
type ProductItemRemoved struct {
	ShoppingCartID string      `json:"shoppingCartId"`
	ProductItem    ProductItem `json:"productItem"`
}

func (ProductItemRemoved) EventType() string { return EventTypeProductItemRemoved }

// CartConfirmed closes the cart; no further events may follow it.
type CartConfirmed struct {
	ShoppingCartID string `json:"shoppingCartId"`
}

func (CartConfirmed) EventType() string { return EventTypeCartConfirmed }
