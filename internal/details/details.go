// Package details holds the shopping-cart read-model document served by the
// query path. Documents carry the stream revision so reads can emit the
// same concurrency token the write path expects back.
package details

import (
	"context"
	"errors"
	"sort"

	"github.com/fairyhunter13/shopping-cart-service/internal/cart"
	"github.com/fairyhunter13/shopping-cart-service/internal/eventstore"
)

// ErrNotFound reports a missing document.
var ErrNotFound = errors.New("shopping cart details not found")

// ShoppingCartDetails is the materialized view of one cart.
type ShoppingCartDetails struct {
	ShoppingCartID string              `json:"shoppingCartId"`
	ClientID       string              `json:"clientId"`
	Status         string              `json:"status"`
	ProductItems   []cart.ProductItem  `json:"productItems"`
	Revision       eventstore.Revision `json:"revision"`
}

// Collection is the document store keyed by cart id.
type Collection interface {
	Get(ctx context.Context, shoppingCartID string) (ShoppingCartDetails, error)
	Upsert(ctx context.Context, doc ShoppingCartDetails) error
}

// FromState builds the document for a folded cart state at the given
// revision. Items are sorted so documents are stable across rebuilds.
func FromState(s cart.ShoppingCart, revision eventstore.Revision) ShoppingCartDetails {
	items := make([]cart.ProductItem, 0, len(s.Items))
	for productID, qty := range s.Items {
		items = append(items, cart.ProductItem{ProductID: productID, Quantity: qty})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	return ShoppingCartDetails{
		ShoppingCartID: s.ID,
		ClientID:       s.ClientID,
		Status:         string(s.Status),
		ProductItems:   items,
		Revision:       revision,
	}
}
