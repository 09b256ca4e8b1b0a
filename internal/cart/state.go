package cart

import (
	"github.com/fairyhunter13/shopping-cart-service/internal/eventstore"
)

// Status is the lifecycle phase of a shopping cart.
type Status string

const (
	// StatusOpened allows item mutations and confirmation.
	StatusOpened Status = "Opened"
	// StatusConfirmed is terminal; no command is permitted afterwards.
	StatusConfirmed Status = "Confirmed"
)

// ShoppingCart is the aggregate state folded from a stream's events. The
// zero value represents a cart whose stream has no events yet.
type ShoppingCart struct {
	ID       string
	ClientID string
	Status   Status
	Items    map[string]int64
}

// Evolve applies one event to the state and returns the new state. It is
// pure and total over all event variants; folding a stream in append order
// always yields the same state.
func Evolve(s ShoppingCart, e Event) ShoppingCart {
	switch ev := e.(type) {
	case CartOpened:
		return ShoppingCart{
			ID:       ev.ShoppingCartID,
			ClientID: ev.ClientID,
			Status:   StatusOpened,
			Items:    map[string]int64{},
		}
	case ProductItemAdded:
		items := cloneItems(s.Items)
		items[ev.ProductItem.ProductID] += ev.ProductItem.Quantity
		s.Items = items
		return s
	case ProductItemRemoved:
		items := cloneItems(s.Items)
		left := items[ev.ProductItem.ProductID] - ev.ProductItem.Quantity
		if left > 0 {
			items[ev.ProductItem.ProductID] = left
		} else {
			delete(items, ev.ProductItem.ProductID)
		}
		s.Items = items
		return s
	case CartConfirmed:
		s.Status = StatusConfirmed
		return s
	default:
		return s
	}
}

func cloneItems(items map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(items))
	for k, v := range items {
		out[k] = v
	}
	return out
}

// Current folds a stream's recorded events into the aggregate state.
func Current(history []eventstore.RecordedEvent) (ShoppingCart, error) {
	var s ShoppingCart
	for _, re := range history {
		e, err := Unmarshal(re)
		if err != nil {
			return ShoppingCart{}, err
		}
		s = Evolve(s, e)
	}
	return s, nil
}
