package cart

import (
	"github.com/fairyhunter13/shopping-cart-service/internal/eventstore"
	"github.com/fairyhunter13/shopping-cart-service/internal/validate"
)

// StreamName derives the event stream name for a cart id. The mapping is
// deterministic so commands and reads always address the same stream.
func StreamName(shoppingCartID string) string {
	return "shopping_cart-" + shoppingCartID
}

// OpenShoppingCartCommand opens a new cart for a client.
type OpenShoppingCartCommand struct {
	ShoppingCartID string
	ClientID       string
}

// AddProductItemCommand adds a quantity of one product.
type AddProductItemCommand struct {
	ShoppingCartID string
	ProductItem    ProductItem
}

// RemoveProductItemCommand removes a quantity of one product.
type RemoveProductItemCommand struct {
	ShoppingCartID string
	ProductItem    ProductItem
}

// ConfirmShoppingCartCommand confirms the cart, closing its lifecycle.
type ConfirmShoppingCartCommand struct {
	ShoppingCartID string
}

func decideOpen(cmd OpenShoppingCartCommand) (Event, error) {
	if err := validate.AssertNotEmptyString(cmd.ShoppingCartID); err != nil {
		return nil, err
	}
	if err := validate.AssertNotEmptyString(cmd.ClientID); err != nil {
		return nil, err
	}
	return CartOpened{ShoppingCartID: cmd.ShoppingCartID, ClientID: cmd.ClientID}, nil
}

func decideAddProductItem(s ShoppingCart, cmd AddProductItemCommand) (Event, error) {
	if err := validate.AssertPositiveQuantity(cmd.ProductItem.Quantity); err != nil {
		return nil, err
	}
	if s.Status != StatusOpened {
		return nil, newInvalidStateError(reasonNotOpened(s))
	}
	return ProductItemAdded{ShoppingCartID: cmd.ShoppingCartID, ProductItem: cmd.ProductItem}, nil
}

func decideRemoveProductItem(s ShoppingCart, cmd RemoveProductItemCommand) (Event, error) {
	if err := validate.AssertPositiveQuantity(cmd.ProductItem.Quantity); err != nil {
		return nil, err
	}
	if s.Status != StatusOpened {
		return nil, newInvalidStateError(reasonNotOpened(s))
	}
	if s.Items[cmd.ProductItem.ProductID] < cmd.ProductItem.Quantity {
		return nil, newInvalidStateError(ReasonNotEnoughProductItems)
	}
	return ProductItemRemoved{ShoppingCartID: cmd.ShoppingCartID, ProductItem: cmd.ProductItem}, nil
}

func decideConfirm(s ShoppingCart, cmd ConfirmShoppingCartCommand) (Event, error) {
	if s.Status != StatusOpened {
		return nil, newInvalidStateError(reasonNotOpened(s))
	}
	return CartConfirmed{ShoppingCartID: cmd.ShoppingCartID}, nil
}

func reasonNotOpened(s ShoppingCart) string {
	if s.Status == StatusConfirmed {
		return ReasonCartAlreadyConfirmed
	}
	return ReasonCartNotOpened
}

// OpenShoppingCart is the create-flow decider: it runs against an empty
// stream and yields the serialized opening event.
func OpenShoppingCart(cmd OpenShoppingCartCommand) (eventstore.EventData, error) {
	e, err := decideOpen(cmd)
	if err != nil {
		return eventstore.EventData{}, err
	}
	return Marshal(e)
}

// AddProductItemToShoppingCart folds the stream history and decides whether
// the product item may be added.
func AddProductItemToShoppingCart(history []eventstore.RecordedEvent, cmd AddProductItemCommand) (eventstore.EventData, error) {
	s, err := Current(history)
	if err != nil {
		return eventstore.EventData{}, err
	}
	e, err := decideAddProductItem(s, cmd)
	if err != nil {
		return eventstore.EventData{}, err
	}
	return Marshal(e)
}

// RemoveProductItemFromShoppingCart folds the stream history and decides
// whether the product item may be removed.
func RemoveProductItemFromShoppingCart(history []eventstore.RecordedEvent, cmd RemoveProductItemCommand) (eventstore.EventData, error) {
	s, err := Current(history)
	if err != nil {
		return eventstore.EventData{}, err
	}
	e, err := decideRemoveProductItem(s, cmd)
	if err != nil {
		return eventstore.EventData{}, err
	}
	return Marshal(e)
}

// ConfirmShoppingCart folds the stream history and decides whether the cart
// may be confirmed.
func ConfirmShoppingCart(history []eventstore.RecordedEvent, cmd ConfirmShoppingCartCommand) (eventstore.EventData, error) {
	s, err := Current(history)
	if err != nil {
		return eventstore.EventData{}, err
	}
	e, err := decideConfirm(s, cmd)
	if err != nil {
		return eventstore.EventData{}, err
	}
	return Marshal(e)
}
