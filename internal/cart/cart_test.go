package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/shopping-cart-service/internal/eventstore"
	"github.com/fairyhunter13/shopping-cart-service/internal/validate"
)

func mustMarshal(t *testing.T, events ...Event) []eventstore.RecordedEvent {
	t.Helper()
	out := make([]eventstore.RecordedEvent, 0, len(events))
	for i, e := range events {
		data, err := Marshal(e)
		require.NoError(t, err)
		out = append(out, eventstore.RecordedEvent{EventData: data, Revision: eventstore.Revision(i)})
	}
	return out
}

func openedHistory(t *testing.T, extra ...Event) []eventstore.RecordedEvent {
	t.Helper()
	events := append([]Event{CartOpened{ShoppingCartID: "cart-1", ClientID: "c1"}}, extra...)
	return mustMarshal(t, events...)
}

func TestOpenShoppingCart(t *testing.T) {
	data, err := OpenShoppingCart(OpenShoppingCartCommand{ShoppingCartID: "cart-1", ClientID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, EventTypeCartOpened, data.EventType)
}

func TestOpenShoppingCartEmptyClientID(t *testing.T) {
	_, err := OpenShoppingCart(OpenShoppingCartCommand{ShoppingCartID: "cart-1"})
	require.Error(t, err)
	assert.True(t, validate.IsValidationError(err))
}

func TestAddProductItemAccumulates(t *testing.T) {
	history := openedHistory(t,
		ProductItemAdded{ShoppingCartID: "cart-1", ProductItem: ProductItem{ProductID: "p1", Quantity: 2}},
		ProductItemAdded{ShoppingCartID: "cart-1", ProductItem: ProductItem{ProductID: "p1", Quantity: 3}},
	)
	s, err := Current(history)
	require.NoError(t, err)
	assert.Equal(t, StatusOpened, s.Status)
	assert.Equal(t, int64(5), s.Items["p1"])
}

func TestAddProductItemRequiresOpenCart(t *testing.T) {
	_, err := AddProductItemToShoppingCart(nil, AddProductItemCommand{
		ShoppingCartID: "cart-1",
		ProductItem:    ProductItem{ProductID: "p1", Quantity: 1},
	})
	require.Error(t, err)
	assert.True(t, IsInvalidStateError(err))
}

func TestAddProductItemRejectsNonPositiveQuantity(t *testing.T) {
	for _, qty := range []int64{0, -1} {
		_, err := AddProductItemToShoppingCart(openedHistory(t), AddProductItemCommand{
			ShoppingCartID: "cart-1",
			ProductItem:    ProductItem{ProductID: "p1", Quantity: qty},
		})
		require.Error(t, err)
		assert.True(t, validate.IsValidationError(err), "quantity %d", qty)
	}
}

func TestRemoveProductItem(t *testing.T) {
	history := openedHistory(t,
		ProductItemAdded{ShoppingCartID: "cart-1", ProductItem: ProductItem{ProductID: "p1", Quantity: 5}},
	)
	data, err := RemoveProductItemFromShoppingCart(history, RemoveProductItemCommand{
		ShoppingCartID: "cart-1",
		ProductItem:    ProductItem{ProductID: "p1", Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, EventTypeProductItemRemoved, data.EventType)
}

func TestRemoveMoreThanHeldFails(t *testing.T) {
	history := openedHistory(t,
		ProductItemAdded{ShoppingCartID: "cart-1", ProductItem: ProductItem{ProductID: "p1", Quantity: 2}},
	)
	_, err := RemoveProductItemFromShoppingCart(history, RemoveProductItemCommand{
		ShoppingCartID: "cart-1",
		ProductItem:    ProductItem{ProductID: "p1", Quantity: 3},
	})
	require.Error(t, err)
	assert.True(t, IsInvalidStateError(err))

	// The failed decision must not have touched the fold.
	s, err := Current(history)
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.Items["p1"])
}

func TestRemoveMissingProductFails(t *testing.T) {
	_, err := RemoveProductItemFromShoppingCart(openedHistory(t), RemoveProductItemCommand{
		ShoppingCartID: "cart-1",
		ProductItem:    ProductItem{ProductID: "ghost", Quantity: 1},
	})
	require.Error(t, err)
	assert.True(t, IsInvalidStateError(err))
}

func TestConfirmShoppingCart(t *testing.T) {
	data, err := ConfirmShoppingCart(openedHistory(t), ConfirmShoppingCartCommand{ShoppingCartID: "cart-1"})
	require.NoError(t, err)
	assert.Equal(t, EventTypeCartConfirmed, data.EventType)
}

func TestConfirmedCartRejectsAllCommands(t *testing.T) {
	history := openedHistory(t, CartConfirmed{ShoppingCartID: "cart-1"})

	_, err := AddProductItemToShoppingCart(history, AddProductItemCommand{
		ShoppingCartID: "cart-1",
		ProductItem:    ProductItem{ProductID: "p1", Quantity: 1},
	})
	assert.True(t, IsInvalidStateError(err))

	_, err = RemoveProductItemFromShoppingCart(history, RemoveProductItemCommand{
		ShoppingCartID: "cart-1",
		ProductItem:    ProductItem{ProductID: "p1", Quantity: 1},
	})
	assert.True(t, IsInvalidStateError(err))

	_, err = ConfirmShoppingCart(history, ConfirmShoppingCartCommand{ShoppingCartID: "cart-1"})
	assert.True(t, IsInvalidStateError(err))
}

func TestRemoveToZeroDropsEntry(t *testing.T) {
	history := openedHistory(t,
		ProductItemAdded{ShoppingCartID: "cart-1", ProductItem: ProductItem{ProductID: "p1", Quantity: 2}},
		ProductItemRemoved{ShoppingCartID: "cart-1", ProductItem: ProductItem{ProductID: "p1", Quantity: 2}},
	)
	s, err := Current(history)
	require.NoError(t, err)
	_, held := s.Items["p1"]
	assert.False(t, held, "zero-quantity entries must be removed")
}

func TestFoldIsIdempotent(t *testing.T) {
	history := openedHistory(t,
		ProductItemAdded{ShoppingCartID: "cart-1", ProductItem: ProductItem{ProductID: "p1", Quantity: 2}},
		ProductItemAdded{ShoppingCartID: "cart-1", ProductItem: ProductItem{ProductID: "p2", Quantity: 1}},
		ProductItemRemoved{ShoppingCartID: "cart-1", ProductItem: ProductItem{ProductID: "p1", Quantity: 1}},
		CartConfirmed{ShoppingCartID: "cart-1"},
	)
	first, err := Current(history)
	require.NoError(t, err)
	second, err := Current(history)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, StatusConfirmed, first.Status)
	assert.Equal(t, int64(1), first.Items["p1"])
}

func TestEvolveDoesNotMutateInput(t *testing.T) {
	s, err := Current(openedHistory(t,
		ProductItemAdded{ShoppingCartID: "cart-1", ProductItem: ProductItem{ProductID: "p1", Quantity: 2}},
	))
	require.NoError(t, err)
	_ = Evolve(s, ProductItemAdded{ShoppingCartID: "cart-1", ProductItem: ProductItem{ProductID: "p1", Quantity: 10}})
	assert.Equal(t, int64(2), s.Items["p1"], "evolve must not mutate the prior state")
}

func TestUnmarshalUnknownEventType(t *testing.T) {
	_, err := Unmarshal(eventstore.RecordedEvent{
		EventData: eventstore.EventData{EventType: "mystery", Data: []byte(`{}`)},
	})
	require.Error(t, err)
}

func TestStreamName(t *testing.T) {
	assert.Equal(t, "shopping_cart-abc", StreamName("abc"))
}
