package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/shopping-cart-service/internal/cart"
	"github.com/fairyhunter13/shopping-cart-service/internal/eventstore"
)

func TestCreateThenUpdateRevisions(t *testing.T) {
	es := eventstore.NewMemoryStore()
	ctx := context.Background()
	streamName := cart.StreamName("cart-1")

	open := Create(es, cart.OpenShoppingCart)
	res, err := open(ctx, streamName, cart.OpenShoppingCartCommand{ShoppingCartID: "cart-1", ClientID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, eventstore.Revision(0), res.NextExpectedRevision)

	add := Update(es, cart.AddProductItemToShoppingCart)
	res, err = add(ctx, streamName, cart.AddProductItemCommand{
		ShoppingCartID: "cart-1",
		ProductItem:    cart.ProductItem{ProductID: "p1", Quantity: 2},
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, eventstore.Revision(1), res.NextExpectedRevision)

	res, err = add(ctx, streamName, cart.AddProductItemCommand{
		ShoppingCartID: "cart-1",
		ProductItem:    cart.ProductItem{ProductID: "p1", Quantity: 3},
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, eventstore.Revision(2), res.NextExpectedRevision)

	history, err := es.ReadStream(ctx, streamName)
	require.NoError(t, err)
	state, err := cart.Current(history)
	require.NoError(t, err)
	assert.Equal(t, int64(5), state.Items["p1"])
}

func TestCreateOnExistingStreamConflicts(t *testing.T) {
	es := eventstore.NewMemoryStore()
	ctx := context.Background()
	streamName := cart.StreamName("cart-2")

	open := Create(es, cart.OpenShoppingCart)
	_, err := open(ctx, streamName, cart.OpenShoppingCartCommand{ShoppingCartID: "cart-2", ClientID: "c1"})
	require.NoError(t, err)

	_, err = open(ctx, streamName, cart.OpenShoppingCartCommand{ShoppingCartID: "cart-2", ClientID: "c1"})
	assert.ErrorIs(t, err, eventstore.ErrRevisionConflict)
}

func TestUpdateWithStaleRevisionConflicts(t *testing.T) {
	es := eventstore.NewMemoryStore()
	ctx := context.Background()
	streamName := cart.StreamName("cart-3")

	open := Create(es, cart.OpenShoppingCart)
	_, err := open(ctx, streamName, cart.OpenShoppingCartCommand{ShoppingCartID: "cart-3", ClientID: "c1"})
	require.NoError(t, err)

	add := Update(es, cart.AddProductItemToShoppingCart)
	_, err = add(ctx, streamName, cart.AddProductItemCommand{
		ShoppingCartID: "cart-3",
		ProductItem:    cart.ProductItem{ProductID: "p1", Quantity: 1},
	}, 0)
	require.NoError(t, err)

	// Revision 0 is stale after the successful add.
	_, err = add(ctx, streamName, cart.AddProductItemCommand{
		ShoppingCartID: "cart-3",
		ProductItem:    cart.ProductItem{ProductID: "p1", Quantity: 1},
	}, 0)
	assert.ErrorIs(t, err, eventstore.ErrRevisionConflict)

	history, err := es.ReadStream(ctx, streamName)
	require.NoError(t, err)
	assert.Len(t, history, 2, "conflicting update must not append")
}

func TestDecisionFailureAppendsNothing(t *testing.T) {
	es := eventstore.NewMemoryStore()
	ctx := context.Background()
	streamName := cart.StreamName("cart-4")

	open := Create(es, cart.OpenShoppingCart)
	_, err := open(ctx, streamName, cart.OpenShoppingCartCommand{ShoppingCartID: "cart-4", ClientID: "c1"})
	require.NoError(t, err)

	remove := Update(es, cart.RemoveProductItemFromShoppingCart)
	_, err = remove(ctx, streamName, cart.RemoveProductItemCommand{
		ShoppingCartID: "cart-4",
		ProductItem:    cart.ProductItem{ProductID: "p1", Quantity: 1},
	}, 0)
	require.Error(t, err)
	assert.True(t, cart.IsInvalidStateError(err))

	history, err := es.ReadStream(ctx, streamName)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestStaleUpdateOnConfirmedStreamIsConflict(t *testing.T) {
	es := eventstore.NewMemoryStore()
	ctx := context.Background()
	streamName := cart.StreamName("cart-5")

	open := Create(es, cart.OpenShoppingCart)
	_, err := open(ctx, streamName, cart.OpenShoppingCartCommand{ShoppingCartID: "cart-5", ClientID: "c1"})
	require.NoError(t, err)

	confirm := Update(es, cart.ConfirmShoppingCart)
	res, err := confirm(ctx, streamName, cart.ConfirmShoppingCartCommand{ShoppingCartID: "cart-5"}, 0)
	require.NoError(t, err)
	assert.Equal(t, eventstore.Revision(1), res.NextExpectedRevision)

	// The stale token is reported as a conflict, not as an invalid-state
	// failure of the already-confirmed cart.
	add := Update(es, cart.AddProductItemToShoppingCart)
	_, err = add(ctx, streamName, cart.AddProductItemCommand{
		ShoppingCartID: "cart-5",
		ProductItem:    cart.ProductItem{ProductID: "p1", Quantity: 1},
	}, 0)
	assert.ErrorIs(t, err, eventstore.ErrRevisionConflict)
}

func TestUpdateSurfacesDeciderErrorUnchanged(t *testing.T) {
	es := eventstore.NewMemoryStore()
	sentinel := errors.New("boom")
	fail := Update(es, func([]eventstore.RecordedEvent, struct{}) (eventstore.EventData, error) {
		return eventstore.EventData{}, sentinel
	})
	_, err := fail(context.Background(), "stream", struct{}{}, eventstore.NoStream)
	assert.ErrorIs(t, err, sentinel)
}
