package details

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedDoc(t *testing.T, doc ShoppingCartDetails) []byte {
	t.Helper()
	b, err := json.Marshal(doc)
	require.NoError(t, err)
	return b
}

func TestNewerThanStored(t *testing.T) {
	stored := storedDoc(t, ShoppingCartDetails{ShoppingCartID: "cart-1", Status: "Opened", Revision: 3})

	assert.True(t, newerThanStored(stored, ShoppingCartDetails{ShoppingCartID: "cart-1", Revision: 4}))
	assert.False(t, newerThanStored(stored, ShoppingCartDetails{ShoppingCartID: "cart-1", Revision: 3}),
		"equal revisions must not rewrite the document")
	assert.False(t, newerThanStored(stored, ShoppingCartDetails{ShoppingCartID: "cart-1", Revision: 2}),
		"a stale writer must lose")
}

func TestNewerThanStoredReplacesGarbage(t *testing.T) {
	assert.True(t, newerThanStored([]byte("not json"), ShoppingCartDetails{ShoppingCartID: "cart-1", Revision: 0}))
}
