// Package inventory implements the request/reply client for the external
// inventory service, layered on the broker gateway.
package inventory

import (
	"encoding/json"
	"fmt"
)

// Message kinds exchanged with the inventory service.
const (
	MessageProductIDCheck        = "PRODUCT_ID_CHECK"
	MessageProductIDCheckReply   = "PRODUCT_ID_CHECK_REPLY"
	MessageCartConfirmation      = "CART_CONFIRMATION"
	MessageCartConfirmationReply = "CART_CONFIRMATION_REPLY"
)

// Envelope is the wire shape of every message: a kind tag plus a
// kind-specific payload. Correlation id and reply queue travel as message
// properties, not in the body.
type Envelope struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// ProductIDCheck asks whether a product exists and how much is on hand.
type ProductIDCheck struct {
	ProductID string `json:"productId"`
}

// ProductIDCheckReply answers a ProductIDCheck. Result false means the
// product is unknown to inventory.
type ProductIDCheckReply struct {
	ProductID string `json:"productId"`
	Result    bool   `json:"result"`
	Quantity  int64  `json:"quantity"`
}

// ConfirmationItem is one cart line presented for confirmation.
type ConfirmationItem struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// CartConfirmation asks inventory to confirm a cart's items.
type CartConfirmation struct {
	ShoppingCartID string             `json:"shoppingCartId"`
	ProductItems   []ConfirmationItem `json:"productItems"`
}

// CartConfirmationReply answers a CartConfirmation.
type CartConfirmationReply struct {
	ShoppingCartID string `json:"shoppingCartId"`
	Confirmed      bool   `json:"confirmed"`
}

func newEnvelope(name string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s: %w", name, err)
	}
	return Envelope{Name: name, Data: data}, nil
}

func decodePayload(env Envelope, wantName string, into any) error {
	if env.Name != wantName {
		return fmt.Errorf("unexpected message kind %q, want %q", env.Name, wantName)
	}
	if err := json.Unmarshal(env.Data, into); err != nil {
		return fmt.Errorf("decode %s payload: %w", env.Name, err)
	}
	return nil
}
