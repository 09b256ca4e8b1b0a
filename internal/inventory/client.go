package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fairyhunter13/shopping-cart-service/internal/broker"
	"github.com/fairyhunter13/shopping-cart-service/internal/obs"
)

// ErrProductNotFound reports a product unknown to the inventory service.
var ErrProductNotFound = errors.New("product not found in inventory")

// ErrConfirmationRejected reports that inventory declined to confirm a cart.
var ErrConfirmationRejected = errors.New("cart confirmation rejected by inventory")

// Client emulates synchronous RPC over the asynchronous broker. Every call
// gets a fresh correlation id and its own exclusive reply queue, so replies
// for other in-flight calls can never resolve this one. The client imposes
// no deadline of its own; a call blocks until a matching reply arrives or
// the caller's context ends.
type Client struct {
	gateway    *broker.Gateway
	exchange   string
	routingKey string
}

// NewClient builds a Client publishing to exchange under routingKey.
func NewClient(gateway *broker.Gateway, exchange, routingKey string) *Client {
	return &Client{gateway: gateway, exchange: exchange, routingKey: routingKey}
}

// replyRoutingKey is the well-known key reply queues bind under.
func (c *Client) replyRoutingKey() string {
	return c.routingKey + ".reply"
}

// call publishes a request envelope and waits for the correlated reply.
func (c *Client) call(ctx context.Context, req Envelope) (Envelope, error) {
	ch, err := c.gateway.Channel()
	if err != nil {
		return Envelope{}, err
	}
	if err := ch.ExchangeDeclare(c.exchange, "direct", true); err != nil {
		return Envelope{}, fmt.Errorf("%w: declare exchange: %v", broker.ErrBrokerUnavailable, err)
	}

	correlationID := uuid.NewString()

	q, err := ch.QueueDeclare("", false, true)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: declare reply queue: %v", broker.ErrBrokerUnavailable, err)
	}
	defer func() {
		_ = ch.Cancel(correlationID)
		_ = ch.QueueDelete(q.Name)
	}()

	if err := ch.QueueBind(q.Name, c.exchange, c.replyRoutingKey()); err != nil {
		return Envelope{}, fmt.Errorf("%w: bind reply queue: %v", broker.ErrBrokerUnavailable, err)
	}
	deliveries, err := ch.Consume(q.Name, correlationID)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: consume reply queue: %v", broker.ErrBrokerUnavailable, err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal request: %w", err)
	}
	pub := broker.Publishing{
		ContentType:   "application/json",
		CorrelationID: correlationID,
		ReplyTo:       q.Name,
		Body:          body,
	}
	if err := ch.Publish(ctx, c.exchange, c.routingKey, pub); err != nil {
		return Envelope{}, fmt.Errorf("%w: publish: %v", broker.ErrBrokerUnavailable, err)
	}

	for {
		select {
		case <-ctx.Done():
			return Envelope{}, ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return Envelope{}, fmt.Errorf("%w: reply channel closed", broker.ErrBrokerUnavailable)
			}
			if d.CorrelationID != correlationID {
				// A reply for some other in-flight request; not ours.
				continue
			}
			var env Envelope
			if err := json.Unmarshal(d.Body, &env); err != nil {
				return Envelope{}, fmt.Errorf("decode reply: %w", err)
			}
			return env, nil
		}
	}
}

// RequestQuantityCheck asks inventory how much of a product is on hand.
// A negative result maps to ErrProductNotFound.
func (c *Client) RequestQuantityCheck(ctx context.Context, productID string) (int64, error) {
	req, err := newEnvelope(MessageProductIDCheck, ProductIDCheck{ProductID: productID})
	if err != nil {
		return 0, err
	}
	env, err := c.call(ctx, req)
	if err != nil {
		return 0, err
	}
	var reply ProductIDCheckReply
	if err := decodePayload(env, MessageProductIDCheckReply, &reply); err != nil {
		return 0, err
	}
	if !reply.Result {
		return 0, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	obs.Logger.Info("inventory_quantity_check",
		"product_id", reply.ProductID,
		"quantity", reply.Quantity,
	)
	return reply.Quantity, nil
}

// AssertProductIDExists fails with ErrProductNotFound when inventory does
// not know the product.
func (c *Client) AssertProductIDExists(ctx context.Context, productID string) error {
	_, err := c.RequestQuantityCheck(ctx, productID)
	return err
}

// ConfirmCart presents a cart's items to inventory for confirmation.
func (c *Client) ConfirmCart(ctx context.Context, shoppingCartID string, items []ConfirmationItem) error {
	req, err := newEnvelope(MessageCartConfirmation, CartConfirmation{
		ShoppingCartID: shoppingCartID,
		ProductItems:   items,
	})
	if err != nil {
		return err
	}
	env, err := c.call(ctx, req)
	if err != nil {
		return err
	}
	var reply CartConfirmationReply
	if err := decodePayload(env, MessageCartConfirmationReply, &reply); err != nil {
		return err
	}
	if !reply.Confirmed {
		return fmt.Errorf("%w: cart %s", ErrConfirmationRejected, shoppingCartID)
	}
	return nil
}
