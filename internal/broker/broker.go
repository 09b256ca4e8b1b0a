// Package broker owns the message-broker channel lifecycle and the
// capability interface the rest of the service publishes and consumes
// through.
package broker

import (
	"context"
	"errors"
)

// ErrBrokerUnavailable reports a connection or channel failure. It is fatal
// for the pending operation; a higher layer decides whether to re-establish
// the gateway.
var ErrBrokerUnavailable = errors.New("message broker unavailable")

// Queue identifies a declared queue.
type Queue struct {
	Name string
}

// Publishing is an outbound message with its broker-level properties.
type Publishing struct {
	ContentType   string
	CorrelationID string
	ReplyTo       string
	Body          []byte
}

// Delivery is an inbound message received from a consumed queue.
type Delivery struct {
	CorrelationID string
	ReplyTo       string
	RoutingKey    string
	Body          []byte
}

// Channel is the capability interface over one broker channel. Both the
// AMQP implementation and the in-memory broker satisfy it.
type Channel interface {
	// ExchangeDeclare asserts a named exchange of the given kind.
	ExchangeDeclare(name, kind string, durable bool) error

	// QueueDeclare asserts a queue. An empty name requests a broker-named
	// queue; exclusive queues live and die with this channel.
	QueueDeclare(name string, durable, exclusive bool) (Queue, error)

	// QueueBind routes messages published to exchange under routingKey into
	// the queue.
	QueueBind(queue, exchange, routingKey string) error

	// QueueDelete removes a queue and ends its consumers.
	QueueDelete(queue string) error

	// Consume starts delivering messages from queue on the returned channel.
	// The consumer tag names the subscription for Cancel.
	Consume(queue, consumer string) (<-chan Delivery, error)

	// Cancel stops the named consumer and closes its delivery channel.
	Cancel(consumer string) error

	// Publish sends a message to exchange under routingKey.
	Publish(ctx context.Context, exchange, routingKey string, p Publishing) error
}
