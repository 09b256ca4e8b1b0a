package broker

import (
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardDeliveriesCopiesProperties(t *testing.T) {
	in := make(chan amqp.Delivery, 1)
	out := make(chan Delivery)
	stop := make(chan struct{})
	in <- amqp.Delivery{
		CorrelationId: "corr-1",
		ReplyTo:       "reply-q",
		RoutingKey:    "key",
		Body:          []byte("hello"),
	}
	close(in)
	go forwardDeliveries(in, out, stop)

	d, ok := <-out
	require.True(t, ok)
	assert.Equal(t, "corr-1", d.CorrelationID)
	assert.Equal(t, "reply-q", d.ReplyTo)
	assert.Equal(t, "key", d.RoutingKey)
	assert.Equal(t, "hello", string(d.Body))

	_, ok = <-out
	assert.False(t, ok, "out must close when the source closes")
}

func TestForwardDeliveriesStopsWithoutReceiver(t *testing.T) {
	in := make(chan amqp.Delivery, 1)
	out := make(chan Delivery)
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		forwardDeliveries(in, out, stop)
		close(done)
	}()

	// A delivery arrives after the caller abandoned the reply wait, so
	// nothing ever receives on out. Cancelling must still end the forwarder.
	in <- amqp.Delivery{Body: []byte("late")}
	close(stop)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forwarder still parked after the consumer was cancelled")
	}
}
