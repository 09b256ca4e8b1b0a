package broker

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpChannel adapts an AMQP 0.9.1 channel to the Channel interface.
type amqpChannel struct {
	ch *amqp.Channel

	mu    sync.Mutex
	stops map[string]chan struct{}
}

// Dial returns a Dialer that connects to a RabbitMQ broker at url and opens
// one channel on the connection.
func Dial(url string) Dialer {
	return func() (Channel, error) {
		conn, err := amqp.Dial(url)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", url, err)
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("open channel: %w", err)
		}
		return &amqpChannel{ch: ch}, nil
	}
}

func (a *amqpChannel) ExchangeDeclare(name, kind string, durable bool) error {
	return a.ch.ExchangeDeclare(name, kind, durable, false, false, false, nil)
}

func (a *amqpChannel) QueueDeclare(name string, durable, exclusive bool) (Queue, error) {
	q, err := a.ch.QueueDeclare(name, durable, false, exclusive, false, nil)
	if err != nil {
		return Queue{}, err
	}
	return Queue{Name: q.Name}, nil
}

func (a *amqpChannel) QueueBind(queue, exchange, routingKey string) error {
	return a.ch.QueueBind(queue, routingKey, exchange, false, nil)
}

func (a *amqpChannel) QueueDelete(queue string) error {
	_, err := a.ch.QueueDelete(queue, false, false, false)
	return err
}

func (a *amqpChannel) Consume(queue, consumer string) (<-chan Delivery, error) {
	deliveries, err := a.ch.Consume(queue, consumer, true, false, false, false, nil)
	if err != nil {
		return nil, err
	}
	stop := make(chan struct{})
	a.mu.Lock()
	if a.stops == nil {
		a.stops = make(map[string]chan struct{})
	}
	a.stops[consumer] = stop
	a.mu.Unlock()

	out := make(chan Delivery)
	go forwardDeliveries(deliveries, out, stop)
	return out, nil
}

// forwardDeliveries copies broker deliveries onto out until the source
// closes or stop fires. The stop case matters when the consumer has been
// abandoned: with no receiver left on out, a bare send would park this
// goroutine forever even after the source channel closes.
func forwardDeliveries(in <-chan amqp.Delivery, out chan<- Delivery, stop <-chan struct{}) {
	defer close(out)
	for d := range in {
		select {
		case out <- Delivery{
			CorrelationID: d.CorrelationId,
			ReplyTo:       d.ReplyTo,
			RoutingKey:    d.RoutingKey,
			Body:          d.Body,
		}:
		case <-stop:
			return
		}
	}
}

func (a *amqpChannel) Cancel(consumer string) error {
	a.mu.Lock()
	if stop, ok := a.stops[consumer]; ok {
		close(stop)
		delete(a.stops, consumer)
	}
	a.mu.Unlock()
	return a.ch.Cancel(consumer, false)
}

func (a *amqpChannel) Publish(ctx context.Context, exchange, routingKey string, p Publishing) error {
	return a.ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:   p.ContentType,
		CorrelationId: p.CorrelationID,
		ReplyTo:       p.ReplyTo,
		Body:          p.Body,
	})
}
