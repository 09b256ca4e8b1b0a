package broker

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

const consumerBuffer = 64

type memoryConsumer struct {
	tag    string
	queue  string
	out    chan Delivery
	closed bool
}

type memoryQueue struct {
	backlog   []Delivery
	consumers []*memoryConsumer
}

// MemoryBroker is an in-process Channel implementation with direct-exchange
// routing. It backs tests and broker-less local runs. Messages published to
// a binding without capacity stay in the queue backlog and are flushed when
// a consumer drains.
type MemoryBroker struct {
	mu        sync.Mutex
	bindings  map[string]map[string][]string // exchange -> routing key -> queue names
	queues    map[string]*memoryQueue
	consumers map[string]*memoryConsumer
}

// NewMemoryBroker creates an empty MemoryBroker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		bindings:  make(map[string]map[string][]string),
		queues:    make(map[string]*memoryQueue),
		consumers: make(map[string]*memoryConsumer),
	}
}

// Dialer returns a Dialer handing out this broker as the shared channel.
func (b *MemoryBroker) Dialer() Dialer {
	return func() (Channel, error) { return b, nil }
}

func (b *MemoryBroker) ExchangeDeclare(name, kind string, durable bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.bindings[name]; !ok {
		b.bindings[name] = make(map[string][]string)
	}
	return nil
}

func (b *MemoryBroker) QueueDeclare(name string, durable, exclusive bool) (Queue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if name == "" {
		name = "amq.gen-" + uuid.NewString()
	}
	if _, ok := b.queues[name]; !ok {
		b.queues[name] = &memoryQueue{}
	}
	return Queue{Name: name}, nil
}

func (b *MemoryBroker) QueueBind(queue, exchange, routingKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys, ok := b.bindings[exchange]
	if !ok {
		return fmt.Errorf("exchange %q not declared", exchange)
	}
	if _, ok := b.queues[queue]; !ok {
		return fmt.Errorf("queue %q not declared", queue)
	}
	for _, q := range keys[routingKey] {
		if q == queue {
			return nil
		}
	}
	keys[routingKey] = append(keys[routingKey], queue)
	return nil
}

func (b *MemoryBroker) QueueDelete(queue string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[queue]
	if !ok {
		return nil
	}
	for _, c := range q.consumers {
		b.closeConsumerLocked(c)
	}
	delete(b.queues, queue)
	for _, keys := range b.bindings {
		for key, qs := range keys {
			keys[key] = removeString(qs, queue)
		}
	}
	return nil
}

func (b *MemoryBroker) Consume(queue, consumer string) (<-chan Delivery, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[queue]
	if !ok {
		return nil, fmt.Errorf("queue %q not declared", queue)
	}
	if _, ok := b.consumers[consumer]; ok {
		return nil, fmt.Errorf("consumer tag %q already in use", consumer)
	}
	c := &memoryConsumer{tag: consumer, queue: queue, out: make(chan Delivery, consumerBuffer)}
	q.consumers = append(q.consumers, c)
	b.consumers[consumer] = c
	b.flushLocked(q)
	return c.out, nil
}

func (b *MemoryBroker) Cancel(consumer string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.consumers[consumer]
	if !ok {
		return nil
	}
	b.closeConsumerLocked(c)
	return nil
}

func (b *MemoryBroker) Publish(ctx context.Context, exchange, routingKey string, p Publishing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	keys, ok := b.bindings[exchange]
	if !ok {
		return fmt.Errorf("exchange %q not declared", exchange)
	}
	d := Delivery{
		CorrelationID: p.CorrelationID,
		ReplyTo:       p.ReplyTo,
		RoutingKey:    routingKey,
		Body:          p.Body,
	}
	// Direct-exchange semantics: every queue bound under the exact routing
	// key gets a copy; an unbound key drops the message.
	for _, queueName := range keys[routingKey] {
		q, ok := b.queues[queueName]
		if !ok {
			continue
		}
		q.backlog = append(q.backlog, d)
		b.flushLocked(q)
	}
	return nil
}

// flushLocked moves backlog items into consumer buffers until either drains.
func (b *MemoryBroker) flushLocked(q *memoryQueue) {
	for len(q.backlog) > 0 {
		c := q.liveConsumer()
		if c == nil {
			return
		}
		select {
		case c.out <- q.backlog[0]:
			q.backlog = q.backlog[1:]
		default:
			return
		}
	}
}

func (q *memoryQueue) liveConsumer() *memoryConsumer {
	for _, c := range q.consumers {
		if !c.closed {
			return c
		}
	}
	return nil
}

func (b *MemoryBroker) closeConsumerLocked(c *memoryConsumer) {
	if c.closed {
		return
	}
	c.closed = true
	close(c.out)
	delete(b.consumers, c.tag)
	if q, ok := b.queues[c.queue]; ok {
		live := q.consumers[:0]
		for _, qc := range q.consumers {
			if qc != c {
				live = append(live, qc)
			}
		}
		q.consumers = live
	}
}

func removeString(in []string, s string) []string {
	out := in[:0]
	for _, v := range in {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
