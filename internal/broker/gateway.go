package broker

import (
	"fmt"
	"sync"

	"github.com/fairyhunter13/shopping-cart-service/internal/obs"
)

// Dialer opens a new broker channel.
type Dialer func() (Channel, error)

// Gateway lazily creates one shared channel on first use and caches it for
// the process lifetime. Concurrent first callers block on the same in-flight
// dial rather than racing separate connections; exactly one channel is ever
// constructed while the cached one remains healthy.
type Gateway struct {
	dial Dialer

	mu sync.Mutex
	ch Channel
}

// NewGateway builds a Gateway around the given dialer. Nothing is dialed
// until the first Channel call.
func NewGateway(dial Dialer) *Gateway {
	return &Gateway{dial: dial}
}

// Channel returns the shared channel, dialing it on first use.
func (g *Gateway) Channel() (Channel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ch != nil {
		return g.ch, nil
	}
	ch, err := g.dial()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}
	g.ch = ch
	obs.Logger.Info("broker_channel_opened")
	return ch, nil
}

// Reset drops the cached channel so the next Channel call dials again. Used
// by callers that observed a channel failure.
func (g *Gateway) Reset() {
	g.mu.Lock()
	g.ch = nil
	g.mu.Unlock()
	obs.Logger.Warn("broker_channel_reset")
}
