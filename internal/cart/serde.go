package cart

import (
	"encoding/json"
	"fmt"

	"github.com/fairyhunter13/shopping-cart-service/internal/eventstore"
)

// Marshal serializes a domain event for appending to a stream.
func Marshal(e Event) (eventstore.EventData, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return eventstore.EventData{}, fmt.Errorf("marshal %s: %w", e.EventType(), err)
	}
	return eventstore.EventData{EventType: e.EventType(), Data: data}, nil
}

// Unmarshal decodes a recorded event back into its domain variant. Unknown
// event types are an error so schema drift surfaces instead of being folded
// silently.
func Unmarshal(re eventstore.RecordedEvent) (Event, error) {
	switch re.EventType {
	case EventTypeCartOpened:
		var e CartOpened
		if err := json.Unmarshal(re.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", re.EventType, err)
		}
		return e, nil
	case EventTypeProductItemAdded:
		var e ProductItemAdded
		if err := json.Unmarshal(re.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", re.EventType, err)
		}
		return e, nil
	case EventTypeProductItemRemoved:
		var e ProductItemRemoved
		if err := json.Unmarshal(re.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", re.EventType, err)
		}
		return e, nil
	case EventTypeCartConfirmed:
		var e CartConfirmed
		if err := json.Unmarshal(re.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", re.EventType, err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", re.EventType)
	}
}
