package eventstore

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory EventStore. The mutex makes the
// check-then-append of each stream atomic, so two concurrent appends racing
// on the same expected revision resolve to exactly one winner.
type MemoryStore struct {
	mu      sync.RWMutex
	streams map[string][]RecordedEvent
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{streams: make(map[string][]RecordedEvent)}
}

func currentRevision(stream []RecordedEvent) Revision {
	if len(stream) == 0 {
		return NoStream
	}
	return stream[len(stream)-1].Revision
}

// AppendToStream implements EventStore.
func (s *MemoryStore) AppendToStream(ctx context.Context, streamName string, expected Revision, events ...EventData) (Revision, error) {
	if err := ctx.Err(); err != nil {
		return NoStream, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[streamName]
	current := currentRevision(stream)
	if expected != current {
		return current, fmt.Errorf("%w: stream %s expected %d actual %d",
			ErrRevisionConflict, streamName, expected, current)
	}
	next := current
	for _, ev := range events {
		next++
		stream = append(stream, RecordedEvent{EventData: ev, Revision: next})
	}
	s.streams[streamName] = stream
	return next, nil
}

// ReadStream implements EventStore.
func (s *MemoryStore) ReadStream(ctx context.Context, streamName string) ([]RecordedEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	stream := s.streams[streamName]
	out := make([]RecordedEvent, len(stream))
	copy(out, stream)
	return out, nil
}

// StreamCount returns the number of streams held, for metrics.
func (s *MemoryStore) StreamCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.streams)
}
