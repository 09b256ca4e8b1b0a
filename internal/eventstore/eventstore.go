// Package eventstore defines the append-only, revision-checked event log
// consumed by the command handlers, plus an in-memory implementation.
package eventstore

import (
	"context"
	"errors"
)

// Revision is the integer position of the last event appended to a stream.
// It doubles as the optimistic-concurrency version.
type Revision int64

// NoStream is the expected revision for a stream that has no events yet.
const NoStream Revision = -1

// ErrRevisionConflict is returned by AppendToStream when the expected
// revision does not match the stream's actual revision. The append is
// rejected as a whole; callers may re-read and retry.
var ErrRevisionConflict = errors.New("expected revision does not match current stream revision")

// EventData is a serialized domain event ready to be appended.
type EventData struct {
	EventType string
	Data      []byte
}

// RecordedEvent is an event read back from a stream together with the
// revision it was appended at.
type RecordedEvent struct {
	EventData
	Revision Revision
}

// EventStore is the capability interface over the underlying store client.
type EventStore interface {
	// AppendToStream atomically appends events to the named stream if and
	// only if the stream's current revision equals expected. It returns the
	// revision of the last appended event.
	AppendToStream(ctx context.Context, streamName string, expected Revision, events ...EventData) (Revision, error)

	// ReadStream returns all events of the named stream in append order.
	// A nonexistent stream yields an empty slice, not an error.
	ReadStream(ctx context.Context, streamName string) ([]RecordedEvent, error)
}
