// Package command implements the read-fold-decide-append orchestration over
// an event store for create and update flows.
package command

import (
	"context"
	"fmt"

	"github.com/fairyhunter13/shopping-cart-service/internal/eventstore"
)

// Result carries the revision of the just-appended event. It is the value
// the caller must present as the expected revision on its next update.
type Result struct {
	NextExpectedRevision eventstore.Revision
}

// Create builds a handler for commands that start a new stream. The decider
// runs against no prior state and its event is appended with the no-stream
// sentinel, so a concurrently created stream surfaces as a revision conflict.
func Create[C any](es eventstore.EventStore, decide func(C) (eventstore.EventData, error)) func(context.Context, string, C) (Result, error) {
	return func(ctx context.Context, streamName string, cmd C) (Result, error) {
		event, err := decide(cmd)
		if err != nil {
			return Result{}, err
		}
		next, err := es.AppendToStream(ctx, streamName, eventstore.NoStream, event)
		if err != nil {
			return Result{}, err
		}
		return Result{NextExpectedRevision: next}, nil
	}
}

// Update builds a handler for commands against an existing stream. It reads
// all prior events, hands them to the decider, and appends the decided event
// under the caller-supplied expected revision. Decision failures and
// revision conflicts propagate unchanged, and nothing is appended on
// failure.
func Update[C any](es eventstore.EventStore, decide func([]eventstore.RecordedEvent, C) (eventstore.EventData, error)) func(context.Context, string, C, eventstore.Revision) (Result, error) {
	return func(ctx context.Context, streamName string, cmd C, expected eventstore.Revision) (Result, error) {
		history, err := es.ReadStream(ctx, streamName)
		if err != nil {
			return Result{}, err
		}
		// Fail fast on a stale token before running decision logic; the
		// store's atomic check at append time remains authoritative.
		current := eventstore.NoStream
		if len(history) > 0 {
			current = history[len(history)-1].Revision
		}
		if current != expected {
			return Result{}, fmt.Errorf("%w: stream %s expected %d actual %d",
				eventstore.ErrRevisionConflict, streamName, expected, current)
		}
		event, err := decide(history, cmd)
		if err != nil {
			return Result{}, err
		}
		next, err := es.AppendToStream(ctx, streamName, expected, event)
		if err != nil {
			return Result{}, err
		}
		return Result{NextExpectedRevision: next}, nil
	}
}
