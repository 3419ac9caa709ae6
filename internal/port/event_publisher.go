package port

import "context"

// EventPublisher is the outbound broker contract. Publication is
// fire-and-forget from the engine's point of view: a failed publish is
// logged by the caller and never rolls back the triggering transaction.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event any) error
}
