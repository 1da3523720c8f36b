package service

import "context"

// Notifier dispatches a templated message to a recipient. Implementations
// are fire-and-forget from the engine's point of view: delivery failures are
// logged and counted, never propagated to the triggering operation.
type Notifier interface {
	Notify(ctx context.Context, recipient, templateKey string, variables map[string]string) bool
}
