// Package delivery defines the contract shared by every inbound server
// (HTTP, background workers) managed by the application container.
package delivery

import "context"

// Delivery is a long-running inbound adapter. Serve blocks until the
// delivery stops or the context is cancelled.
type Delivery interface {
	Serve(ctx context.Context) error
}
