// Package lifecycle holds shared lifecycle constants for fx hooks.
package lifecycle

import "time"

// DefaultTimeout bounds start/stop hooks such as server shutdown and
// database connection close.
const DefaultTimeout = 10 * time.Second
