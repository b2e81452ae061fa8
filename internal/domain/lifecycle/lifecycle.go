// Package lifecycle holds shared shutdown settings for fx hooks.
package lifecycle

import "time"

// DefaultTimeout bounds fx start and stop hooks.
const DefaultTimeout = 15 * time.Second
