// Package signal implements the cross-process "receiver wake-up"
// notification described in spec section 4.6: Release() wakes at least
// one parked waiter if any is parked, Wait(timeout) returns on a
// release or on timeout. Delivery is best-effort; every caller in this
// module polls shared state directly and only uses the signal to cut
// latency, never for correctness.
package signal

import (
	"context"
	"time"
)

// Signal is the common contract implemented by the POSIX domain-socket
// transport (posix.go) and the Windows named-semaphore transport
// (windows.go).
type Signal interface {
	// Release wakes at least one parked Wait call, if one is parked.
	Release()
	// Wait blocks until a Release arrives or timeout elapses, or ctx is
	// canceled. It returns true only when woken by a Release.
	Wait(ctx context.Context, timeout time.Duration) bool
	// Close releases the underlying OS resources. Idempotent.
	Close() error
}
