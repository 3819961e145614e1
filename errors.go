package interprocess

import (
	"errors"
	"fmt"
)

// Error kinds from spec section 7. Each is either a sentinel error (for
// conditions with no useful payload) or a typed error (for conditions
// that carry diagnostic data), so callers can use errors.Is/errors.As
// end to end instead of string matching.
var (
	// ErrQueueFull names the QueueFull condition: not enough room to
	// reserve a frame. TryEnqueue reports it as (false, nil) rather
	// than returning this error, and blocking Enqueue retries instead
	// of surfacing it.
	ErrQueueFull = errors.New("interprocess: queue full")

	// ErrCancelled is returned when a blocking operation's context is
	// canceled at a suspension point (signal wait, yield, or before a
	// CAS). Queue state is unchanged.
	ErrCancelled = errors.New("interprocess: operation cancelled")

	// ErrClosed is returned by any operation attempted after the
	// owning Queue, Publisher, or Subscriber has been closed.
	ErrClosed = errors.New("interprocess: closed")
)

// InvalidOptionError is raised at construction time when a QueueOptions
// field is out of range, and by TryEnqueue (Field "body") for an empty
// message body.
type InvalidOptionError struct {
	Field  string
	Reason string
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("interprocess: invalid option %s: %s", e.Field, e.Reason)
}

// MessageTooLargeError is raised to a publisher when the body plus
// header would exceed Capacity. Queue state is unchanged.
type MessageTooLargeError struct {
	BodyLen  int
	FrameLen int64
	Capacity int64
}

func (e *MessageTooLargeError) Error() string {
	return fmt.Sprintf("interprocess: message of %d bytes needs a %d-byte frame, capacity is %d",
		e.BodyLen, e.FrameLen, e.Capacity)
}

// InvariantBreachError represents a CAS failure on a memory word the
// caller believed it held exclusively: a bug, not a user error. Per
// spec section 7 this "aborts the process with a diagnostic"; here
// that is a panic carrying this error, logged at Error level first so
// the diagnostic survives even if nothing recovers the panic.
type InvariantBreachError struct {
	Detail string
}

func (e *InvariantBreachError) Error() string {
	return fmt.Sprintf("interprocess: invariant breach: %s", e.Detail)
}
