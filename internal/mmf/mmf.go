// Package mmf owns the lifetime of the backing object for a queue's
// shared-memory region: creating or opening it, mapping it into the
// process, and tearing it down again. It is split into platform files
// (file_unix.go, file_windows.go) behind the common MemoryFile
// interface defined here, mirroring how the teacher ring buffer kept
// its mmap/munmap syscall wrappers in one file (syscall.go) separate
// from the ring logic that used them.
package mmf

import "fmt"

// CreateMode controls how OpenOrCreate behaves when it discovers the
// backing object already exists, per spec section 4.1 step 2.
type CreateMode int

const (
	// AttachExisting attaches to an existing region without taking
	// ownership of its destruction.
	AttachExisting CreateMode = iota
	// CreateOrOverride re-creates (truncating, on POSIX) the backing
	// object and takes delete-on-dispose ownership even if one already
	// existed.
	CreateOrOverride
)

// MemoryFile is the create/open/delete lifecycle for a queue's backing
// region, and the mapping of that region into this process (Memory
// View, spec section 4.2 folded in here since on every supported
// platform the view's lifetime is already tied 1:1 to the file's).
type MemoryFile interface {
	// MappedFile returns the mapped region as a byte slice whose
	// length is exactly BytesCapacity.
	MappedFile() []byte
	// IsOwner reports whether this instance is responsible for
	// deleting the backing object on Close (POSIX: the file; Windows:
	// a no-op, the OS reference-counts the section).
	IsOwner() bool
	// Close is idempotent; it unmaps the region and, if this instance
	// owns the backing object, deletes it.
	Close() error
}

// ErrSizeMismatch is AlreadyExistsIncompatible from spec section 7: an
// existing backing object was found with a size that doesn't match
// what this process expects.
type ErrSizeMismatch struct {
	QueueName string
	Want      int64
	Got       int64
}

func (e *ErrSizeMismatch) Error() string {
	return fmt.Sprintf("mmf: queue %q: existing region is %d bytes, expected %d", e.QueueName, e.Got, e.Want)
}
