package wire

import "unsafe"

// atomicPointer returns the address of the first byte of b as an
// unsafe.Pointer suitable for sync/atomic int32/int64 operations.
// Callers are responsible for ensuring b is at least as long as the
// atomic width they intend to use and that it came from an 8-byte
// aligned offset into the shared region, per spec section 3.1.
func atomicPointer(b []byte) unsafe.Pointer {
	return unsafe.Pointer(&b[0])
}
