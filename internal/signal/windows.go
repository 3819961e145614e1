//go:build windows

package signal

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

// NewForQueue builds the Windows wake-up signal for a queue: a named
// semaphore CT_IP_<name>. dir is unused on Windows, kept so callers can
// stay platform-agnostic.
func NewForQueue(_ string, name string, _ *zap.SugaredLogger) (Signal, error) {
	return NewWindowsSignal(name)
}

// maxSubscribers bounds the named semaphore's count. The spec allows
// "a suitably large constant"; real deployments of this queue are
// expected to run far fewer than this many subscribers per queue.
const maxSubscribers = 1 << 16

// WindowsSignal implements Signal with a named semaphore, per spec
// section 4.6: Release increments, Wait decrements blocking up to a
// timeout.
type WindowsSignal struct {
	handle windows.Handle
}

// NewWindowsSignal creates or opens the named semaphore CT_IP_<name>.
func NewWindowsSignal(name string) (*WindowsSignal, error) {
	namePtr, err := windows.UTF16PtrFromString("CT_IP_" + name)
	if err != nil {
		return nil, fmt.Errorf("signal: encoding semaphore name: %w", err)
	}

	handle, err := windows.CreateSemaphore(nil, 0, maxSubscribers, namePtr)
	if err != nil {
		return nil, fmt.Errorf("signal: CreateSemaphore: %w", err)
	}

	return &WindowsSignal{handle: handle}, nil
}

// Release increments the semaphore, waking up to one waiter.
func (s *WindowsSignal) Release() {
	_ = windows.ReleaseSemaphore(s.handle, 1, nil)
}

// Wait blocks on the semaphore up to timeout or until ctx is canceled.
func (s *WindowsSignal) Wait(ctx context.Context, timeout time.Duration) bool {
	done := make(chan bool, 1)
	go func() {
		ms := uint32(timeout.Milliseconds())
		event, err := windows.WaitForSingleObject(s.handle, ms)
		done <- err == nil && event == windows.WAIT_OBJECT_0
	}()

	select {
	case woke := <-done:
		return woke
	case <-ctx.Done():
		return false
	}
}

// Close releases the semaphore handle.
func (s *WindowsSignal) Close() error {
	return windows.CloseHandle(s.handle)
}
