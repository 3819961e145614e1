//go:build windows

package mmf

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

// sectionName returns the name of the named section for a queue, per
// spec section 6: CT_IP_<queue>
func sectionName(queueName string) string {
	return "CT_IP_" + queueName
}

type windowsFile struct {
	handle  windows.Handle
	addr    uintptr
	mapped  []byte
	isOwner bool
	name    string
	logger  *zap.SugaredLogger
}

// OpenOrCreate implements spec section 4.1's Windows lifecycle: a named
// section is created-or-opened; the OS reference-counts its lifetime,
// so there is no delete-on-dispose ownership concept beyond "did this
// call create it".
func OpenOrCreate(_ string, queueName string, bytesCapacity int64, mode CreateMode, logger *zap.SugaredLogger) (MemoryFile, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	name := sectionName(queueName)
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("mmf: encoding section name: %w", err)
	}

	high := uint32(uint64(bytesCapacity) >> 32)
	low := uint32(uint64(bytesCapacity) & 0xFFFFFFFF)

	handle, err := windows.CreateFileMapping(windows.InvalidHandle, nil, windows.PAGE_READWRITE, high, low, namePtr)
	if err != nil {
		return nil, fmt.Errorf("mmf: CreateFileMapping %q: %w", name, err)
	}

	alreadyExisted := windows.GetLastError() == windows.ERROR_ALREADY_EXISTS
	isOwner := !alreadyExisted

	if alreadyExisted && mode == CreateOrOverride {
		logger.Debugw("create-or-override on existing section: attaching, last creator's size wins", "name", name)
	}

	logger.Debugw("opened section", "name", name, "created", isOwner)

	addr, err := windows.MapViewOfFile(handle, windows.FILE_MAP_READ|windows.FILE_MAP_WRITE, 0, 0, uintptr(bytesCapacity))
	if err != nil {
		windows.CloseHandle(handle)
		return nil, fmt.Errorf("mmf: MapViewOfFile %q: %w", name, err)
	}

	mapped := unsafe.Slice((*byte)(unsafe.Pointer(addr)), bytesCapacity)

	return &windowsFile{handle: handle, addr: addr, mapped: mapped, isOwner: isOwner, name: name, logger: logger}, nil
}

func (f *windowsFile) MappedFile() []byte { return f.mapped }
func (f *windowsFile) IsOwner() bool      { return f.isOwner }

func (f *windowsFile) Close() error {
	if f.mapped == nil {
		return nil
	}
	f.mapped = nil

	if err := windows.UnmapViewOfFile(f.addr); err != nil {
		f.logger.Warnw("UnmapViewOfFile failed", "name", f.name, "error", err)
	}
	if err := windows.CloseHandle(f.handle); err != nil {
		f.logger.Warnw("CloseHandle failed", "name", f.name, "error", err)
	}
	return nil
}
