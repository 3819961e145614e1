//go:build !windows

package mmf

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// BackingFilePath returns the path of the backing file for a queue, per
// spec section 6: <path>/.cloudtoid/interprocess/mmf/<queue>.qu
func BackingFilePath(path, queueName string) string {
	return filepath.Join(path, ".cloudtoid", "interprocess", "mmf", queueName+".qu")
}

type unixFile struct {
	file    *os.File
	mapped  []byte
	isOwner bool
	path    string
	logger  *zap.SugaredLogger
}

// OpenOrCreate implements spec section 4.1's POSIX creation protocol:
// try an exclusive create first; on collision, either attach
// non-destructively or re-create, depending on mode.
func OpenOrCreate(path, queueName string, bytesCapacity int64, mode CreateMode, logger *zap.SugaredLogger) (MemoryFile, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	full := BackingFilePath(path, queueName)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("mmf: creating backing directory: %w", err)
	}

	f, isOwner, err := openBackingFile(full, mode)
	if err != nil {
		return nil, err
	}

	if isOwner {
		logger.Debugw("created backing file", "path", full)
		if err := f.Truncate(bytesCapacity); err != nil {
			cleanupOnFailure(f, full, isOwner, logger)
			return nil, fmt.Errorf("mmf: truncating backing file: %w", err)
		}
	} else {
		logger.Debugw("attached to existing backing file", "path", full)
		stat, err := f.Stat()
		if err != nil {
			cleanupOnFailure(f, full, isOwner, logger)
			return nil, fmt.Errorf("mmf: stat existing backing file: %w", err)
		}
		if stat.Size() != bytesCapacity {
			cleanupOnFailure(f, full, isOwner, logger)
			return nil, &ErrSizeMismatch{QueueName: queueName, Want: bytesCapacity, Got: stat.Size()}
		}
	}

	mapped, err := unix.Mmap(int(f.Fd()), 0, int(bytesCapacity), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		cleanupOnFailure(f, full, isOwner, logger)
		return nil, fmt.Errorf("mmf: mmap: %w", err)
	}

	return &unixFile{file: f, mapped: mapped, isOwner: isOwner, path: full, logger: logger}, nil
}

// openBackingFile implements the three branches of spec section 4.1
// step 1-2: exclusive create, attach, or create-or-override.
func openBackingFile(full string, mode CreateMode) (*os.File, bool, error) {
	f, err := os.OpenFile(full, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err == nil {
		return f, true, nil
	}
	if !os.IsExist(err) {
		return nil, false, fmt.Errorf("mmf: creating backing file: %w", err)
	}

	if mode == CreateOrOverride {
		f, err := os.OpenFile(full, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, false, fmt.Errorf("mmf: re-creating backing file: %w", err)
		}
		return f, true, nil
	}

	f, err = os.OpenFile(full, os.O_RDWR, 0o644)
	if err != nil {
		return nil, false, fmt.Errorf("mmf: opening existing backing file: %w", err)
	}
	return f, false, nil
}

// cleanupOnFailure undoes a partially constructed MemoryFile. Errors
// during cleanup are logged, never returned, so they don't mask the
// original failure, per spec section 7's propagation policy.
func cleanupOnFailure(f *os.File, path string, isOwner bool, logger *zap.SugaredLogger) {
	if err := f.Close(); err != nil {
		logger.Warnw("closing backing file during rollback", "path", path, "error", err)
	}
	if isOwner {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warnw("removing backing file during rollback", "path", path, "error", err)
		}
	}
}

func (f *unixFile) MappedFile() []byte { return f.mapped }
func (f *unixFile) IsOwner() bool      { return f.isOwner }

func (f *unixFile) Close() error {
	if f.mapped == nil {
		return nil
	}
	mapped := f.mapped
	f.mapped = nil

	if err := unix.Munmap(mapped); err != nil {
		f.logger.Warnw("munmap failed", "path", f.path, "error", err)
	}

	if err := f.file.Close(); err != nil {
		f.logger.Warnw("closing backing file failed", "path", f.path, "error", err)
	}

	if f.isOwner {
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			f.logger.Warnw("deleting backing file failed", "path", f.path, "error", err)
		}
	}

	return nil
}
