package interprocess

import (
	"go.uber.org/zap"

	"github.com/plkumar/interprocess/internal/mmf"
	"github.com/plkumar/interprocess/internal/wire"
)

// QueueOptions configures a named queue, per spec section 6.
type QueueOptions struct {
	// QueueName is required, non-empty, and used in OS object names
	// and filenames.
	QueueName string

	// Path is the directory under which the backing file lives.
	// POSIX only; ignored on Windows.
	Path string

	// Capacity is the ring size in bytes. Must be > 0 and a multiple
	// of 8.
	Capacity int64

	// CreateOrOverride controls the lifecycle tiebreak from spec
	// section 4.1 step 2: if true, a later opener truncates and takes
	// delete-on-dispose ownership even though the file already
	// existed; if false, it attaches non-destructively.
	CreateOrOverride bool

	// Logger receives structured diagnostics from every internal
	// component. A no-op logger is used if nil.
	Logger *zap.SugaredLogger
}

// BytesCapacity is HeaderSize + Capacity, the total size of the mapped
// region, per spec section 3.1.
func (o QueueOptions) BytesCapacity() int64 {
	return int64(wire.HeaderSize) + o.Capacity
}

// Validate checks QueueOptions against spec section 6's constraints,
// returning an *InvalidOptionError naming the offending field.
func (o QueueOptions) Validate() error {
	if o.QueueName == "" {
		return &InvalidOptionError{Field: "QueueName", Reason: "must not be empty"}
	}
	if o.Capacity <= 0 {
		return &InvalidOptionError{Field: "Capacity", Reason: "must be > 0"}
	}
	if o.Capacity%8 != 0 {
		return &InvalidOptionError{Field: "Capacity", Reason: "must be a multiple of 8"}
	}
	return nil
}

func (o QueueOptions) createMode() mmf.CreateMode {
	if o.CreateOrOverride {
		return mmf.CreateOrOverride
	}
	return mmf.AttachExisting
}

func (o QueueOptions) logger() *zap.SugaredLogger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop().Sugar()
}
