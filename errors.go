package vstack

import (
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
)

// OverflowError reports that the stack could not secure the requested free
// space, either because it has no room left to grow or because committing
// more memory failed. It carries the usable size at the time of the failure.
//
// An overflow is a recoverable condition: the stack is still valid and the
// caller is expected to unwind the in-flight computation, not abort the
// process.
type OverflowError struct {
	// Size is the usable stack size, in bytes, when the overflow occurred.
	Size uint64
}

func (e *OverflowError) Error() string {
	return "vstack: the stack overflows, current size is " + humanize.IBytes(e.Size)
}

// IsOverflow reports whether err is a stack overflow, however deeply wrapped.
func IsOverflow(err error) bool {
	return errors.HasType(err, (*OverflowError)(nil))
}
