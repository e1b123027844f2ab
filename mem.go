package vstack

import "unsafe"

// backing is the memory profile behind a Stack, chosen once at creation:
// either a virtual-address reservation whose pages are committed on demand,
// or a plain fixed-size buffer that can never grow.
type backing interface {
	// bounds returns the reserved range [lo, hi).
	bounds() (lo, hi uintptr)
	// commit makes [lo, hi) readable and writable.
	commit(lo, hi uintptr) error
	// decommit returns the physical backing of [lo, hi) to the OS while
	// keeping the address range reserved for later recommit.
	decommit(lo, hi uintptr) error
	// release gives the whole range back to the OS.
	release() error
}

// fixedRange is the fallback profile: an ordinary allocation of the baseline
// size. Commit and decommit are pointer arithmetic only; growth is handled
// one level up by never being offered (the stack's ceiling is zero).
type fixedRange struct {
	buf []byte
}

func newFixedRange(size uint64) *fixedRange {
	return &fixedRange{buf: make([]byte, size)}
}

func (r *fixedRange) bounds() (uintptr, uintptr) {
	lo := uintptr(unsafe.Pointer(&r.buf[0]))
	return lo, lo + uintptr(len(r.buf))
}

func (r *fixedRange) commit(lo, hi uintptr) error   { return nil }
func (r *fixedRange) decommit(lo, hi uintptr) error { return nil }

func (r *fixedRange) release() error {
	r.buf = nil
	return nil
}
