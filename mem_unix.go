//go:build unix

package vstack

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

const reserveSupported = true

// reservedRange is address space mapped PROT_NONE with MAP_NORESERVE, so the
// reservation costs no physical memory and no commit charge until pages are
// made accessible.
type reservedRange struct {
	mem []byte
}

func reserveRange(size uint64) (backing, error) {
	mem, err := unix.Mmap(-1, 0, int(size), unix.PROT_NONE,
		unix.MAP_ANON|unix.MAP_PRIVATE|unix.MAP_NORESERVE)
	if err != nil {
		return nil, err
	}
	return &reservedRange{mem: mem}, nil
}

func (r *reservedRange) bounds() (uintptr, uintptr) {
	lo := uintptr(unsafe.Pointer(&r.mem[0]))
	return lo, lo + uintptr(len(r.mem))
}

func (r *reservedRange) commit(lo, hi uintptr) error {
	if lo >= hi {
		return nil
	}
	base := uintptr(unsafe.Pointer(&r.mem[0]))
	return unix.Mprotect(r.mem[lo-base:hi-base], unix.PROT_READ|unix.PROT_WRITE)
}

// decommit remaps [lo, hi) to fresh inaccessible anonymous pages. A plain
// mprotect(PROT_NONE) or an advisory MADV_DONTNEED would leave the pages
// counted against the process under strict overcommit accounting; the
// MAP_FIXED remap drops the commit charge and still keeps the range
// reserved.
func (r *reservedRange) decommit(lo, hi uintptr) error {
	if lo >= hi {
		return nil
	}
	_, err := unix.MmapPtr(-1, 0, unsafe.Pointer(lo), hi-lo,
		unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE|unix.MAP_FIXED|unix.MAP_NORESERVE)
	return err
}

func (r *reservedRange) release() error {
	mem := r.mem
	r.mem = nil
	return unix.Munmap(mem)
}
