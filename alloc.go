package vstack

import (
	"runtime"
	"unsafe"
)

const word = unsafe.Sizeof(uintptr(0))

// AllocBytes allocates n bytes from the stack, moving the cursor down, and
// returns the slice backing them. The memory is not zeroed. Returns nil for
// n <= 0 and an *OverflowError when the stack cannot grow enough.
//
// The returned slice stays valid until the cursor is rewound past it or the
// stack is released; keep the stack reachable while using it.
func (s *Stack) AllocBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	need := alignUp(uint64(n), uint64(word))
	if err := s.Ensure(need); err != nil {
		return nil, err
	}
	s.avma -= uintptr(need)
	if used := uint64(s.top - s.avma); used > s.maxUsed {
		s.maxUsed = used
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(s.avma)), n), nil
}

// Mark returns the current cursor so that a later Rewind can discard
// everything allocated after this point in one step.
func (s *Stack) Mark() uintptr {
	s.panicIfReleased()
	return s.avma
}

// Rewind moves the cursor back to a mark previously returned by Mark,
// freeing every allocation made since. Rewinding to an address the cursor
// never passed panics.
func (s *Stack) Rewind(mark uintptr) {
	s.panicIfReleased()
	if mark < s.avma || mark > s.top {
		panic("vstack: rewind mark outside the allocated region")
	}
	s.avma = mark
}

// Alloc returns a pointer to a zeroed T stored on the stack.
func Alloc[T any](s *Stack) (*T, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return &zero, nil
	}
	b, err := s.AllocBytes(size)
	if err != nil {
		return nil, err
	}
	clear(b)
	return (*T)(unsafe.Pointer(&b[0])), nil
}

// AllocUninitialized returns a *T located on the stack without zeroing the
// memory. Faster than Alloc, but the contents are whatever the cursor last
// left there.
func AllocUninitialized[T any](s *Stack) (*T, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return &zero, nil
	}
	b, err := s.AllocBytes(size)
	if err != nil {
		return nil, err
	}
	return (*T)(unsafe.Pointer(&b[0])), nil
}

// AllocSlice allocates a slice of n elements of type T on the stack. The
// elements are not initialized. Returns nil for n <= 0.
func AllocSlice[T any](s *Stack, n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	var zero T
	b, err := s.AllocBytes(int(unsafe.Sizeof(zero)) * n)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n), nil
}

// AllocSliceZeroed allocates a slice of n zeroed elements of type T.
func AllocSliceZeroed[T any](s *Stack, n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	var zero T
	b, err := s.AllocBytes(int(unsafe.Sizeof(zero)) * n)
	if err != nil {
		return nil, err
	}
	clear(b)
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n), nil
}

// PtrAndKeepAlive returns t and keeps the stack reachable until this point.
// Useful in unsafe code to stop the stack (and with it the fallback
// profile's buffer) from being collected while t is still in use.
func PtrAndKeepAlive[T any](s *Stack, t *T) *T {
	runtime.KeepAlive(s)
	return t
}
