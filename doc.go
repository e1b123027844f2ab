// Package vstack implements a growable contiguous stack arena backed by a
// fixed virtual-address reservation.
//
// # Overview
//
// A vstack is a single contiguous memory region bump-allocated from its high
// end. Unlike a chunked arena, the region's base address is fixed for the
// life of the stack: growing and shrinking only change how much of a large
// virtual reservation is committed, never where it lives. This makes the
// stack suitable as working memory for engines that hand out raw addresses
// into the region and need them to stay valid across growth.
//
// On Unix platforms the stack reserves up to its configured ceiling of
// address space with no physical backing, commits pages on demand as the
// stack grows, and returns the backing to the operating system when it
// shrinks. On platforms without a reservation primitive, or when no ceiling
// is configured, the stack is a plain fixed-size allocation that can never
// grow.
//
// # Basic Usage
//
//	st, err := vstack.New(vstack.Config{Size: 8 << 20, SizeMax: 1 << 30})
//	if err != nil {
//		// out of memory at startup; nothing to fall back to
//	}
//	defer st.Release()
//
//	buf, err := st.AllocBytes(1024)   // grows the stack on demand
//	ptr, err := vstack.Alloc[big.Int](st)
//
//	mark := st.Mark()
//	// ... temporary allocations ...
//	st.Rewind(mark) // discard them in one step
//
//	st.Reset() // back to the baseline size between computations
//
// # Growth and Overflow
//
// Allocation never fails while free space remains. When it runs out, the
// stack grows by at least a configurable factor (default: doubling), up to
// the ceiling fixed at creation. A request that cannot be satisfied fails
// with an *OverflowError carrying the current usable size; the stack itself
// is left exactly as it was, so the caller can unwind its computation and
// keep using the stack.
//
// # Thread Safety
//
// A Stack is owned by exactly one logical execution context at a time and
// performs no locking. Concurrent computations each get their own Stack;
// instances share no state and need no coordination.
//
// # Lifecycle
//
//   - Allocation: O(1) plus an occasional grow
//   - Reset: one system call at most
//   - Release: returns the whole reservation to the OS; further use panics
package vstack
