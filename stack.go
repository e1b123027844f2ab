package vstack

import (
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
)

// Stack is a growable contiguous stack arena. Allocation runs downward from
// the fixed high end (top); growth and shrink move only the committed bottom
// of the region, so every address handed out stays valid for the life of the
// stack.
//
// A Stack is not goroutine-safe: it is owned by exactly one logical
// execution context at a time. Concurrent contexts each use their own Stack.
type Stack struct {
	mem backing

	top  uintptr // fixed high end of the reservation
	vbot uintptr // fixed low end of the reservation
	bot  uintptr // bottom of the usable region, top - size
	cbot uintptr // committed bottom, bot aligned down to the page
	avma uintptr // bump cursor; free space is [bot, avma)

	size  uint64 // usable bytes, top - bot
	rsize uint64 // baseline size restored by Reset
	vsize uint64 // growth ceiling; 0 means growth is impossible

	page   uintptr
	factor float64
	log    *slog.Logger

	growths int
	maxUsed uint64
}

// New creates a Stack per cfg. With a nonzero SizeMax on a platform with an
// address-space reservation primitive, the stack reserves up to SizeMax of
// virtual space (halving on reservation failure, down to a floor of Size)
// and commits only the baseline. Otherwise the stack is a fixed allocation
// of exactly Size bytes that can never grow.
//
// An error from New is unrecoverable for this stack: not even the baseline
// could be reserved and committed.
func New(cfg Config) (*Stack, error) {
	if cfg.Size == 0 {
		cfg.Size = DefaultSize
	}
	if cfg.GrowthFactor < 1 {
		cfg.GrowthFactor = DefaultGrowthFactor
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	page := uintptr(os.Getpagesize())
	rsize := alignUp(uint64(cfg.Size), uint64(page))
	vsize := uint64(cfg.SizeMax)
	if vsize > 0 {
		vsize = alignUp(vsize, uint64(page))
		if vsize < rsize {
			vsize = rsize
		}
	}

	mem, vsize, err := reserve(rsize, vsize)
	if err != nil {
		return nil, err
	}
	return newStack(cfg, mem, rsize, vsize)
}

// reserve picks the backing profile. The reservation is clamped by retrying
// at half the size until the kernel accepts it; a reservation with no
// headroom over the baseline reports a zero ceiling.
func reserve(rsize, vsize uint64) (backing, uint64, error) {
	if vsize > 0 && reserveSupported {
		r := vsize
		for {
			mem, err := reserveRange(r)
			if err == nil {
				if r > rsize {
					return mem, r, nil
				}
				return mem, 0, nil
			}
			if r == rsize {
				return nil, 0, errors.Wrapf(err, "vstack: cannot reserve %s of address space",
					humanize.IBytes(r))
			}
			if r /= 2; r < rsize {
				r = rsize
			}
		}
	}
	return newFixedRange(rsize), 0, nil
}

func newStack(cfg Config, mem backing, rsize, vsize uint64) (*Stack, error) {
	s := &Stack{
		mem:    mem,
		rsize:  rsize,
		vsize:  vsize,
		page:   uintptr(os.Getpagesize()),
		factor: cfg.GrowthFactor,
		log:    cfg.Logger,
	}
	s.vbot, s.top = mem.bounds()
	s.bot, s.cbot, s.avma = s.top, s.top, s.top
	if err := s.setSize(rsize); err != nil {
		_ = mem.release()
		return nil, errors.Wrapf(err, "vstack: cannot commit the %s baseline stack",
			humanize.IBytes(rsize))
	}
	return s, nil
}

// setSize moves the committed window so that exactly size bytes are usable.
// Growth commits pages and can fail, in which case the stack is unchanged
// except that the growth ceiling is capped at the current size so the kernel
// is not asked again. Shrink decommits pages and cannot fail.
func (s *Stack) setSize(size uint64) error {
	newbot := s.top - uintptr(size)
	alignbot := alignDown(newbot, s.page)
	if alignbot < s.vbot {
		alignbot = s.vbot
	}
	switch {
	case alignbot < s.cbot:
		if err := s.mem.commit(alignbot, s.cbot); err != nil {
			s.vsize = s.size
			// The baseline commit inside newStack surfaces as a fatal error;
			// only a failed extension of a live stack is worth a warning.
			if s.size > 0 {
				s.log.Warn("vstack: not enough memory to extend the stack",
					"size", humanize.IBytes(s.size))
			}
			return errors.Wrapf(err, "vstack: cannot commit %s",
				humanize.IBytes(uint64(s.cbot-alignbot)))
		}
	case alignbot > s.cbot:
		// Remapping already-reserved pages to an inaccessible state acquires
		// nothing; an error here means the reservation itself is gone.
		if err := s.mem.decommit(s.cbot, alignbot); err != nil {
			panic("vstack: decommit failed: " + err.Error())
		}
	}
	s.bot = newbot
	s.cbot = alignbot
	s.size = size
	return nil
}

// Ensure guarantees at least n bytes of free space below the cursor, growing
// the stack if it must. On success the caller's bump allocation of n bytes
// may proceed. On failure the returned error is an *OverflowError and the
// stack's size and bottom are exactly as before the call.
func (s *Stack) Ensure(n uint64) error {
	s.panicIfReleased()
	avail := uint64(s.avma - s.bot)
	if avail >= n {
		return nil
	}
	if s.vsize == 0 {
		return &OverflowError{Size: s.size}
	}
	need := n - avail
	newsize := s.size + need
	if newsize < s.size { // wrapped around
		newsize = s.vsize
	}
	if grown := uint64(float64(s.size) * s.factor); newsize < grown {
		newsize = grown
	}
	if newsize > s.vsize {
		newsize = s.vsize
	}
	prev := s.size
	if err := s.setSize(newsize); err == nil && uint64(s.avma-s.bot) >= n {
		s.growths++
		return nil
	}
	if s.size != prev {
		// The ceiling capped growth below what was needed. Shrink back to a
		// size whose pages were already proven available; this cannot fail.
		_ = s.setSize(prev)
	}
	return &OverflowError{Size: s.size}
}

// Resize grows the stack to target bytes, or doubles it when target is zero.
// The target is capped at the growth ceiling and a target at or below the
// current size is a no-op. Returns the resulting usable size; a failed
// enlargement leaves the size unchanged and is reported through the logger.
func (s *Stack) Resize(target uint64) uint64 {
	s.panicIfReleased()
	if s.vsize == 0 {
		return s.size
	}
	if target == 0 {
		target = s.size * 2
	}
	if target > s.vsize {
		target = s.vsize
	}
	if target <= s.size {
		return s.size
	}
	if err := s.setSize(target); err == nil {
		s.growths++
		s.log.Warn("vstack: new stack size", "size", humanize.IBytes(s.size))
	}
	return s.size
}

// Reset shrinks the stack back to its baseline size and rewinds the cursor,
// discarding every allocation. Use it between independent computations to
// return to a known footprint; it is far cheaper than Release plus New.
func (s *Stack) Reset() {
	s.panicIfReleased()
	_ = s.setSize(s.rsize) // never grows, cannot fail
	s.avma = s.top
}

// Release returns the whole reservation to the operating system and zeroes
// the stack. Memory previously handed out becomes invalid; any further use
// of the stack panics.
func (s *Stack) Release() error {
	s.panicIfReleased()
	err := s.mem.release()
	*s = Stack{}
	return err
}

func (s *Stack) panicIfReleased() {
	if s.mem == nil {
		panic("vstack: use after Release()")
	}
}

// alignUp rounds n up to a multiple of a; a must be a power of two.
func alignUp(n, a uint64) uint64 {
	return (n + a - 1) &^ (a - 1)
}

// alignDown rounds p down to a multiple of a; a must be a power of two.
func alignDown(p, a uintptr) uintptr {
	return p &^ (a - 1)
}
