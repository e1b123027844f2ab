package vstack

// Size returns the currently usable stack size in bytes.
func (s *Stack) Size() uint64 {
	return s.size
}

// SizeMax returns the growth ceiling in bytes. Zero means the stack cannot
// grow, either because it was created without headroom or because a commit
// failure capped it.
func (s *Stack) SizeMax() uint64 {
	return s.vsize
}

// Baseline returns the size the stack returns to on Reset.
func (s *Stack) Baseline() uint64 {
	return s.rsize
}

// Reserved returns the extent of the virtual reservation in bytes.
func (s *Stack) Reserved() uint64 {
	return uint64(s.top - s.vbot)
}

// MemUsed returns the bytes currently taken by the bump cursor.
func (s *Stack) MemUsed() uint64 {
	return uint64(s.top - s.avma)
}

// Avail returns the free bytes below the cursor, available without growth.
func (s *Stack) Avail() uint64 {
	return uint64(s.avma - s.bot)
}

// HighWater returns the largest MemUsed observed over the stack's life.
func (s *Stack) HighWater() uint64 {
	return s.maxUsed
}

// Growths returns how many times the stack has grown, on demand or by an
// explicit Resize.
func (s *Stack) Growths() int {
	return s.growths
}

// Utilization returns the ratio of bytes in use to the usable size
// (0.0 to 1.0). Returns 0.0 for a released stack.
func (s *Stack) Utilization() float64 {
	if s.size == 0 {
		return 0
	}
	return float64(s.MemUsed()) / float64(s.size)
}

// Metrics returns a snapshot of stack statistics.
func (s *Stack) Metrics() StackMetrics {
	return StackMetrics{
		Size:        s.Size(),
		SizeMax:     s.SizeMax(),
		Reserved:    s.Reserved(),
		MemUsed:     s.MemUsed(),
		Avail:       s.Avail(),
		HighWater:   s.HighWater(),
		Growths:     s.Growths(),
		Utilization: s.Utilization(),
	}
}

// StackMetrics contains statistical information about a stack.
type StackMetrics struct {
	Size        uint64  // usable bytes
	SizeMax     uint64  // growth ceiling, 0 when growth is impossible
	Reserved    uint64  // extent of the virtual reservation
	MemUsed     uint64  // bytes taken by the bump cursor
	Avail       uint64  // free bytes below the cursor
	HighWater   uint64  // largest MemUsed ever observed
	Growths     int     // number of grow operations
	Utilization float64 // MemUsed / Size (0.0-1.0)
}
