package abi

// PageSize is the growth granularity of LinearMemory, matching WebAssembly pages.
const PageSize = 64 * 1024

// LinearMemory is a growable byte arena implementing Memory.
//
// Views returned by Read stay valid until the next Grow.
type LinearMemory struct {
	buf      []byte
	maxPages uint32
}

// NewLinearMemory creates a memory of pages pages that may grow to maxPages.
// A maxPages of 0 means no limit beyond the 4 GiB address space.
func NewLinearMemory(pages, maxPages uint32) *LinearMemory {
	if maxPages == 0 || maxPages > 1<<16 {
		maxPages = 1 << 16
	}
	if pages > maxPages {
		pages = maxPages
	}
	return &LinearMemory{
		buf:      make([]byte, int(pages)*PageSize),
		maxPages: maxPages,
	}
}

// Size implements Memory.
func (m *LinearMemory) Size() uint32 {
	return uint32(len(m.buf))
}

// Pages returns the current size in pages.
func (m *LinearMemory) Pages() uint32 {
	return uint32(len(m.buf) / PageSize)
}

// Grow adds delta pages and returns the previous page count.
// It returns false and leaves the memory unchanged if the limit would be exceeded.
func (m *LinearMemory) Grow(delta uint32) (uint32, bool) {
	prev := m.Pages()
	if delta == 0 {
		return prev, true
	}
	if uint64(prev)+uint64(delta) > uint64(m.maxPages) {
		return prev, false
	}
	grown := make([]byte, int(prev+delta)*PageSize)
	copy(grown, m.buf)
	m.buf = grown
	return prev, true
}

// EnsureSize grows the memory so that it holds at least size bytes.
func (m *LinearMemory) EnsureSize(size uint64) bool {
	have := uint64(len(m.buf))
	if size <= have {
		return true
	}
	need := (size - have + PageSize - 1) / PageSize
	if need > uint64(m.maxPages) {
		return false
	}
	_, ok := m.Grow(uint32(need))
	return ok
}

// Read implements Memory.
func (m *LinearMemory) Read(offset, byteCount uint32) ([]byte, bool) {
	end := uint64(offset) + uint64(byteCount)
	if end > uint64(len(m.buf)) {
		return nil, false
	}
	return m.buf[offset:end:end], true
}

// Write implements Memory.
func (m *LinearMemory) Write(offset uint32, v []byte) bool {
	end := uint64(offset) + uint64(len(v))
	if end > uint64(len(m.buf)) {
		return false
	}
	copy(m.buf[offset:end], v)
	return true
}

// Reset zeroes the memory without shrinking it.
func (m *LinearMemory) Reset() {
	clear(m.buf)
}
