package mixer

import "sync/atomic"

// maxProbes bounds how many candidates one allocation examines. The probe is
// linear from the shared counter, so allocation can fail while free codes
// remain elsewhere in the code space.
const maxProbes = 1024

const codeSpace = MaxCode + 1

// allocator hands out job codes from a shared counter, skipping codes the
// occupied func reports as taken.
type allocator struct {
	counter  atomic.Uint64
	occupied func(Code) bool
}

func newAllocator(occupied func(Code) bool) *allocator {
	return &allocator{occupied: occupied}
}

// next returns a free candidate code, or false when maxProbes candidates in
// a row were occupied.
func (a *allocator) next() (Code, bool) {
	for range maxProbes {
		// the first allocation yields 0
		candidate := Code((a.counter.Add(1) - 1) % codeSpace)
		if !a.occupied(candidate) {
			return candidate, true
		}
	}
	return RejectedCode, false
}
