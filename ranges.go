package cafepow

import "runtime"

// MaxWorkers is the largest worker count; each worker needs at least one
// value of the first nonce byte.
const MaxWorkers = 255

// Range is an inclusive range of first nonce byte values owned by one worker.
type Range struct {
	Begin uint8
	End   uint8
}

// ClampWorkers maps n into [1, MaxWorkers]. Zero or a negative n selects one
// worker per logical processor as seen by runtime.GOMAXPROCS.
func ClampWorkers(n int) int {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if n < 1 {
		n = 1
	}
	if n > MaxWorkers {
		n = MaxWorkers
	}
	return n
}

// Ranges splits 0-255 into n contiguous ranges of 255/n values each. The last
// range absorbs the remainder and always ends at 255. n is clamped into
// [1, MaxWorkers].
func Ranges(n int) []Range {
	if n < 1 {
		n = 1
	}
	if n > MaxWorkers {
		n = MaxWorkers
	}
	step := MaxWorkers / n
	ranges := make([]Range, 0, n)
	for i := 0; i < n; i++ {
		r := Range{Begin: uint8(i * step)}
		if i == n-1 {
			r.End = 0xFF
		} else {
			r.End = uint8((i+1)*step - 1)
		}
		ranges = append(ranges, r)
	}
	return ranges
}
