package candidate

import "fmt"

// BruteForce enumerates every string of length [MinLen, MaxLen] over
// Alphabet, shortest lengths first. Within a length, the rightmost
// character position varies fastest.
type BruteForce struct {
	Alphabet []rune
	MinLen   int
	MaxLen   int
}

// NewBruteForce validates alphabet and the length bounds and returns a ready
// BruteForce generator.
func NewBruteForce(alphabet []rune, minLen, maxLen int) (*BruteForce, error) {
	if len(alphabet) == 0 {
		return nil, fmt.Errorf("%w: brute-force alphabet is empty", ErrInvalidConfiguration)
	}
	if minLen < 1 {
		return nil, fmt.Errorf("%w: min-length must be >= 1, got %d", ErrInvalidConfiguration, minLen)
	}
	if maxLen < minLen {
		return nil, fmt.Errorf("%w: max-length (%d) must be >= min-length (%d)", ErrInvalidConfiguration, maxLen, minLen)
	}
	base := uint64(len(alphabet))
	var size, total uint64 = 1, 0
	for l := 1; l <= maxLen; l++ {
		if size > ^uint64(0)/base {
			return nil, fmt.Errorf("%w: brute-force space of length %d over %d characters exceeds 64 bits", ErrInvalidConfiguration, l, base)
		}
		size *= base
		if l >= minLen {
			if total > ^uint64(0)-size {
				return nil, fmt.Errorf("%w: brute-force space up to length %d over %d characters exceeds 64 bits", ErrInvalidConfiguration, l, base)
			}
			total += size
		}
	}
	return &BruteForce{Alphabet: alphabet, MinLen: minLen, MaxLen: maxLen}, nil
}

// Len returns the total candidate count across every length in range. It is
// mainly useful for tests and progress estimates; the driver never needs it.
func (b *BruteForce) Len() uint64 {
	var total uint64
	for l := b.MinLen; l <= b.MaxLen; l++ {
		total += powUint64(uint64(len(b.Alphabet)), l)
	}
	return total
}

// Partition splits each length's candidate space independently into n
// contiguous index ranges, rather than slicing the combined total — doing
// so keeps every worker's share of a single length within one candidate of
// every other worker's and avoids
// cross-length range arithmetic that would otherwise need to account for
// lengths of wildly different cardinality.
func (b *BruteForce) Partition(n int) []Iterator {
	if n < 1 {
		n = 1
	}
	lengths := make([]int, 0, b.MaxLen-b.MinLen+1)
	for l := b.MinLen; l <= b.MaxLen; l++ {
		lengths = append(lengths, l)
	}

	iters := make([]*bruteForceIterator, n)
	for i := range iters {
		iters[i] = &bruteForceIterator{
			alphabet: b.Alphabet,
			lengths:  lengths,
			ranges:   make(map[int][2]uint64, len(lengths)),
		}
	}
	for _, l := range lengths {
		total := powUint64(uint64(len(b.Alphabet)), l)
		for i := 0; i < n; i++ {
			lo, hi := splitRange(total, n, i)
			iters[i].ranges[l] = [2]uint64{lo, hi}
		}
	}

	out := make([]Iterator, n)
	for i, it := range iters {
		out[i] = it
	}
	return out
}

type bruteForceIterator struct {
	alphabet []rune
	lengths  []int
	ranges   map[int][2]uint64

	idx     int
	pos     uint64
	started bool
}

func (it *bruteForceIterator) Next(chunkSize int) [][]byte {
	var out [][]byte
	for len(out) < chunkSize {
		if it.idx >= len(it.lengths) {
			break
		}
		l := it.lengths[it.idx]
		rng := it.ranges[l]
		if !it.started {
			it.pos = rng[0]
			it.started = true
		}
		if it.pos >= rng[1] {
			it.idx++
			it.started = false
			continue
		}
		out = append(out, []byte(string(decodeMixedRadix(it.alphabet, l, it.pos))))
		it.pos++
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
