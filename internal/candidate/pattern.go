package candidate

import "fmt"

// Pattern enumerates every completion of a fixed template in which each
// occurrence of Wildcard is replaced by an Alphabet character. The leftmost
// wildcard varies slowest; a template with zero wildcards yields exactly
// one candidate, the template itself.
type Pattern struct {
	Template []rune
	Wildcard rune
	Alphabet []rune

	positions []int
}

// NewPattern validates template against alphabet and returns a ready Pattern
// generator. An alphabet is required only when the template actually
// contains Wildcard; a literal template (no wildcards) is valid with an
// empty alphabet.
func NewPattern(template []rune, wildcard rune, alphabet []rune) (*Pattern, error) {
	var positions []int
	for i, r := range template {
		if r == wildcard {
			positions = append(positions, i)
		}
	}
	if len(positions) > 0 && len(alphabet) == 0 {
		return nil, fmt.Errorf("%w: pattern %q has wildcards but the alphabet is empty", ErrInvalidConfiguration, string(template))
	}
	size := uint64(1)
	for range positions {
		if size > ^uint64(0)/uint64(len(alphabet)) {
			return nil, fmt.Errorf("%w: pattern %q has too many wildcards for a 64-bit candidate space", ErrInvalidConfiguration, string(template))
		}
		size *= uint64(len(alphabet))
	}
	return &Pattern{Template: template, Wildcard: wildcard, Alphabet: alphabet, positions: positions}, nil
}

// Len returns len(Alphabet)^(number of wildcards in Template).
func (p *Pattern) Len() uint64 {
	return powUint64(uint64(len(p.Alphabet)), len(p.positions))
}

// Partition splits the single combined index space [0, Len()) into n
// contiguous ranges.
func (p *Pattern) Partition(n int) []Iterator {
	if n < 1 {
		n = 1
	}
	total := p.Len()
	out := make([]Iterator, n)
	for i := 0; i < n; i++ {
		lo, hi := splitRange(total, n, i)
		out[i] = &patternIterator{p: p, pos: lo, end: hi}
	}
	return out
}

type patternIterator struct {
	p        *Pattern
	pos, end uint64
}

func (it *patternIterator) Next(chunkSize int) [][]byte {
	var out [][]byte
	for len(out) < chunkSize && it.pos < it.end {
		out = append(out, it.p.decode(it.pos))
		it.pos++
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// decode materializes the candidate at index within [0, Len()).
func (p *Pattern) decode(index uint64) []byte {
	digits := decodeMixedRadix(p.Alphabet, len(p.positions), index)
	out := make([]rune, len(p.Template))
	copy(out, p.Template)
	for i, pos := range p.positions {
		out[pos] = digits[i]
	}
	return []byte(string(out))
}
