package candidate

import (
	"bytes"
	"fmt"
	"os"
	"sync/atomic"

	mmap "github.com/edsrzf/mmap-go"
)

// MaxEntryLength is the longest dictionary entry the generator will hand to
// the oracle. Longer entries are skipped rather than rejected outright, so
// one oversized line (a concatenated wordlist with a stray binary blob, for
// instance) cannot abort an otherwise-valid run.
const MaxEntryLength = 4096

// Dictionary enumerates the entries of a memory-mapped wordlist file,
// separated by a configurable delimiter byte. Partition splits the file by
// byte offset and moves every boundary to just past the first separator at
// or after it, so no entry is split across two workers.
type Dictionary struct {
	file    *os.File
	mapping mmap.MMap
	data    []byte
	sep     byte

	skipped atomic.Uint64
}

// OpenDictionary memory-maps path read-only and returns a Dictionary that
// splits its contents on sep.
func OpenDictionary(path string, sep byte) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("candidate: open dictionary %s: %w", path, err)
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("candidate: mmap dictionary %s: %w", path, err)
	}
	return &Dictionary{file: f, mapping: m, data: []byte(m), sep: sep}, nil
}

// Close unmaps and closes the underlying file.
func (d *Dictionary) Close() error {
	if err := d.mapping.Unmap(); err != nil {
		d.file.Close()
		return fmt.Errorf("candidate: unmap dictionary: %w", err)
	}
	if err := d.file.Close(); err != nil {
		return fmt.Errorf("candidate: close dictionary: %w", err)
	}
	return nil
}

// Skipped returns the number of entries skipped so far for exceeding
// MaxEntryLength, across every partition's iterator.
func (d *Dictionary) Skipped() uint64 {
	return d.skipped.Load()
}

// boundaryAfter returns the offset one past the first separator at or after
// pos, or len(data) if none remains. Using the same rule for both a
// partition's end and the next partition's start guarantees the partitions
// are contiguous and that the separator itself belongs to the earlier one.
func (d *Dictionary) boundaryAfter(pos int64) int64 {
	size := int64(len(d.data))
	if pos >= size {
		return size
	}
	rel := bytes.IndexByte(d.data[pos:], d.sep)
	if rel < 0 {
		return size
	}
	return pos + int64(rel) + 1
}

// Partition splits the mapped file into n byte ranges, each realigned to a
// separator boundary so no entry straddles two ranges.
func (d *Dictionary) Partition(n int) []Iterator {
	if n < 1 {
		n = 1
	}
	size := int64(len(d.data))
	nominal := make([]int64, n+1)
	for i := 0; i <= n; i++ {
		nominal[i] = size * int64(i) / int64(n)
	}

	out := make([]Iterator, n)
	for i := 0; i < n; i++ {
		var start int64
		if i == 0 {
			start = 0
		} else {
			start = d.boundaryAfter(nominal[i])
		}
		var end int64
		if i == n-1 {
			end = size
		} else {
			end = d.boundaryAfter(nominal[i+1])
		}
		out[i] = &dictionaryIterator{d: d, pos: start, end: end}
	}
	return out
}

type dictionaryIterator struct {
	d        *Dictionary
	pos, end int64
}

func (it *dictionaryIterator) Next(chunkSize int) [][]byte {
	var out [][]byte
	for len(out) < chunkSize && it.pos < it.end {
		rel := bytes.IndexByte(it.d.data[it.pos:it.end], it.d.sep)
		var segEnd int64
		if rel < 0 {
			segEnd = it.end
		} else {
			segEnd = it.pos + int64(rel)
		}
		seg := it.d.data[it.pos:segEnd]

		advance := segEnd - it.pos
		if rel >= 0 {
			advance++
		}
		it.pos += advance

		if len(seg) == 0 {
			continue
		}
		if len(seg) > MaxEntryLength {
			it.d.skipped.Add(1)
			continue
		}
		out = append(out, seg)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
