// Package oracle wraps a memory-mapped PKCS#12 archive and exposes the
// single MAC-verification primitive the search driver drives: does this
// candidate password unlock the archive. The verification step tries
// go-pkcs12's Decode and classifies the result; the decoded key and
// certificate are discarded, since recovery only cares whether the password
// is right, not what the archive contains.
package oracle

import (
	"errors"
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
	"software.sslmate.com/src/go-pkcs12"
)

// Verdict classifies the result of one MAC-verification attempt.
type Verdict int

const (
	// NoMatch means the candidate password is definitively wrong for this
	// archive: the PKCS#12 MAC (or PBMAC1 tag) did not verify.
	NoMatch Verdict = iota
	// Match means the candidate password unlocked the archive.
	Match
)

func (v Verdict) String() string {
	if v == Match {
		return "match"
	}
	return "no-match"
}

// Archive is a memory-mapped PKCS#12/PFX file ready for repeated,
// independent password verification attempts. It holds no per-candidate
// state, so a single Archive can be shared read-only across every search
// worker goroutine.
type Archive struct {
	file    *os.File
	mapping mmap.MMap
	data    []byte
}

// Open memory-maps path read-only. The archive's DER structure is not
// parsed until the first Verify call; Open only fails on I/O errors.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("oracle: open %s: %w", path, err)
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("oracle: mmap %s: %w", path, err)
	}
	return &Archive{file: f, mapping: m, data: []byte(m)}, nil
}

// Close unmaps and closes the underlying file.
func (a *Archive) Close() error {
	if err := a.mapping.Unmap(); err != nil {
		a.file.Close()
		return fmt.Errorf("oracle: unmap: %w", err)
	}
	if err := a.file.Close(); err != nil {
		return fmt.Errorf("oracle: close: %w", err)
	}
	return nil
}

// Verify attempts to decrypt and MAC-verify the archive with candidate as
// the password.
//
//   - err == nil, verdict == Match: candidate is the password.
//   - err == nil, verdict == NoMatch: the MAC didn't verify; candidate is
//     wrong and the archive is otherwise well-formed.
//   - err != nil: a hard error — the archive itself could not be parsed, or
//     some other failure unrelated to password correctness. The caller
//     should treat this as fatal to the whole search, not just this
//     candidate.
func (a *Archive) Verify(candidate []byte) (Verdict, error) {
	_, _, err := pkcs12.Decode(a.data, string(candidate))
	if err == nil {
		return Match, nil
	}
	if errors.Is(err, pkcs12.ErrIncorrectPassword) {
		return NoMatch, nil
	}
	return NoMatch, fmt.Errorf("oracle: %w", err)
}
