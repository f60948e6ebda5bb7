// Package search implements the parallel Search Driver: it partitions a
// candidate.Source across a fixed worker pool and races the workers against
// each other to find the one password that makes the Oracle return Match,
// stopping every worker as soon as any of them does — or as soon as any of
// them hits a hard error.
package search

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"

	"github.com/go-i2p/pfxcrack/internal/candidate"
	"github.com/go-i2p/pfxcrack/internal/oracle"
)

// Oracle is the MAC-verification primitive the driver needs; *oracle.Archive
// satisfies it. Accepting the interface here, rather than the concrete
// type, lets driver tests substitute a fake with a planted match or a
// synthetic hard error without building a real PKCS#12 file.
type Oracle interface {
	Verify(candidate []byte) (oracle.Verdict, error)
}

// Outcome classifies how a Run call ended.
type Outcome int

const (
	// Exhausted means every candidate in the source was tried and none
	// matched.
	Exhausted Outcome = iota
	// Found means a worker's Oracle.Verify call returned Match.
	Found
	// Aborted means a worker's Oracle.Verify call returned a hard error, or
	// the caller's context was cancelled, before the space was exhausted.
	Aborted
)

// Options configures a Run call.
type Options struct {
	// Threads is the number of workers. Values less than 1 are treated as 1.
	Threads int
	// ChunkSize is how many candidates each worker pulls from its iterator
	// between Found/Abort polls. Values less than 1 are treated as 1024.
	ChunkSize int
	// Progress, if non-nil, is incremented once per Oracle.Verify call made
	// by any worker. Callers may poll it concurrently from another
	// goroutine to report liveness; Run never reads it.
	Progress *atomic.Uint64
}

// Result is the outcome of one Run call.
type Result struct {
	Outcome  Outcome
	Password []byte
	Err      error // set only when Outcome == Aborted
	Attempts uint64
}

// Run partitions src across opts.Threads workers and drives each worker's
// iterator against archive until one candidate matches, the source is
// exhausted, or a worker's Oracle call returns a hard error.
//
// Run blocks until every worker has stopped. It is safe to cancel ctx from
// another goroutine to abort a long-running search early; doing so produces
// Outcome == Aborted with Err == ctx.Err().
func Run(ctx context.Context, src candidate.Source, archive Oracle, opts Options) Result {
	threads := opts.Threads
	if threads < 1 {
		threads = 1
	}
	chunkSize := opts.ChunkSize
	if chunkSize < 1 {
		chunkSize = 1024
	}

	var found atomic.Bool
	var foundPassword atomic.Pointer[[]byte]
	var aborted atomic.Bool
	var abortErr atomic.Pointer[error]
	var attempts atomic.Uint64

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	iterators := src.Partition(threads)
	p := pool.New().WithMaxGoroutines(threads)

	for _, it := range iterators {
		it := it
		p.Go(func() {
			defer func() {
				if r := recover(); r != nil {
					if aborted.CompareAndSwap(false, true) {
						err := fmt.Errorf("search: worker panic: %v", r)
						abortErr.Store(&err)
					}
					cancel()
				}
			}()
			runWorker(runCtx, it, archive, chunkSize, &found, &foundPassword, &aborted, &abortErr, &attempts, opts.Progress, cancel)
		})
	}
	p.Wait()

	result := Result{Attempts: attempts.Load()}
	switch {
	case found.Load():
		result.Outcome = Found
		result.Password = *foundPassword.Load()
	case aborted.Load():
		result.Outcome = Aborted
		result.Err = *abortErr.Load()
	case ctx.Err() != nil:
		result.Outcome = Aborted
		result.Err = ctx.Err()
	default:
		result.Outcome = Exhausted
	}
	return result
}

// runWorker drains one worker's iterator, chunk by chunk, stopping as soon
// as a Match is found or the shared found/aborted flags are set by another
// worker.
func runWorker(
	ctx context.Context,
	it candidate.Iterator,
	archive Oracle,
	chunkSize int,
	found *atomic.Bool,
	foundPassword *atomic.Pointer[[]byte],
	aborted *atomic.Bool,
	abortErr *atomic.Pointer[error],
	attempts *atomic.Uint64,
	progress *atomic.Uint64,
	cancel context.CancelFunc,
) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if found.Load() || aborted.Load() {
			return
		}

		chunk := it.Next(chunkSize)
		if chunk == nil {
			return
		}

		for _, cand := range chunk {
			if found.Load() || aborted.Load() {
				return
			}
			attempts.Add(1)
			if progress != nil {
				progress.Add(1)
			}
			verdict, err := archive.Verify(cand)
			if err != nil {
				if aborted.CompareAndSwap(false, true) {
					abortErr.Store(&err)
				}
				cancel()
				return
			}
			if verdict == oracle.Match {
				if found.CompareAndSwap(false, true) {
					pw := append([]byte(nil), cand...)
					foundPassword.Store(&pw)
				}
				cancel()
				return
			}
		}
	}
}
