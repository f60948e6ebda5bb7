// Package recovery implements the Orchestrator: it validates the requested
// attack mode, builds the matching candidate.Source, opens the archive
// Oracle, drives the parallel search, and maps the outcome onto the process
// exit-code contract the cmd package needs.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/go-i2p/pfxcrack/config"
	"github.com/go-i2p/pfxcrack/internal/candidate"
	"github.com/go-i2p/pfxcrack/internal/charset"
	"github.com/go-i2p/pfxcrack/internal/oracle"
	"github.com/go-i2p/pfxcrack/internal/search"
)

// Exit codes. 0 means the password was found, 1 means the candidate space
// was exhausted with no match, 2 means the requested configuration itself
// is invalid (bad flags, unresolvable charset), and 3 means the archive
// could not be opened or the Oracle hit an unrecoverable error mid-search.
const (
	ExitFound              = 0
	ExitExhausted          = 1
	ExitInvalidConfig      = 2
	ExitArchiveOrHardError = 3
)

// Error carries the process exit code the cmd package should use for a
// failed Run.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Outcome is the result of a completed (non-error) Run.
type Outcome struct {
	Found    bool
	Password []byte
	Attempts uint64
}

const defaultChunkSize = 1024
const defaultDelimiter = '\n'
const defaultMinLength = 1
const defaultMaxLength = 6
const defaultPatternSymbol = '@'

// Run validates cfg, builds the generator for its configured mode, drives
// the search against cfg.ArchivePath, and returns the outcome. A non-nil
// error is always an *Error carrying the exit code cmd.Execute should use.
func Run(ctx context.Context, cfg *config.Conf) (Outcome, error) {
	runID := uuid.New().String()[:8]
	logger := log.New(os.Stderr, fmt.Sprintf("[%s] ", runID), log.LstdFlags)

	src, closer, err := buildSource(cfg)
	if err != nil {
		return Outcome{}, &Error{Code: ExitInvalidConfig, Err: err}
	}
	if closer != nil {
		defer closer.Close()
	}

	archive, err := oracle.Open(cfg.ArchivePath)
	if err != nil {
		return Outcome{}, &Error{Code: ExitArchiveOrHardError, Err: err}
	}
	defer archive.Close()

	threads := cfg.Threads
	if threads < 1 {
		threads = runtime.NumCPU()
	}
	chunkSize := cfg.ChunkSize
	if chunkSize < 1 {
		chunkSize = defaultChunkSize
	}

	logger.Printf("starting search: archive=%s threads=%d chunk-size=%d", cfg.ArchivePath, threads, chunkSize)

	var progress atomic.Uint64
	done := make(chan struct{})
	if !cfg.Quiet {
		go reportProgress(logger, &progress, done)
	}

	result := search.Run(ctx, src, archive, search.Options{
		Threads:   threads,
		ChunkSize: chunkSize,
		Progress:  &progress,
	})
	close(done)

	if d, ok := src.(*candidate.Dictionary); ok {
		if skipped := d.Skipped(); skipped > 0 {
			logger.Printf("Warning: skipped %d oversized dictionary entries", skipped)
		}
	}

	switch result.Outcome {
	case search.Found:
		logger.Printf("match found after %d attempts", result.Attempts)
		return Outcome{Found: true, Password: result.Password, Attempts: result.Attempts}, nil
	case search.Aborted:
		logger.Printf("search aborted after %d attempts: %v", result.Attempts, result.Err)
		return Outcome{}, &Error{Code: ExitArchiveOrHardError, Err: result.Err}
	default:
		logger.Printf("search space exhausted after %d attempts", result.Attempts)
		return Outcome{Attempts: result.Attempts}, nil
	}
}

// reportProgress logs a snapshot of progress every 5 seconds until done is
// closed.
func reportProgress(logger *log.Logger, progress *atomic.Uint64, done <-chan struct{}) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			logger.Printf("progress: %d attempts", progress.Load())
		case <-done:
			return
		}
	}
}

// buildSource selects the configured attack mode and constructs its
// candidate.Source. The returned io.Closer, if non-nil, must be closed once
// the search completes (only the dictionary source holds one: its
// memory-mapped wordlist file).
//
// Exactly one mode field must be set: zero modes, or more than one, is
// rejected as an invalid configuration, for direct (non-CLI) callers as
// well. The command surface already rejects more than one, since
// cmd/root.go registers --dictionary, --pattern, and --brute-force as a
// cobra mutually-exclusive flag group. The switch below tests dictionary,
// then pattern, then brute-force; that order would only act as a precedence
// if the mode-count check were removed.
func buildSource(cfg *config.Conf) (candidate.Source, io.Closer, error) {
	modes := 0
	if cfg.DictionaryPath != "" {
		modes++
	}
	if cfg.Pattern != "" {
		modes++
	}
	if cfg.BruteForce {
		modes++
	}
	if modes == 0 {
		return nil, nil, errors.New("recovery: no attack mode selected (use --dictionary, --pattern, or --brute-force)")
	}
	if modes > 1 {
		return nil, nil, errors.New("recovery: more than one attack mode selected (--dictionary, --pattern, --brute-force are mutually exclusive)")
	}

	switch {
	case cfg.DictionaryPath != "":
		return buildDictionarySource(cfg)
	case cfg.Pattern != "":
		return buildPatternSource(cfg)
	default:
		return buildBruteForceSource(cfg)
	}
}

func buildDictionarySource(cfg *config.Conf) (candidate.Source, io.Closer, error) {
	sep := byte(defaultDelimiter)
	if cfg.Delimiter != "" {
		sep = cfg.Delimiter[0]
	}
	d, err := candidate.OpenDictionary(cfg.DictionaryPath, sep)
	if err != nil {
		return nil, nil, err
	}
	return d, d, nil
}

func buildPatternSource(cfg *config.Conf) (candidate.Source, io.Closer, error) {
	wildcard := rune(defaultPatternSymbol)
	if cfg.PatternSymbol != "" {
		wildcard = []rune(cfg.PatternSymbol)[0]
	}
	alphabet, err := charset.Resolve(cfg.Charset, cfg.CustomChars)
	if err != nil {
		return nil, nil, err
	}
	p, err := candidate.NewPattern([]rune(cfg.Pattern), wildcard, alphabet)
	if err != nil {
		return nil, nil, err
	}
	return p, nil, nil
}

func buildBruteForceSource(cfg *config.Conf) (candidate.Source, io.Closer, error) {
	alphabet, err := charset.Resolve(cfg.Charset, cfg.CustomChars)
	if err != nil {
		return nil, nil, err
	}
	minLen, maxLen := cfg.MinLength, cfg.MaxLength
	if minLen == 0 {
		minLen = defaultMinLength
	}
	if maxLen == 0 {
		maxLen = defaultMaxLength
	}
	bf, err := candidate.NewBruteForce(alphabet, minLen, maxLen)
	if err != nil {
		return nil, nil, err
	}
	return bf, nil, nil
}
