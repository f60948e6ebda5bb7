// Package config defines the Conf struct used by the cmd package to bind cobra
// flags and viper configuration values into a single typed structure.
package config

// Conf holds the configuration values populated by viper from cobra flags,
// environment variables, or a config file.
//
// mapstructure tags are required wherever the lowercased Go field name does
// not match the cobra flag name that viper binds.  Without them,
// viper.Unmarshal silently leaves those fields at their zero value.
type Conf struct {
	// ArchivePath is the positional argument: the .p12/.pfx file to recover.
	ArchivePath string `mapstructure:"-"`

	// Mode selection. Exactly one of DictionaryPath / Pattern / BruteForce
	// must be set. The command surface rejects more than one with a cobra
	// mutually-exclusive flag group before Conf ever reaches the recovery
	// package (see cmd/root.go); recovery.Run rejects zero or more than one.
	DictionaryPath string `mapstructure:"dictionary"`
	Pattern        string `mapstructure:"pattern"`
	BruteForce     bool   `mapstructure:"brute-force"`

	// PatternSymbol is the wildcard rune within Pattern. Corresponds to
	// --pattern-symbol.
	PatternSymbol string `mapstructure:"pattern-symbol"`

	// Charset and CustomChars feed the Charset Resolver for pattern and
	// brute-force mode.
	Charset     string `mapstructure:"charset"`
	CustomChars string `mapstructure:"custom-chars"`

	// MinLength and MaxLength bound brute-force candidate lengths.
	MinLength int `mapstructure:"min-length"`
	MaxLength int `mapstructure:"max-length"`

	// Delimiter is the dictionary entry separator byte, given as a
	// single-character string on the command line.
	Delimiter string `mapstructure:"delimiter"`

	// Threads is the worker count for the search driver. Zero means "use
	// runtime.NumCPU()" (the cobra default already resolves this, but a
	// config file or env override could still supply 0).
	Threads int `mapstructure:"threads"`

	// ChunkSize is the number of consecutive candidates handed to a worker
	// between Found-Flag polls.
	ChunkSize int `mapstructure:"chunk-size"`

	// Quiet suppresses the periodic progress line; it never affects the
	// final result line or the exit code.
	Quiet bool `mapstructure:"quiet"`
}
