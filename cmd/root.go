package cmd

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/go-i2p/pfxcrack/config"
	"github.com/go-i2p/pfxcrack/internal/recovery"
)

var (
	cfgFile string
	c       *config.Conf = &config.Conf{}
)

// rootCmd represents the base command when called without any subcommands.
// pfxcrack has no subcommands: the single positional argument is the
// archive to recover, and the attack mode is selected by flag.
var rootCmd = &cobra.Command{
	Use:   "pfxcrack <archive>",
	Short: "Recover the password protecting a PKCS#12 (.p12/.pfx) archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoot,
}

func runRoot(cmd *cobra.Command, args []string) error {
	if err := viper.Unmarshal(c); err != nil {
		return &exitError{code: recovery.ExitInvalidConfig, cause: fmt.Errorf("cmd: bind configuration: %w", err)}
	}
	c.ArchivePath = args[0]

	outcome, err := recovery.Run(cmd.Context(), c)
	if err != nil {
		var rerr *recovery.Error
		if errors.As(err, &rerr) {
			fmt.Fprintln(os.Stderr, rerr.Err)
			return &exitError{code: rerr.Code, cause: rerr.Err}
		}
		fmt.Fprintln(os.Stderr, err)
		return &exitError{code: recovery.ExitArchiveOrHardError, cause: err}
	}

	if !outcome.Found {
		return &exitError{code: recovery.ExitExhausted, cause: errors.New("search space exhausted without a match")}
	}

	os.Stdout.Write(outcome.Password)
	os.Stdout.Write([]byte("\n"))
	return nil
}

// exitError carries the process exit code Execute should use for a given
// RunE failure. rootCmd.Execute()'s own error return can't otherwise
// distinguish "invalid flags" from "archive could not be opened" from
// "search exhausted", so every RunE failure path wraps its cause in one of
// these instead of a bare error.
type exitError struct {
	code  int
	cause error
}

func (e *exitError) Error() string { return e.cause.Error() }
func (e *exitError) Unwrap() error { return e.cause }

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	var ee *exitError
	if errors.As(err, &ee) {
		os.Exit(ee.code)
	}
	// Any error cobra itself produced (unknown flag, wrong arg count, a
	// rejected mutually-exclusive flag combination) is a usage problem.
	os.Exit(recovery.ExitInvalidConfig)
}

// ExecuteWithArgs runs the command tree with the provided argument list
// instead of os.Args. It is intended for use in tests where invoking
// pfxcrack with specific flags without modifying os.Args is required.
func ExecuteWithArgs(args []string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// LookupFlag looks up a flag on the root command.
func LookupFlag(flagName string) *pflag.Flag {
	return rootCmd.Flags().Lookup(flagName)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pfxcrack.yaml)")

	rootCmd.Flags().String("dictionary", "", "dictionary mode: path to a newline-delimited wordlist")
	rootCmd.Flags().String("pattern", "", "pattern mode: template with wildcard runes to fill in")
	rootCmd.Flags().String("pattern-symbol", "@", "wildcard rune used within --pattern")
	rootCmd.Flags().Bool("brute-force", false, "brute-force mode: enumerate every string in the length range")
	rootCmd.Flags().String("charset", "", "charset selector for pattern/brute-force mode, any of a,A,n,s,x")
	rootCmd.Flags().String("custom-chars", "", "extra alphabet characters appended to --charset")
	rootCmd.Flags().Int("min-length", 1, "brute-force minimum candidate length")
	rootCmd.Flags().Int("max-length", 6, "brute-force maximum candidate length")
	rootCmd.Flags().String("delimiter", "\n", "dictionary entry separator")
	rootCmd.Flags().Int("threads", runtime.NumCPU(), "worker goroutine count")
	rootCmd.Flags().Int("chunk-size", 1024, "candidates each worker pulls between match/abort polls")
	rootCmd.Flags().Bool("quiet", false, "suppress periodic progress logging")

	rootCmd.MarkFlagsMutuallyExclusive("dictionary", "pattern", "brute-force")

	if err := viper.BindPFlags(rootCmd.Flags()); err != nil {
		cobra.CheckErr(err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".pfxcrack" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pfxcrack")
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	// SetEnvPrefix ensures that only PFXCRACK_* variables are mapped.
	// Without this call viper reads bare names like THREADS, which collides
	// with variables set by container runtimes and shell environments.
	viper.SetEnvPrefix("pfxcrack")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
