// Package main is the entry point for the pfxcrack binary.
// All flag parsing, config-file loading, and environment-variable overrides
// are handled by the cmd/ package via Cobra and Viper.  main() simply
// delegates to cmd.Execute(), which also owns the process exit code.
package main

import "github.com/go-i2p/pfxcrack/cmd"

func main() { cmd.Execute() }
