// Package main implements the cxxflow CLI.
// It builds control flow graphs for C and C++ functions and reports complexity
// and dead code across a source tree.
package main

import (
	"os"

	"github.com/l3aro/cxxflow/cmd/cxxflow/commands"
)

var (
	version   = "dev"
	buildTime = ""
)

func main() {
	commands.RootCmd.Flags().BoolP("version", "v", false, "Print version information")
	commands.RootCmd.SetVersionTemplate(`cxxflow version {{.Version}}
`)
	commands.RootCmd.Version = version
	if buildTime != "" {
		commands.RootCmd.Version = version + " (built " + buildTime + ")"
	}

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
