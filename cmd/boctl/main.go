package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "boctl",
		Short: "Back-office maintenance tool",
		Long: `boctl edits JSON documents by dotted path and validates or imports
geography seed files.`,
		SilenceUsage: true,
	}
	root.AddCommand(newPathCmd(), newGeoCmd())
	return root
}
