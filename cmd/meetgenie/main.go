package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "meetgenie",
		Short: "Meeting session and recording orchestration service",
		Long: `meetgenie coordinates automated attendance at video meetings across
multiple conferencing platforms, manages recording sessions layered on top
of those meetings, and reports aggregated health state.`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
