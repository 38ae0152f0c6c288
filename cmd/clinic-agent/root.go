package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "clinic-agent",
	Short: "Conversational agent for clinic policy questions and scheduling",
	Long: `clinic-agent runs a graph-driven conversational agent that answers
policy questions from the clinic handbook and walks patients through
booking or rescheduling appointments, pausing mid-conversation whenever
a human decision is needed.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
