package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "gemini-coder",
		Short: "Conversational coding agent with a supervised process table",
		Long: "gemini-coder turns model responses into file operations and supervised\n" +
			"shell commands. It extracts JSON action requests from generator output,\n" +
			"normalizes them, and executes them against the local workspace.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "path to TOML config file")

	root.AddCommand(newRunCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
