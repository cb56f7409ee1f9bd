package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagFormat    string
	flagLogLevel  string
	flagLogFormat string
	flagVars      map[string]string
)

// logger is built from the log flags before any command runs.
var logger = slog.Default()

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "quarry",
	Short:         "Bind Go interfaces to SQL statements",
	Long:          "Quarry generates typed mapper adapters, validates statement definition files and runs statements against SQLite.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(flagFormat); err != nil {
			return err
		}
		logger = newLogger(flagLogLevel, flagLogFormat, cmd.ErrOrStderr())
		return nil
	},
	// No Run; prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "log format: text|json")
	rootCmd.PersistentFlags().StringToStringVar(&flagVars, "var", nil, "definition variable as name=value (repeatable)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(execCmd)
}
