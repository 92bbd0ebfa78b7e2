package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "teng-render",
	Short: "Render a template with a data file",
	Long: `teng-render loads a json, yaml, toml or msgpack document into a data tree,
renders a template against it and prints the error log to stderr.
The exit code is the render status (0 on success).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRender,
}

// statusError carries a non-zero render status out of RunE.
type statusError struct {
	status int
}

func (e statusError) Error() string {
	return fmt.Sprintf("render finished with status %d", e.status)
}

func init() {
	rootCmd.AddCommand(functionsCmd)

	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text|json)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize diagnostics (auto|on|off)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var se statusError
		if errors.As(err, &se) {
			os.Exit(se.status)
		}
		fmt.Fprintln(os.Stderr, "teng-render:", err)
		os.Exit(64)
	}
}
