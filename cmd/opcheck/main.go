package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"opcheck/internal/version"
)

// errSilent завершает процесс с кодом 1, ничего не печатая:
// диагностики уже выведены.
var errSilent = errors.New("")

var rootCmd = &cobra.Command{
	Use:   "opcheck",
	Short: "Operator resolution and coercion checker",
	Long: `opcheck resolves operator expressions against declared types and reports
the typed trees, implicit conversions and diagnostics the engine produces.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(versionCmd)
	addRootFlags(rootCmd)
}

// addRootFlags registers the persistent flags shared by every command.
func addRootFlags(cmd *cobra.Command) {
	// Глобальные флаги
	flags := cmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics per case")
	flags.String("trace", "", "write trace events to a file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.Int("trace-ring-size", 4096, "events kept by the ring tracer")
}

// main executes the root command. Any error exits with status 1.
func main() {
	rootCmd.Version = version.Version
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}

// resolveColor reads --color and configures fatih/color accordingly.
func resolveColor(cmd *cobra.Command) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	var enabled bool
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "on", "always":
		enabled = true
	case "off", "never":
		enabled = false
	case "", "auto":
		enabled = isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == ""
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	color.NoColor = !enabled
	return enabled, nil
}
