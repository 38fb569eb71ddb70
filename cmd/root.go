package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jukaradayi/abkhazia/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "abkhazia",
	Short: "Speech corpus processing toolkit CLI",
	Long: `abkhazia prepares speech corpora for use with the kaldi toolkit.

Typical workflow:
  - abkhazia install          set up the configuration and check the
                              external tools (sox, shorten, festival, kaldi)
  - abkhazia status           report what is installed and what is missing
  - abkhazia prepare <dir>    convert a raw corpus to the abkhazia format`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose, false, nil)
	},
}

var verbose bool

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper functions for consistent output

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func logInfo(format string, args ...interface{}) {
	fmt.Fprintln(os.Stdout, infoStyle.Render("ℹ ")+fmt.Sprintf(format, args...))
}

func logSuccess(format string, args ...interface{}) {
	fmt.Fprintln(os.Stdout, successStyle.Render("✓ ")+fmt.Sprintf(format, args...))
}

func logWarning(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, warningStyle.Render("⚠ ")+fmt.Sprintf(format, args...))
}

func logError(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("✗ ")+fmt.Sprintf(format, args...))
}
