package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jukaradayi/abkhazia/internal/config"
	"github.com/jukaradayi/abkhazia/internal/kaldi"
	"github.com/jukaradayi/abkhazia/internal/probe"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the state of the external dependencies",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	paths := config.DefaultPaths()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DEPENDENCY\tSTATUS\tPATH")
	fmt.Fprintln(w, "----------\t------\t----")

	for _, res := range probe.LookupAll(nil) {
		fmt.Fprintf(w, "%s\t%s\t%s\n", res.Name, formatFound(res.Found), res.Path)
	}

	fmt.Fprintf(w, "cmu dictionary\t%s\t%s\n",
		formatFound(fileExists(paths.CMUDict)), existingPath(paths.CMUDict))
	fmt.Fprintf(w, "configuration\t%s\t%s\n",
		formatFound(fileExists(paths.ConfigFile)), existingPath(paths.ConfigFile))

	root, rootErr := statusKaldiRoot(paths)
	if rootErr != nil {
		fmt.Fprintf(w, "kaldi\t%s\t\n", formatFound(false))
	} else if err := kaldi.Validate(root); err != nil {
		fmt.Fprintf(w, "kaldi\t%s\t%s\n", warningStyle.Render("⚠ incomplete"), root)
	} else {
		fmt.Fprintf(w, "kaldi\t%s\t%s\n", formatFound(true), root)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	if rootErr != nil {
		logInfo("Run 'abkhazia install' to finish the setup")
	}
	return nil
}

// statusKaldiRoot resolves the kaldi root without patching anything.
func statusKaldiRoot(paths *config.Paths) (string, error) {
	configured := ""
	if live, err := config.Load(paths.ConfigFile); err == nil {
		configured, _ = live.Get("kaldi", "kaldi-directory")
	}
	root, _, err := kaldi.ResolveRoot(configured, os.Getenv("KALDI_PATH"))
	return root, err
}

func formatFound(found bool) string {
	if found {
		return successStyle.Render("✓ found")
	}
	return errorStyle.Render("✗ missing")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func existingPath(path string) string {
	if fileExists(path) {
		return path
	}
	return ""
}
