package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jukaradayi/abkhazia/internal/config"
	"github.com/jukaradayi/abkhazia/internal/logging"
	"github.com/jukaradayi/abkhazia/internal/reconciler"
	"github.com/jukaradayi/abkhazia/internal/ui"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Set up the configuration and check the external dependencies",
	Long: `install checks that the required external tools (sox, shorten,
festival) are on PATH, downloads the CMU pronouncing dictionary,
creates or checks the abkhazia.conf configuration, locates the kaldi
distribution and regenerates path.sh.

The kaldi root is read from the kaldi-directory parameter of
abkhazia.conf; when that parameter is blank it falls back to the
KALDI_PATH environment variable and records the result.

The command is idempotent: re-run it after fixing whatever it
complained about.`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	paths := config.DefaultPaths()
	logging.Debug("starting install", "configDir", paths.ConfigDir)

	r := reconciler.New(paths)
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		r.Fetch = func(ctx context.Context, url, dest string) error {
			logInfo("Downloading %s", url)
			return ui.Download(ctx, url, dest)
		}
	}

	if err := r.Run(cmd.Context()); err != nil {
		return err
	}

	logSuccess("abkhazia is configured")
	fmt.Printf("  Configuration: %s\n", paths.ConfigFile)
	fmt.Printf("  Path script:   %s\n", paths.PathScript)
	return nil
}
