package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jukaradayi/abkhazia/internal/config"
	"github.com/jukaradayi/abkhazia/internal/errors"
	"github.com/jukaradayi/abkhazia/internal/logging"
	"github.com/jukaradayi/abkhazia/internal/prepare"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare <corpus-dir>",
	Short: "Convert a raw AIC corpus to the abkhazia format",
	Long: `prepare converts a revised Articulation Index Corpus distribution
(https://catalog.ldc.upenn.edu/LDC2015S12) to the abkhazia corpus
format: segments, utt2spk, text and lexicon.txt. The lexicon is built
from the CMU pronouncing dictionary downloaded by 'abkhazia install'.`,
	Args: cobra.ExactArgs(1),
	RunE: runPrepare,
}

var prepareOutput string

func init() {
	prepareCmd.Flags().StringVarP(&prepareOutput, "output", "o", "",
		"output directory (default <corpus-dir>/abkhazia)")
	rootCmd.AddCommand(prepareCmd)
}

func runPrepare(cmd *cobra.Command, args []string) error {
	input, err := filepath.Abs(args[0])
	if err != nil {
		return errors.New(errors.ExitGeneralError, fmt.Sprintf("invalid corpus path: %s", args[0]))
	}
	if info, err := os.Stat(input); err != nil || !info.IsDir() {
		return errors.New(errors.ExitGeneralError, fmt.Sprintf("corpus directory not found: %s", input))
	}

	paths := config.DefaultPaths()
	if _, err := os.Stat(paths.CMUDict); err != nil {
		return errors.New(errors.ExitGeneralError,
			"CMU dictionary not found, run 'abkhazia install' first")
	}

	output := prepareOutput
	if output == "" {
		output = filepath.Join(input, "abkhazia")
	}

	logging.Debug("preparing corpus", "input", input, "output", output)
	p := &prepare.Preparator{
		InputDir:  input,
		OutputDir: output,
		CMUDict:   paths.CMUDict,
	}
	if err := p.Prepare(); err != nil {
		return errors.Wrap(errors.ExitGeneralError, "corpus preparation failed", err)
	}

	logSuccess("Corpus prepared")
	fmt.Printf("  Output: %s\n", output)
	return nil
}
