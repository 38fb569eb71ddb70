// Package kaldi resolves and validates the external kaldi
// distribution that abkhazia drives.
package kaldi

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jukaradayi/abkhazia/internal/errors"
)

//go:embed share/path.sh
var pathScriptTemplate string

// Subpaths of the kaldi root that a usable installation must expose.
const (
	Sph2PipeBin = "tools/sph2pipe_v2.5/sph2pipe"
	IRSTLMDir   = "tools/irstlm"
	SRILMDir    = "tools/srilm"
)

// ResolveRoot picks the kaldi root from the configured value, falling
// back to the environment value, and checks the winner is an existing
// directory. It returns the absolute root and whether the environment
// supplied it (meaning the configuration was blank and should be
// patched).
func ResolveRoot(configured, env string) (root string, fromEnv bool, err error) {
	switch {
	case configured != "":
		root = configured
	case env != "":
		root, fromEnv = env, true
	default:
		return "", false, errors.UnresolvedRoot(
			"kaldi-directory is blank and KALDI_PATH is not set")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", false, errors.UnresolvedRoot(fmt.Sprintf("invalid path %s", root))
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", false, errors.UnresolvedRoot(
			fmt.Sprintf("%s is not an existing directory", abs))
	}

	return abs, fromEnv, nil
}

// Validate checks that the installation under root exposes the
// sph2pipe binary and the irstlm and srilm tool directories. Each
// absence is a distinct failure with its own remediation.
func Validate(root string) error {
	sph2pipe := filepath.Join(root, Sph2PipeBin)
	if info, err := os.Stat(sph2pipe); err != nil || info.IsDir() {
		return errors.MissingToolkitSubpath(sph2pipe,
			"rebuild the kaldi tools directory (make -C "+filepath.Join(root, "tools")+")")
	}

	irstlm := filepath.Join(root, IRSTLMDir)
	if info, err := os.Stat(irstlm); err != nil || !info.IsDir() {
		return errors.MissingToolkitSubpath(irstlm,
			"run 'cd "+filepath.Join(root, "tools")+" && ./extras/install_irstlm.sh'")
	}

	srilm := filepath.Join(root, SRILMDir)
	if info, err := os.Stat(srilm); err != nil || !info.IsDir() {
		return errors.MissingToolkitSubpath(srilm,
			"download SRILM from http://www.speech.sri.com/projects/srilm "+
				"and run kaldi's extras/install_srilm.sh")
	}

	return nil
}

// WritePathScript renders the path.sh template with root substituted
// into the KALDI_ROOT line and writes it to dest, overwriting any
// previous version.
func WritePathScript(root, dest string) error {
	lines := strings.Split(pathScriptTemplate, "\n")
	substituted := false
	for i, line := range lines {
		if strings.HasPrefix(line, "export KALDI_ROOT=") {
			lines[i] = "export KALDI_ROOT=" + root
			substituted = true
			break
		}
	}
	if !substituted {
		return fmt.Errorf("path.sh template has no KALDI_ROOT line")
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte(strings.Join(lines, "\n")), 0644)
}
