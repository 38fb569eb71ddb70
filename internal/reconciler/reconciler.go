// Package reconciler runs the installation sequence: probe the
// external tools, fetch the CMU dictionary, materialize the live
// configuration, check it against the shipped template, resolve and
// validate the kaldi root, and regenerate path.sh. Every step is
// fail-fast and the whole sequence is idempotent.
package reconciler

import (
	"context"
	"os"

	"github.com/jukaradayi/abkhazia/internal/config"
	"github.com/jukaradayi/abkhazia/internal/errors"
	"github.com/jukaradayi/abkhazia/internal/fetch"
	"github.com/jukaradayi/abkhazia/internal/kaldi"
	"github.com/jukaradayi/abkhazia/internal/logging"
	"github.com/jukaradayi/abkhazia/internal/probe"
)

// Reconciler holds the injectable pieces of the install sequence so
// the whole flow can run against a temporary directory in tests.
type Reconciler struct {
	Paths *config.Paths

	// Finder resolves executable names; nil means exec.LookPath.
	Finder probe.Finder

	// Fetch downloads an artifact; nil means fetch.Fetch without
	// progress reporting.
	Fetch fetch.Func

	// DictURL overrides the dictionary location, for tests.
	DictURL string
}

// New returns a Reconciler with the default probe and fetch behavior.
func New(paths *config.Paths) *Reconciler {
	return &Reconciler{Paths: paths}
}

func (r *Reconciler) fetchFunc() fetch.Func {
	if r.Fetch != nil {
		return r.Fetch
	}
	return func(ctx context.Context, url, dest string) error {
		return fetch.Fetch(ctx, url, dest, nil)
	}
}

func (r *Reconciler) dictURL() string {
	if r.DictURL != "" {
		return r.DictURL
	}
	return fetch.CMUDictURL
}

// Run executes the reconciliation from scratch. Already-satisfied
// steps are re-validated cheaply and skipped.
func (r *Reconciler) Run(ctx context.Context) error {
	if err := r.checkExecutables(); err != nil {
		return err
	}
	if err := r.acquireDictionary(ctx); err != nil {
		return err
	}
	created, err := r.materializeConfig()
	if err != nil {
		return err
	}
	if !created {
		if err := r.reconcileConfig(); err != nil {
			return err
		}
	}
	root, err := r.resolveRoot()
	if err != nil {
		return err
	}
	if err := kaldi.Validate(root); err != nil {
		return err
	}

	logging.Debug("writing path script", "path", r.Paths.PathScript, "root", root)
	if err := kaldi.WritePathScript(root, r.Paths.PathScript); err != nil {
		return errors.ConfigError("failed to write path.sh", err)
	}
	return nil
}

func (r *Reconciler) checkExecutables() error {
	for _, e := range probe.Required {
		res := probe.Lookup(r.Finder, e.Name)
		if !res.Found {
			return errors.MissingExecutable(e.Name, e.Source)
		}
		logging.Debug("found executable", "name", e.Name, "path", res.Path)
	}
	return nil
}

func (r *Reconciler) acquireDictionary(ctx context.Context) error {
	if _, err := os.Stat(r.Paths.CMUDict); err == nil {
		logging.Debug("dictionary already present", "path", r.Paths.CMUDict)
		return nil
	}

	url := r.dictURL()
	logging.Debug("downloading dictionary", "url", url, "dest", r.Paths.CMUDict)
	if err := r.fetchFunc()(ctx, url, r.Paths.CMUDict); err != nil {
		return errors.DownloadFailed(url, err)
	}
	return nil
}

// materializeConfig creates the live configuration from the template
// when absent. It reports whether a new file was created.
func (r *Reconciler) materializeConfig() (bool, error) {
	if _, err := os.Stat(r.Paths.ConfigFile); err == nil {
		return false, nil
	}

	logging.Debug("instantiating configuration", "path", r.Paths.ConfigFile)
	if err := config.Instantiate(r.Paths.ConfigFile); err != nil {
		return false, errors.ConfigError("failed to create configuration", err)
	}
	return true, nil
}

func (r *Reconciler) reconcileConfig() error {
	live, err := config.Load(r.Paths.ConfigFile)
	if err != nil {
		return errors.ConfigError("failed to load configuration", err)
	}
	if err := config.Reconcile(config.Template(), live); err != nil {
		return errors.ConfigDrift(r.Paths.ConfigFile, err.Error())
	}
	return nil
}

// resolveRoot reads kaldi-directory from the live configuration,
// falls back to KALDI_PATH, and patches the resolved path back into
// the configuration when the parameter was blank.
func (r *Reconciler) resolveRoot() (string, error) {
	live, err := config.Load(r.Paths.ConfigFile)
	if err != nil {
		return "", errors.ConfigError("failed to load configuration", err)
	}

	configured, _ := live.Get("kaldi", "kaldi-directory")
	root, fromEnv, err := kaldi.ResolveRoot(configured, os.Getenv("KALDI_PATH"))
	if err != nil {
		return "", err
	}

	if fromEnv {
		logging.Debug("patching kaldi-directory", "root", root)
		if err := config.PatchParam(r.Paths.ConfigFile, "kaldi", "kaldi-directory", root); err != nil {
			return "", errors.ConfigError("failed to patch configuration", err)
		}
	}
	return root, nil
}
