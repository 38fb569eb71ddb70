package reconciler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jukaradayi/abkhazia/internal/config"
	abkerrors "github.com/jukaradayi/abkhazia/internal/errors"
	"github.com/jukaradayi/abkhazia/internal/kaldi"
)

func okFinder(name string) (string, error) {
	return "/usr/bin/" + name, nil
}

// kaldiTree builds a complete fake kaldi installation.
func kaldiTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{kaldi.IRSTLMDir, kaldi.SRILMDir, filepath.Dir(kaldi.Sph2PipeBin)} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, kaldi.Sph2PipeBin), []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return root
}

// testReconciler wires a reconciler against a temp config dir, a fake
// finder and a local dictionary server. It returns the request count
// so tests can assert the download cache.
func testReconciler(t *testing.T) (*Reconciler, *int64) {
	t.Helper()

	var requests int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		fmt.Fprintln(w, "HELLO  HH AH0 L OW1")
	}))
	t.Cleanup(srv.Close)

	r := New(config.PathsIn(filepath.Join(t.TempDir(), "abkhazia")))
	r.Finder = okFinder
	r.DictURL = srv.URL
	return r, &requests
}

// snapshot reads every file under dir into a map.
func snapshot(t *testing.T, dir string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		files[e.Name()] = string(data)
	}
	return files
}

func TestRun_FreshInstall(t *testing.T) {
	r, _ := testReconciler(t)
	root := kaldiTree(t)
	t.Setenv("KALDI_PATH", root)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The live configuration is the template except for the patched
	// root line.
	got, err := os.ReadFile(r.Paths.ConfigFile)
	if err != nil {
		t.Fatalf("configuration not created: %v", err)
	}
	gotLines := strings.Split(string(got), "\n")
	wantLines := strings.Split(string(config.TemplateBytes()), "\n")
	if len(gotLines) != len(wantLines) {
		t.Fatalf("line count changed: %d != %d", len(gotLines), len(wantLines))
	}
	changed := 0
	for i := range gotLines {
		if gotLines[i] != wantLines[i] {
			changed++
			if gotLines[i] != "kaldi-directory: "+root {
				t.Errorf("unexpected changed line: %q", gotLines[i])
			}
		}
	}
	if changed != 1 {
		t.Errorf("expected exactly the root line to differ, got %d changes", changed)
	}

	// path.sh holds the resolved root.
	script, err := os.ReadFile(r.Paths.PathScript)
	if err != nil {
		t.Fatalf("path.sh not created: %v", err)
	}
	if !strings.Contains(string(script), "export KALDI_ROOT="+root+"\n") {
		t.Error("path.sh should export the resolved root")
	}

	// The dictionary was downloaded.
	if _, err := os.Stat(r.Paths.CMUDict); err != nil {
		t.Errorf("dictionary not downloaded: %v", err)
	}
}

func TestRun_Idempotent(t *testing.T) {
	r, requests := testReconciler(t)
	t.Setenv("KALDI_PATH", kaldiTree(t))

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	first := snapshot(t, r.Paths.ConfigDir)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	second := snapshot(t, r.Paths.ConfigDir)

	if len(first) != len(second) {
		t.Fatalf("file set changed between runs: %d != %d", len(first), len(second))
	}
	for name, content := range first {
		if second[name] != content {
			t.Errorf("%s changed on the second run", name)
		}
	}

	if got := atomic.LoadInt64(requests); got != 1 {
		t.Errorf("dictionary should be fetched once, got %d requests", got)
	}
}

func TestRun_MissingExecutableFailsFirst(t *testing.T) {
	r, requests := testReconciler(t)
	t.Setenv("KALDI_PATH", kaldiTree(t))
	r.Finder = func(name string) (string, error) {
		if name == "shorten" {
			return "", errors.New("not found")
		}
		return "/usr/bin/" + name, nil
	}

	err := r.Run(context.Background())
	if err == nil {
		t.Fatal("expected failure for missing executable")
	}
	if !strings.Contains(err.Error(), "shorten") || !strings.Contains(err.Error(), "etree.org") {
		t.Errorf("error should name the tool and its source: %v", err)
	}
	if abkerrors.GetExitCode(err) != 1 {
		t.Errorf("expected exit code 1, got %d", abkerrors.GetExitCode(err))
	}

	// Nothing further ran: no download, no configuration.
	if got := atomic.LoadInt64(requests); got != 0 {
		t.Errorf("no download should happen, got %d requests", got)
	}
	if _, err := os.Stat(r.Paths.ConfigFile); !os.IsNotExist(err) {
		t.Error("no configuration should be written")
	}
}

func TestRun_ConfigDrift(t *testing.T) {
	r, _ := testReconciler(t)
	t.Setenv("KALDI_PATH", kaldiTree(t))

	if err := os.MkdirAll(r.Paths.ConfigDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(r.Paths.ConfigFile, []byte("[A]\nx: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	err := r.Run(context.Background())
	if err == nil {
		t.Fatal("expected drift failure")
	}
	if !strings.Contains(err.Error(), "merge") {
		t.Errorf("drift error should instruct a manual merge: %v", err)
	}

	// The stale configuration was left alone.
	got, _ := os.ReadFile(r.Paths.ConfigFile)
	if string(got) != "[A]\nx: 1\n" {
		t.Error("stale configuration must not be modified")
	}
}

func TestRun_OneDriftIsEnough(t *testing.T) {
	r, _ := testReconciler(t)
	t.Setenv("KALDI_PATH", kaldiTree(t))

	// Template content minus a single parameter.
	var lines []string
	for _, line := range strings.Split(string(config.TemplateBytes()), "\n") {
		if strings.HasPrefix(line, "data-directory:") {
			continue
		}
		lines = append(lines, line)
	}
	if err := os.MkdirAll(r.Paths.ConfigDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(r.Paths.ConfigFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		t.Fatal(err)
	}

	err := r.Run(context.Background())
	if err == nil {
		t.Fatal("a single missing parameter should fail reconciliation")
	}
	if !strings.Contains(err.Error(), "data-directory") {
		t.Errorf("error should name the missing parameter: %v", err)
	}
}

func TestRun_InvalidEnvRootStopsBeforeToolkitChecks(t *testing.T) {
	r, _ := testReconciler(t)
	t.Setenv("KALDI_PATH", "/nonexistent/kaldi")

	err := r.Run(context.Background())
	if err == nil {
		t.Fatal("expected failure for invalid root")
	}
	if !strings.Contains(err.Error(), "not an existing directory") {
		t.Errorf("unexpected error: %v", err)
	}
	if strings.Contains(err.Error(), "sph2pipe") {
		t.Errorf("toolkit subpath checks should not have run: %v", err)
	}

	// The blank parameter stays blank.
	live, loadErr := config.Load(r.Paths.ConfigFile)
	if loadErr != nil {
		t.Fatal(loadErr)
	}
	if v, _ := live.Get("kaldi", "kaldi-directory"); v != "" {
		t.Errorf("kaldi-directory should remain blank, got %q", v)
	}
}

func TestRun_IncompleteToolkit(t *testing.T) {
	r, _ := testReconciler(t)
	root := kaldiTree(t)
	if err := os.RemoveAll(filepath.Join(root, kaldi.IRSTLMDir)); err != nil {
		t.Fatal(err)
	}
	t.Setenv("KALDI_PATH", root)

	err := r.Run(context.Background())
	if err == nil {
		t.Fatal("expected failure for incomplete installation")
	}
	if !strings.Contains(err.Error(), "install_irstlm.sh") {
		t.Errorf("error should give the exact install command: %v", err)
	}

	// path.sh was not generated.
	if _, statErr := os.Stat(r.Paths.PathScript); !os.IsNotExist(statErr) {
		t.Error("path.sh should not be written when validation fails")
	}
}

func TestRun_ConfiguredRootWinsOverEnv(t *testing.T) {
	r, _ := testReconciler(t)
	configured := kaldiTree(t)
	t.Setenv("KALDI_PATH", "/nonexistent/kaldi")

	if err := os.MkdirAll(r.Paths.ConfigDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := config.Instantiate(r.Paths.ConfigFile); err != nil {
		t.Fatal(err)
	}
	if err := config.PatchParam(r.Paths.ConfigFile, "kaldi", "kaldi-directory", configured); err != nil {
		t.Fatal(err)
	}

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	script, _ := os.ReadFile(r.Paths.PathScript)
	if !strings.Contains(string(script), "export KALDI_ROOT="+configured+"\n") {
		t.Error("configured root should win over the environment")
	}
}
