package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestFetch(t *testing.T) {
	content := "ABKHAZIA  AH B K AA Z IY AH\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(content))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "dict", "cmudict.0.7a")
	if err := Fetch(context.Background(), srv.URL, dest, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("failed to read downloaded file: %v", err)
	}
	if string(got) != content {
		t.Errorf("unexpected content: %q", got)
	}

	if _, err := os.Stat(dest + ".partial"); !os.IsNotExist(err) {
		t.Error("partial file should be gone after a successful fetch")
	}
}

func TestFetch_Progress(t *testing.T) {
	body := make([]byte, 64*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	var fractions []float64
	dest := filepath.Join(t.TempDir(), "artifact")
	err := Fetch(context.Background(), srv.URL, dest, func(frac float64) {
		fractions = append(fractions, frac)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fractions) == 0 {
		t.Fatal("expected progress reports")
	}
	for i := 1; i < len(fractions); i++ {
		if fractions[i] < fractions[i-1] {
			t.Fatalf("progress went backwards: %v then %v", fractions[i-1], fractions[i])
		}
	}
	if last := fractions[len(fractions)-1]; last != 1.0 {
		t.Errorf("expected final fraction 1.0, got %v", last)
	}
}

func TestFetch_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "artifact")
	if err := Fetch(context.Background(), srv.URL, dest, nil); err == nil {
		t.Fatal("expected error for 404 response")
	}

	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("no file should be created on failure")
	}
}

func TestFetch_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	dest := filepath.Join(t.TempDir(), "artifact")
	if err := Fetch(context.Background(), srv.URL, dest, nil); err == nil {
		t.Fatal("expected transport error")
	}
}
