// Package fetch downloads the reference artifacts abkhazia needs.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// CMUDictURL is the fixed location of the CMU pronouncing dictionary.
const CMUDictURL = "http://svn.code.sf.net/p/cmusphinx/code/trunk/cmudict/cmudict.0.7a"

// Func downloads url to dest. The reconciler takes one of these so the
// CLI can swap in a progress-rendering variant.
type Func func(ctx context.Context, url, dest string) error

// Fetch downloads url to dest through a temporary file, reporting
// completion fractions to onProgress when the response advertises its
// length. onProgress may be nil.
func Fetch(ctx context.Context, url, dest string, onProgress func(float64)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	partial := dest + ".partial"
	out, err := os.Create(partial)
	if err != nil {
		return err
	}

	var src io.Reader = resp.Body
	if onProgress != nil && resp.ContentLength > 0 {
		src = &progressReader{r: resp.Body, total: resp.ContentLength, report: onProgress}
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(partial)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(partial)
		return err
	}

	if onProgress != nil {
		onProgress(1.0)
	}
	return os.Rename(partial, dest)
}

type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	report func(float64)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.read += int64(n)
	if n > 0 {
		p.report(float64(p.read) / float64(p.total))
	}
	return n, err
}
