package render

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/caseworks/mysteryforge/internal/batch"
)

// pdfTimeout bounds one pandoc invocation. A document that cannot
// convert in this window counts as a failed item, not a hung run.
const pdfTimeout = 30 * time.Second

// PDFRenderer converts markdown documents to PDF by shelling out to
// pandoc. A missing binary disables PDF output; per-document failures
// leave that document markdown-only.
type PDFRenderer struct {
	binary string
	opts   batch.Options
}

// NewPDFRenderer locates pandoc on PATH. Available reports whether it
// was found.
func NewPDFRenderer() *PDFRenderer {
	r := &PDFRenderer{
		opts: batch.Options{MaxConcurrent: 4, MaxAttempts: 1},
	}
	if path, err := exec.LookPath("pandoc"); err == nil {
		r.binary = path
	}
	return r
}

// SetBinary overrides the pandoc path (for testing).
func (r *PDFRenderer) SetBinary(path string) {
	r.binary = path
}

// Available reports whether PDF conversion can run at all.
func (r *PDFRenderer) Available() bool {
	return r.binary != ""
}

// pdfPath derives the output path for a markdown document.
func pdfPath(mdPath string) string {
	return strings.TrimSuffix(mdPath, ".md") + ".pdf"
}

// RenderAll converts every markdown file to a sibling PDF. The returned
// slice is index-aligned with the input: the PDF path on success, ""
// where conversion failed or the renderer is unavailable.
func (r *PDFRenderer) RenderAll(ctx context.Context, mdPaths []string, progress io.Writer) []string {
	out := make([]string, len(mdPaths))
	if !r.Available() || len(mdPaths) == 0 {
		return out
	}

	runner := batch.New(func(ctx context.Context, mdPath string) (string, error) {
		target := pdfPath(mdPath)
		tctx, cancel := context.WithTimeout(ctx, pdfTimeout)
		defer cancel()

		cmd := exec.CommandContext(tctx, r.binary, mdPath, "-o", target)
		if output, err := cmd.CombinedOutput(); err != nil {
			return "", fmt.Errorf("pandoc %s: %w: %s", mdPath, err, strings.TrimSpace(string(output)))
		}
		return target, nil
	}, r.opts)
	runner.SetProgress(progress)

	results := runner.Run(ctx, mdPaths)
	for i, res := range results {
		if res.OK {
			out[i] = res.Value
		}
	}
	return out
}
