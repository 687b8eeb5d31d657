// Package pdf counts document pages and names the page images extracted
// from them.
package pdf

import (
	"fmt"
	"path/filepath"
	"strings"

	pdfx "github.com/ledongthuc/pdf"

	"rtk/internal/services"
)

// PageCount returns the number of pages in the PDF at path.
func PageCount(path string) (n int, err error) {
	// The reader panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			n = 0
			err = services.Wrap(services.ErrValidation, "pdf", "count pages", path, fmt.Errorf("%v", r))
		}
	}()

	f, r, err := pdfx.Open(path)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "pdf", "open", path, err)
	}
	defer f.Close()

	n = r.NumPage()
	if n <= 0 {
		return 0, services.Wrap(services.ErrValidation, "pdf", "count pages", path+": no page count in document", nil)
	}
	return n, nil
}

// PageDir returns the directory receiving the page images of pdfPath:
// {outputDir}/{stem}, where outputDir defaults to the PDF's directory.
func PageDir(pdfPath, outputDir string) string {
	if strings.TrimSpace(outputDir) == "" {
		outputDir = filepath.Dir(pdfPath)
	}
	base := filepath.Base(pdfPath)
	return filepath.Join(outputDir, strings.TrimSuffix(base, filepath.Ext(base)))
}

// PagePath names the image of the zero-based page index inside dir.
func PagePath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("f%d.jpg", index))
}

// PagePaths lists the images of pages startOn through n-1.
func PagePaths(dir string, startOn, n int) []string {
	if startOn < 0 {
		startOn = 0
	}
	var out []string
	for i := startOn; i < n; i++ {
		out = append(out, PagePath(dir, i))
	}
	return out
}
