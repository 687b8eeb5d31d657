package task

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"rtk/internal/command"
	"rtk/internal/fileutil"
	"rtk/internal/inputs"
	"rtk/internal/pdf"
	"rtk/internal/services"
)

// DefaultPageTemplate renders one PDF page to an image with MuPDF.
const DefaultPageTemplate = "mutool draw -r 300 -o %out % %page"

// PDFExtract renders the pages of each input PDF to
// {OutputDir or the PDF directory}/{stem}/f{i}.jpg for i from StartOn.
// Pages already on disk are not rendered again.
type PDFExtract struct {
	Template  command.Template
	Runner    command.Runner
	OutputDir string
	StartOn   int
	// PageCount defaults to pdf.PageCount.
	PageCount func(path string) (int, error)
}

func (p *PDFExtract) Label() string { return "Extracting pages" }

func (p *PDFExtract) count(path string) (int, error) {
	if p.PageCount != nil {
		return p.PageCount(path)
	}
	return pdf.PageCount(path)
}

// Pages lists the page images expected for ref.
func (p *PDFExtract) Pages(ref inputs.Ref) ([]string, error) {
	n, err := p.count(ref.URI)
	if err != nil {
		return nil, err
	}
	return pdf.PagePaths(pdf.PageDir(ref.URI, p.OutputDir), p.StartOn, n), nil
}

func (p *PDFExtract) Done(ref inputs.Ref) bool {
	pages, err := p.Pages(ref)
	if err != nil {
		return false
	}
	for _, page := range pages {
		if !Exists(page) {
			return false
		}
	}
	return true
}

func (p *PDFExtract) Work(ctx context.Context, ref inputs.Ref) error {
	pages, err := p.Pages(ref)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return nil
	}
	dir := filepath.Dir(pages[0])
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrStorage, "pdf-extract", "create directory", dir, err)
	}

	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if Exists(page) {
			continue
		}
		index := p.StartOn + i
		part := partPath(page)
		binary, args := p.Template.PageArgs(ref.URI, part, index+1)
		if _, err := p.Runner.Run(ctx, binary, args); err != nil {
			_ = fileutil.RemoveIfExists(part)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return services.Wrap(services.ErrExternalTool, "pdf-extract", "render page",
				p.Template.RenderPage(ref.URI, part, index+1), err)
		}
		if err := os.Rename(part, page); err != nil {
			_ = fileutil.RemoveIfExists(part)
			return services.Wrap(services.ErrExternalTool, "pdf-extract", "render page",
				fmt.Sprintf("%s page %d produced no image", ref.URI, index+1), err)
		}
	}
	return nil
}

func (p *PDFExtract) Outputs(ref inputs.Ref) ([]inputs.Ref, error) {
	pages, err := p.Pages(ref)
	if err != nil {
		return nil, err
	}
	return inputs.Paths(pages), nil
}

// Recover deletes in-progress renders; finished pages stay.
func (p *PDFExtract) Recover(ref inputs.Ref) {
	pages, err := p.Pages(ref)
	if err != nil {
		return
	}
	for _, page := range pages {
		_ = fileutil.RemoveIfExists(partPath(page))
	}
}

// The renderer picks its output format from the extension, so the
// in-progress name keeps .jpg.
func partPath(page string) string {
	return filepath.Join(filepath.Dir(page), "."+inputs.ChangeExt(filepath.Base(page), "part.jpg"))
}
