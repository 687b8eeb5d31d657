package alto

import (
	"path"
	"strings"

	"github.com/beevik/etree"

	"rtk/internal/fileutil"
	"rtk/internal/services"
)

// FilenamesNormalized reports whether every fileName element of the ALTO
// file holds a bare file name. Unparseable files report false.
func FilenamesNormalized(filePath string) bool {
	doc, err := load(filePath)
	if err != nil {
		return false
	}
	return each(doc.Root(), "fileName", func(e *etree.Element) bool {
		return !strings.Contains(e.Text(), "/")
	})
}

// NormalizeFilenames rewrites every fileName element in place to its base
// name. Recognition engines record the image path relative to their own
// working directory; after rewriting, the reference is relative to the ALTO
// file itself.
func NormalizeFilenames(filePath string) error {
	doc, err := load(filePath)
	if err != nil {
		return err
	}
	for _, e := range collect(doc.Root(), "fileName") {
		if strings.Contains(e.Text(), "/") {
			e.SetText(bareName(e.Text()))
		}
	}
	data, err := doc.WriteToBytes()
	if err != nil {
		return services.Wrap(services.ErrValidation, "alto", "serialize", filePath, err)
	}
	if err := fileutil.WriteFileAtomic(filePath, data); err != nil {
		return services.Wrap(services.ErrStorage, "alto", "write", filePath, err)
	}
	return nil
}

// bareName strips the directories from a recorded file name. The result
// never contains a slash; a name that is only a directory becomes empty.
func bareName(text string) string {
	base := path.Base(strings.TrimSpace(text))
	if base == "/" || base == "." {
		return ""
	}
	return base
}
