package alto

import (
	"github.com/beevik/etree"

	"rtk/internal/services"
)

func load(path string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, services.Wrap(services.ErrValidation, "alto", "parse", path, err)
	}
	if doc.Root() == nil {
		return nil, services.Wrap(services.ErrValidation, "alto", "parse", path+": no root element", nil)
	}
	return doc, nil
}

// each visits every element below (and including) root whose local name is
// tag, in document order. Returning false from fn stops the walk. Matching
// ignores namespaces, so ALTO v2 to v4 documents are handled alike.
func each(root *etree.Element, tag string, fn func(*etree.Element) bool) bool {
	if root.Tag == tag && !fn(root) {
		return false
	}
	for _, child := range root.ChildElements() {
		if !each(child, tag, fn) {
			return false
		}
	}
	return true
}

func collect(root *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	each(root, tag, func(e *etree.Element) bool {
		out = append(out, e)
		return true
	})
	return out
}
