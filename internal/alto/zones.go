package alto

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ExtractZones returns the text of every TextBlock tagged with one of the
// given zone labels. OtherTag elements map labels to tag IDs and blocks
// reference them through TAGREFS. Each TextLine becomes one output line
// with its String contents joined by spaces; the result is NFC normalized.
// An empty string means no configured zone was present.
func ExtractZones(path string, zones []string) (string, error) {
	doc, err := load(path)
	if err != nil {
		return "", err
	}
	root := doc.Root()

	allowed := make(map[string]struct{})
	for _, tag := range collect(root, "OtherTag") {
		if slices.Contains(zones, tag.SelectAttrValue("LABEL", "")) {
			if id := tag.SelectAttrValue("ID", ""); id != "" {
				allowed[id] = struct{}{}
			}
		}
	}
	if len(allowed) == 0 {
		return "", nil
	}

	var lines []string
	for _, block := range collect(root, "TextBlock") {
		if !referencesAny(block.SelectAttrValue("TAGREFS", ""), allowed) {
			continue
		}
		for _, line := range collect(block, "TextLine") {
			var words []string
			for _, child := range line.ChildElements() {
				if child.Tag != "String" {
					continue
				}
				if attr := child.SelectAttr("CONTENT"); attr != nil {
					words = append(words, attr.Value)
				}
			}
			lines = append(lines, strings.Join(words, " "))
		}
	}
	return norm.NFC.String(strings.Join(lines, "\n")), nil
}

// TAGREFS is an IDREFS list; a block may carry several tags.
func referencesAny(tagRefs string, allowed map[string]struct{}) bool {
	for _, ref := range strings.Fields(tagRefs) {
		if _, ok := allowed[ref]; ok {
			return true
		}
	}
	return false
}
