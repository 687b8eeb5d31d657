package alto

import "github.com/beevik/etree"

// Threshold is the minimum amount of recognised text a document needs to
// count as processed. A positive Ratio requires that fraction of String
// elements to carry text; otherwise at least MinLines (default 1) must.
type Threshold struct {
	MinLines int
	Ratio    float64
}

// CheckContent reports whether the ALTO file at path meets th. Unparseable
// files fail. A document without any String element passes: it has nothing
// left to recognise.
func CheckContent(path string, th Threshold) bool {
	doc, err := load(path)
	if err != nil {
		return false
	}

	total, filled := 0, 0
	each(doc.Root(), "String", func(e *etree.Element) bool {
		attr := e.SelectAttr("CONTENT")
		if attr == nil {
			return true
		}
		total++
		if attr.Value != "" {
			filled++
		}
		return true
	})

	if total == 0 {
		return true
	}
	if th.Ratio > 0 {
		return float64(filled)/float64(total) >= th.Ratio
	}
	minLines := th.MinLines
	if minLines <= 0 {
		minLines = 1
	}
	return filled >= minLines
}
