package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ALTO returns a minimal ALTO v4 document. lines holds the CONTENT of one
// String per TextLine, all in a block tagged with zone; fileName is
// recorded in the description when non-empty.
func ALTO(fileName, zone string, lines ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<alto xmlns="http://www.loc.gov/standards/alto/ns-v4#">` + "\n")
	if fileName != "" {
		fmt.Fprintf(&b, "<Description><sourceImageInformation><fileName>%s</fileName></sourceImageInformation></Description>\n", fileName)
	}
	if zone != "" {
		fmt.Fprintf(&b, "<Tags><OtherTag ID=\"BT1\" LABEL=\"%s\"/></Tags>\n", zone)
	}
	b.WriteString("<Layout><Page><PrintSpace><TextBlock ID=\"b1\" TAGREFS=\"BT1\">\n")
	for i, line := range lines {
		fmt.Fprintf(&b, "<TextLine ID=\"l%d\"><String CONTENT=\"%s\"/></TextLine>\n", i+1, line)
	}
	b.WriteString("</TextBlock></PrintSpace></Page></Layout>\n</alto>\n")
	return b.String()
}

// WritePDF writes a structurally valid PDF with the given number of blank
// pages.
func WritePDF(t testing.TB, path string, pages int) {
	t.Helper()

	var b strings.Builder
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, b.Len())
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	b.WriteString("%PDF-1.4\n")
	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	for range pages {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(offsets)+1)
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	WriteFile(t, path, b.String())
}
