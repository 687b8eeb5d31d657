package iiif

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"rtk/internal/fileutil"
	"rtk/internal/inputs"
	"rtk/internal/services"
)

// IndexPath returns the deterministic index location for a manifest URI.
func IndexPath(outputDir, manifestURI string) string {
	return filepath.Join(outputDir, inputs.ShortHash(manifestURI)+".csv")
}

// IndexDir is the destination directory recorded in every row of the index
// at path: the index file stem.
func IndexDir(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// WriteIndex persists one URI,Dir row per image atomically.
func WriteIndex(path string, uris []string) error {
	dir := IndexDir(path)
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, uri := range uris {
		if err := w.Write([]string{uri, dir}); err != nil {
			return fmt.Errorf("encode index row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return services.Wrap(services.ErrStorage, "iiif", "write index", path, err)
	}
	return nil
}

// ReadIndex returns the rows of an index file as (URI, Dir) references. An
// optional third column overrides the output name.
func ReadIndex(path string) ([]inputs.Ref, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var refs []inputs.Ref
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "iiif", "read index", path, err)
		}
		if len(record) < 2 || strings.TrimSpace(record[0]) == "" {
			continue
		}
		ref := inputs.Pair(strings.TrimSpace(record[0]), strings.TrimSpace(record[1]))
		if len(record) > 2 {
			ref.Name = strings.TrimSpace(record[2])
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
