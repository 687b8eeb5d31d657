// Package inputs defines the work-item references flowing between tasks and
// the naming helpers that map them to output paths.
package inputs

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Ref identifies one work item: a bare URI or path, or a URI paired with a
// destination directory. Name optionally overrides the derived output stem.
// Ref is comparable and serves as the completion-state key.
type Ref struct {
	URI  string
	Dir  string
	Name string
}

// Path returns a bare reference.
func Path(uri string) Ref {
	return Ref{URI: uri}
}

// Pair returns a reference bound to a destination directory.
func Pair(uri, dir string) Ref {
	return Ref{URI: uri, Dir: dir}
}

// Paths wraps bare strings as references.
func Paths(values []string) []Ref {
	refs := make([]Ref, 0, len(values))
	for _, v := range values {
		refs = append(refs, Path(v))
	}
	return refs
}

// Pairs binds every value to the same destination directory.
func Pairs(values []string, dir string) []Ref {
	refs := make([]Ref, 0, len(values))
	for _, v := range values {
		refs = append(refs, Pair(v, dir))
	}
	return refs
}

func (r Ref) String() string {
	if r.Dir == "" {
		return r.URI
	}
	return fmt.Sprintf("%s -> %s", r.URI, r.Dir)
}

// HashName returns the hex SHA-256 digest of value.
func HashName(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// ShortHash returns the first ten hex characters of HashName.
func ShortHash(value string) string {
	return HashName(value)[:10]
}

// ChangeExt replaces the extension of path with ext (leading dot optional).
func ChangeExt(path, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	base := strings.TrimSuffix(path, filepath.Ext(path))
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// Path segments of a IIIF Image API request after the identifier.
var iiifImageRequest = [4]*regexp.Regexp{
	regexp.MustCompile(`^(full|square|\d+,\d+,\d+,\d+|pct:[\d.]+,[\d.]+,[\d.]+,[\d.]+)$`),
	regexp.MustCompile(`^\^?(full|max|pct:[\d.]+|!?\d*,\d*)$`),
	regexp.MustCompile(`^!?[\d.]+$`),
	regexp.MustCompile(`^(default|color|colour|gray|grey|bitonal|native)\.[A-Za-z0-9]+$`),
}

// IIIFIdentifier returns the identifier segment of a IIIF Image API URI
// ({base}/{identifier}/{region}/{size}/{rotation}/{quality}.{format}), or
// an empty string when uri is not shaped like an image request.
func IIIFIdentifier(uri string) string {
	if i := strings.IndexAny(uri, "?#"); i >= 0 {
		uri = uri[:i]
	}
	if i := strings.Index(uri, "://"); i >= 0 {
		rest := uri[i+3:]
		slash := strings.IndexByte(rest, '/')
		if slash < 0 {
			return ""
		}
		uri = rest[slash:]
	}
	parts := strings.Split(uri, "/")
	if len(parts) < 6 {
		return ""
	}
	tail := parts[len(parts)-4:]
	for i, re := range iiifImageRequest {
		if !re.MatchString(tail[i]) {
			return ""
		}
	}
	return parts[len(parts)-5]
}

// ReadList reads a whitespace separated list of entries.
func ReadList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input list: %w", err)
	}
	defer file.Close()

	var entries []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		entries = append(entries, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input list: %w", err)
	}
	return entries, nil
}

// Batch splits entries into consecutive chunks of at most size elements.
func Batch[T any](entries []T, size int) [][]T {
	if size < 1 {
		size = 1
	}
	var batches [][]T
	for start := 0; start < len(entries); start += size {
		end := min(start+size, len(entries))
		batches = append(batches, entries[start:end])
	}
	return batches
}
