package iiif

import (
	"fmt"
	"strings"
)

const fullSizeSegment = "/full/full/"

// SizedImageURL rewrites the size segment of a full-size IIIF Image API URI
// to cap its width or height. At most one bound may be positive; URIs
// without a /full/full/ segment are returned unchanged.
func SizedImageURL(uri string, maxWidth, maxHeight int) (string, error) {
	switch {
	case maxWidth > 0 && maxHeight > 0:
		return "", fmt.Errorf("max width and max height are mutually exclusive")
	case maxHeight > 0:
		return strings.Replace(uri, fullSizeSegment, fmt.Sprintf("/full/,%d/", maxHeight), 1), nil
	case maxWidth > 0:
		return strings.Replace(uri, fullSizeSegment, fmt.Sprintf("/full/%d,/", maxWidth), 1), nil
	default:
		return uri, nil
	}
}
