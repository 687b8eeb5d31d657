// Package iiif resolves IIIF Presentation manifests (versions 2 and 3) into
// image URIs, sizes IIIF Image API requests, and persists manifest
// expansions as flat CSV index files.
package iiif
