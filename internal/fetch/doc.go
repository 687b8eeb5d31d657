// Package fetch retrieves resources over HTTP, from S3-compatible object
// stores, and from the local filesystem, and writes them to disk
// atomically.
//
// Build a Mux with the fetchers a run needs (NewFromConfig does this from
// the application config) and hand it to FetchTo or Bytes.
package fetch
