package iiif

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rtk/internal/fetch"
	"rtk/internal/services"
)

type manifest struct {
	Items     []canvasV3   `json:"items"`
	Sequences []sequenceV2 `json:"sequences"`
}

type canvasV3 struct {
	Items []struct {
		Items []struct {
			Body json.RawMessage `json:"body"`
		} `json:"items"`
	} `json:"items"`
}

type bodyV3 struct {
	ID    string   `json:"id"`
	Type  string   `json:"type"`
	Items []bodyV3 `json:"items"`
}

type sequenceV2 struct {
	Canvases []struct {
		Images []struct {
			Resource struct {
				ID string `json:"@id"`
			} `json:"resource"`
		} `json:"images"`
	} `json:"canvases"`
}

// Parse extracts the image URI of every canvas in a IIIF Presentation
// manifest, in canvas order. Version 3 manifests are read from
// items[].items[0].items[0].body.id and version 2 manifests from
// sequences[0].canvases[].images[0].resource.@id. Canvases without an image
// are skipped.
func Parse(data []byte) ([]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, services.Wrap(services.ErrValidation, "iiif", "parse manifest", "invalid JSON", err)
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, services.Wrap(services.ErrValidation, "iiif", "parse manifest", "unexpected manifest structure", err)
	}

	switch {
	case raw["items"] != nil:
		return parseV3(m.Items)
	case raw["sequences"] != nil:
		return parseV2(m.Sequences), nil
	default:
		return nil, services.Wrap(services.ErrValidation, "iiif", "parse manifest", "neither items nor sequences present", nil)
	}
}

func parseV3(canvases []canvasV3) ([]string, error) {
	uris := make([]string, 0, len(canvases))
	for i, canvas := range canvases {
		if len(canvas.Items) == 0 || len(canvas.Items[0].Items) == 0 {
			continue
		}
		id, err := bodyID(canvas.Items[0].Items[0].Body)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "iiif", "parse manifest", fmt.Sprintf("canvas %d", i), err)
		}
		if id != "" {
			uris = append(uris, id)
		}
	}
	return uris, nil
}

// bodyID resolves an annotation body, which may be a resource, a Choice, or
// a list of resources. The first candidate wins.
func bodyID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '[' {
		var bodies []bodyV3
		if err := json.Unmarshal(raw, &bodies); err != nil {
			return "", err
		}
		for _, b := range bodies {
			if id := b.resolve(); id != "" {
				return id, nil
			}
		}
		return "", nil
	}
	var body bodyV3
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", err
	}
	return body.resolve(), nil
}

func (b bodyV3) resolve() string {
	if strings.EqualFold(b.Type, "Choice") && len(b.Items) > 0 {
		return b.Items[0].resolve()
	}
	return strings.TrimSpace(b.ID)
}

func parseV2(sequences []sequenceV2) []string {
	if len(sequences) == 0 {
		return nil
	}
	uris := make([]string, 0, len(sequences[0].Canvases))
	for _, canvas := range sequences[0].Canvases {
		if len(canvas.Images) == 0 {
			continue
		}
		if id := strings.TrimSpace(canvas.Images[0].Resource.ID); id != "" {
			uris = append(uris, id)
		}
	}
	return uris
}

// Resolver expands manifest URIs into image URIs.
type Resolver struct {
	fetcher fetch.Fetcher
}

// NewResolver returns a resolver that retrieves manifests through f.
func NewResolver(f fetch.Fetcher) *Resolver {
	return &Resolver{fetcher: f}
}

// Resolve fetches and parses the manifest at uri.
func (r *Resolver) Resolve(ctx context.Context, uri string) ([]string, error) {
	data, err := fetch.Bytes(ctx, r.fetcher, uri)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
