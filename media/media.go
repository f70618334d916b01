// Package media abstracts the image host. Uploads take base64 data-URI
// payloads (the shape the API accepts from clients) and return a public URL
// plus an asset id usable for later deletion.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Asset identifies a stored media object.
type Asset struct {
	URL string `json:"url"`
	ID  string `json:"id"`
}

// Store is the narrow interface the orchestrators depend on.
type Store interface {
	// Upload stores a base64 data-URI payload under the given folder.
	Upload(payload, folder string) (Asset, error)
	// Delete removes a previously uploaded asset. Callers treat failures
	// as best-effort: log and continue.
	Delete(assetID string) error
}

// ErrBadPayload reports a payload that is not a decodable image data URI.
var ErrBadPayload = errors.New("media: payload is not a base64 image data URI")

// decodeDataURI splits "data:image/png;base64,AAAA" into raw bytes and a
// file extension.
func decodeDataURI(payload string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(payload, "data:image/")
	if !ok {
		return nil, "", ErrBadPayload
	}
	mime, data, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return nil, "", ErrBadPayload
	}
	ext := strings.ToLower(mime)
	switch ext {
	case "jpeg":
		ext = "jpg"
	case "jpg", "png", "gif", "webp", "svg+xml":
		if ext == "svg+xml" {
			ext = "svg"
		}
	default:
		return nil, "", fmt.Errorf("media: unsupported image type %q", mime)
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, "", ErrBadPayload
	}
	return raw, ext, nil
}
