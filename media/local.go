package media

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore persists uploads on the local filesystem under Root and serves
// them at BaseURL. The asset id is the path relative to Root, so deletion
// needs no lookup table.
type LocalStore struct {
	Root    string
	BaseURL string
}

// NewLocalStore creates the storage root if missing.
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("media: create root: %w", err)
	}
	return &LocalStore{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload decodes the payload and writes it to <root>/<folder>/<uuid>.<ext>.
func (s *LocalStore) Upload(payload, folder string) (Asset, error) {
	raw, ext, err := decodeDataURI(payload)
	if err != nil {
		return Asset{}, err
	}

	folder = path.Clean("/" + folder)[1:] // strip any traversal
	dir := filepath.Join(s.Root, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Asset{}, fmt.Errorf("media: create folder: %w", err)
	}

	name := uuid.NewString() + "." + ext
	if err := os.WriteFile(filepath.Join(dir, name), raw, 0o644); err != nil {
		return Asset{}, fmt.Errorf("media: write file: %w", err)
	}

	id := path.Join(folder, name)
	return Asset{URL: s.BaseURL + "/" + id, ID: id}, nil
}

// Delete removes the stored file. A missing file is not an error: cleanup
// steps must be safe to retry.
func (s *LocalStore) Delete(assetID string) error {
	rel := path.Clean("/" + assetID)[1:]
	if rel == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("media: delete %s: %w", assetID, err)
	}
	return nil
}
