package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const tinyPNG = "data:image/png;base64,aGVsbG8="

func TestLocalStoreUploadAndDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "http://localhost:8080/uploads")
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	asset, err := store.Upload(tinyPNG, "posts/covers")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.HasPrefix(asset.URL, "http://localhost:8080/uploads/posts/covers/") {
		t.Errorf("URL = %q, want it under the base URL and folder", asset.URL)
	}
	if !strings.HasSuffix(asset.ID, ".png") {
		t.Errorf("ID = %q, want a .png filename", asset.ID)
	}

	onDisk := filepath.Join(root, filepath.FromSlash(asset.ID))
	raw, err := os.ReadFile(onDisk)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(raw) != "hello" {
		t.Errorf("stored bytes = %q, want %q", raw, "hello")
	}

	if err := store.Delete(asset.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(onDisk); !os.IsNotExist(err) {
		t.Errorf("file still present after Delete: %v", err)
	}

	// Deleting again must stay silent; cleanup paths retry.
	if err := store.Delete(asset.ID); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestLocalStoreExtensionMapping(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	tests := []struct {
		name    string
		payload string
		wantExt string
	}{
		{"jpeg becomes jpg", "data:image/jpeg;base64,aGk=", ".jpg"},
		{"webp kept", "data:image/webp;base64,aGk=", ".webp"},
		{"svg xml becomes svg", "data:image/svg+xml;base64,aGk=", ".svg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset, err := store.Upload(tt.payload, "misc")
			if err != nil {
				t.Fatalf("Upload() error = %v", err)
			}
			if !strings.HasSuffix(asset.ID, tt.wantExt) {
				t.Errorf("ID = %q, want suffix %q", asset.ID, tt.wantExt)
			}
		})
	}
}

func TestLocalStoreRejectsBadPayloads(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	tests := []struct {
		name    string
		payload string
	}{
		{"plain url", "https://example.com/image.png"},
		{"no base64 marker", "data:image/png,aGk="},
		{"bad base64", "data:image/png;base64,!!not-base64!!"},
		{"unsupported type", "data:image/tiff;base64,aGk="},
		{"not an image", "data:text/html;base64,aGk="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Upload(tt.payload, "misc"); err == nil {
				t.Error("Upload() accepted a bad payload")
			}
		})
	}
}
