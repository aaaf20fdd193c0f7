package upload

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/h2non/filetype"
)

// maxImageBytes caps inline image payloads at 4 MiB.
const maxImageBytes = 4 << 20

// FileStore stores uploaded images on the local filesystem, addressed by
// content hash. Satisfies chat.Uploader.
type FileStore struct {
	root string
}

// NewFileStore creates the upload root if needed.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &FileStore{root: root}, nil
}

// Upload validates that data is an image, stores it content-addressed and
// returns the durable reference to persist on the message. Re-uploading
// identical bytes is idempotent.
func (s *FileStore) Upload(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty upload")
	}
	if len(data) > maxImageBytes {
		return "", fmt.Errorf("upload too large: %d bytes", len(data))
	}

	kind, err := filetype.Match(data)
	if err != nil {
		return "", fmt.Errorf("failed to sniff upload type: %w", err)
	}
	if kind == filetype.Unknown || kind.MIME.Type != "image" {
		return "", fmt.Errorf("unsupported upload type %q", kind.MIME.Value)
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	name := hash + "." + kind.Extension
	path := filepath.Join(s.root, hash[:2], name)

	// Idempotency check
	if _, err := os.Stat(path); err == nil {
		return s.ref(name), nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Write to a temporary file first, then rename into place.
	tmp, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name()) // Clean up if rename fails
	}()

	if _, err := tmp.Write(data); err != nil {
		return "", fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to rename file: %w", err)
	}

	return s.ref(name), nil
}

// Path resolves a reference previously returned by Upload to its on-disk
// location, for the static file route.
func (s *FileStore) Path(name string) string {
	if len(name) < 2 {
		return filepath.Join(s.root, name)
	}
	return filepath.Join(s.root, name[:2], name)
}

func (s *FileStore) ref(name string) string {
	return "/uploads/" + name
}
