// Package media stores generated images under the static directory served by
// the HTTP server.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the path the static directory is mounted on.
const URLPrefix = "/static"

const imagesDir = "images"

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// ErrNotPNG is returned when SavePNG receives bytes that are not a PNG image.
var ErrNotPNG = errors.New("data is not a PNG image")

// Store writes images into <baseDir>/images.
type Store struct {
	baseDir string
}

// NewStore creates a store rooted at the static directory.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// SavePNG writes data to a uniquely named file and returns its public URL.
func (s *Store) SavePNG(data []byte) (string, error) {
	if !bytes.HasPrefix(data, pngMagic) {
		return "", ErrNotPNG
	}

	dir := filepath.Join(s.baseDir, imagesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	name := strings.ReplaceAll(uuid.New().String(), "-", "") + ".png"
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil { //nolint:gosec // served publicly
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return URLPrefix + "/" + imagesDir + "/" + name, nil
}

// Path maps a public URL returned by SavePNG back to the file on disk.
func (s *Store) Path(publicURL string) (string, bool) {
	rel, ok := strings.CutPrefix(publicURL, URLPrefix+"/")
	if !ok || rel == "" {
		return "", false
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", false
	}
	return filepath.Join(s.baseDir, clean), true
}
