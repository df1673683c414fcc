package media

import (
	"bytes"         // Reading uploaded bytes
	"errors"        // Missing file detection
	"fmt"           // Error wrapping
	"image"         // Format detection
	_ "image/gif"   // Register GIF decoder
	_ "image/jpeg"  // Register JPEG decoder
	_ "image/png"   // Register PNG decoder
	"os"            // Upload directory
	"path/filepath" // File paths

	"budget_ledger/internal/domain" // Validation errors

	"github.com/disintegration/imaging" // Resizing and encoding
	"github.com/google/uuid"            // Random file names
)

// ThumbnailSize is the bounding box of stored profile photos
const ThumbnailSize = 125

// extensions maps decoder names to stored file extensions
var extensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
}

// Thumbnailer shrinks uploaded photos and stores them under random names
type Thumbnailer struct {
	dir string // Upload directory
}

// NewThumbnailer creates a Thumbnailer writing into dir
func NewThumbnailer(dir string) *Thumbnailer {
	return &Thumbnailer{dir: dir}
}

// Save decodes data, fits it into ThumbnailSize x ThumbnailSize and returns the stored file name
func (t *Thumbnailer) Save(data []byte) (string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", domain.NewValidationError("photo", "unsupported image")
	}
	ext, ok := extensions[format]
	if !ok {
		return "", domain.NewValidationError("photo", "unsupported image format %s", format)
	}
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	thumb := imaging.Fit(img, ThumbnailSize, ThumbnailSize, imaging.Lanczos) // Keeps aspect ratio
	name := uuid.NewString() + ext                                           // 122 random bits
	if err := imaging.Save(thumb, filepath.Join(t.dir, name)); err != nil {
		return "", fmt.Errorf("save thumbnail: %w", err)
	}
	return name, nil
}

// Remove deletes a stored photo; the default photo and already missing files are skipped
func (t *Thumbnailer) Remove(name string) error {
	if name == "" || name == domain.DefaultPhoto {
		return nil
	}
	if name != filepath.Base(name) {
		return fmt.Errorf("invalid photo name %q", name) // Never leave the upload directory
	}
	if err := os.Remove(filepath.Join(t.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove photo: %w", err)
	}
	return nil
}
