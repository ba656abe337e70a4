// Package artifact owns the files referenced by inventory records: uploaded
// item images and generated PDF summaries. File operations here are not
// transactional with record saves; deletions are best-effort and callers
// must treat a missing referenced file as "show placeholder", never as a
// hard error.
package artifact

import (
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/erazemk/zaloga/internal/apperr"
	"github.com/erazemk/zaloga/internal/imaging"
)

// PlaceholderName is the expected (but not required) placeholder image in
// the image directory, shown for items without a usable image.
const PlaceholderName = "placeholder.png"

// allowedExtensions lists accepted upload extensions, lowercase with dot.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// Manager stores and removes artifact files under the image and PDF
// directories.
type Manager struct {
	imageDir string
	pdfDir   string
	log      zerolog.Logger
}

// NewManager creates a manager rooted at the given directories.
func NewManager(imageDir, pdfDir string, log zerolog.Logger) *Manager {
	return &Manager{imageDir: imageDir, pdfDir: pdfDir, log: log}
}

// EnsureDirs creates the image and PDF directories if absent and logs a hint
// when the placeholder image is missing.
func (m *Manager) EnsureDirs() error {
	for _, dir := range []string{m.imageDir, m.pdfDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperr.Artifact(err, "creating directory %s", dir)
		}
	}
	if _, err := os.Stat(m.PlaceholderPath()); errors.Is(err, fs.ErrNotExist) {
		m.log.Info().Str("path", m.PlaceholderPath()).
			Msg("no placeholder image found, items without images will have none to show")
	}
	return nil
}

// ImagePath returns the full path of an image filename.
func (m *Manager) ImagePath(name string) string {
	return filepath.Join(m.imageDir, name)
}

// PDFPath returns the full path of a PDF filename.
func (m *Manager) PDFPath(name string) string {
	return filepath.Join(m.pdfDir, name)
}

// PlaceholderPath returns the path of the placeholder image.
func (m *Manager) PlaceholderPath() string {
	return filepath.Join(m.imageDir, PlaceholderName)
}

// AllowedImage checks if the filename carries an accepted image extension.
func AllowedImage(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// StoreImage writes uploaded image bytes under a freshly generated unique
// filename (random identifier plus the original extension) and returns that
// filename. Existing files are never reused or overwritten. Uploads are
// normalized (downscaled, re-encoded) when possible; bytes that do not
// decode are stored as-is.
func (m *Manager) StoreImage(data []byte, originalFilename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if !allowedExtensions[ext] {
		return "", apperr.Artifact(nil, "unsupported image type %q (allowed: png, jpg, jpeg, gif)", ext)
	}

	if normalized, err := imaging.Normalize(data); err != nil {
		m.log.Warn().Str("filename", originalFilename).Err(err).
			Msg("could not normalize upload, storing raw bytes")
	} else {
		data = normalized
	}

	id := uuid.New()
	name := hex.EncodeToString(id[:]) + ext
	if err := os.WriteFile(m.ImagePath(name), data, 0o644); err != nil {
		return "", apperr.Artifact(err, "writing image %s", name)
	}
	return name, nil
}

// ReplaceImage stores a new image and then best-effort deletes the old one.
// A failed deletion is logged, not returned: orphaned files are tolerated.
func (m *Manager) ReplaceImage(old string, data []byte, originalFilename string) (string, error) {
	name, err := m.StoreImage(data, originalFilename)
	if err != nil {
		return "", err
	}
	if old != "" {
		if err := m.DeleteImage(old); err != nil {
			m.log.Warn().Str("filename", old).Err(err).Msg("could not delete replaced image")
		}
	}
	return name, nil
}

// DeleteImage best-effort removes an image file. An empty name or a missing
// file is a no-op.
func (m *Manager) DeleteImage(name string) error {
	return m.remove(m.ImagePath(name), name)
}

// DeletePDF best-effort removes a PDF file. An empty name or a missing file
// is a no-op.
func (m *Manager) DeletePDF(name string) error {
	return m.remove(m.PDFPath(name), name)
}

func (m *Manager) remove(path, name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return apperr.Artifact(err, "deleting %s", name)
}
