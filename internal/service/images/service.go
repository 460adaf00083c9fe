// Package images stores product photos on local disk.
package images

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/preorder/internal/domain/models"
)

const ext = ".jpg"

// Service saves and resolves JPEG product images under one directory.
type Service struct {
	dir    string
	logger *zap.Logger
}

// NewService creates the image directory if needed.
func NewService(dir string, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir %s: %w", dir, err)
	}
	return &Service{dir: dir, logger: logger}, nil
}

// Save stores an uploaded JPEG. The file is named after name when given,
// otherwise after the upload, always with a .jpg extension. It returns the
// public path of the image.
func (s *Service) Save(upload, name string, r io.Reader) (string, error) {
	if upload == "" {
		return "", models.NewError(models.KindValidation, "No image selected")
	}
	lower := strings.ToLower(upload)
	if !strings.HasSuffix(lower, ".jpg") && !strings.HasSuffix(lower, ".jpeg") {
		return "", models.NewError(models.KindValidation, "Only JPG/JPEG files are allowed")
	}
	if name == "" {
		name = upload
	}
	filename, err := normalize(name)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close image: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, filename)); err != nil {
		return "", fmt.Errorf("store image %s: %w", filename, err)
	}

	s.logger.Info("image stored", zap.String("file", filename))
	return "/images/" + filename, nil
}

// Path resolves a stored image. Any extension on filename is replaced by .jpg.
func (s *Service) Path(filename string) (string, error) {
	name, err := normalize(filename)
	if err != nil {
		return "", models.NewError(models.KindNotFound, "Image not found")
	}
	full := filepath.Join(s.dir, name)
	info, err := os.Stat(full)
	if errors.Is(err, os.ErrNotExist) || (err == nil && info.IsDir()) {
		return "", models.NewError(models.KindNotFound, "Image not found")
	}
	if err != nil {
		return "", fmt.Errorf("stat image %s: %w", name, err)
	}
	return full, nil
}

// normalize strips directories and forces the .jpg extension.
func normalize(name string) (string, error) {
	base := filepath.Base(filepath.Clean("/" + name))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" || strings.HasPrefix(base, ".") {
		return "", models.NewError(models.KindValidation, "invalid image name %q", name)
	}
	return base + ext, nil
}
